package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimezone(t *testing.T) {
	_, err := New(Config{})
	assert.NoError(t, err)

	_, err = New(Config{Timezone: "UTC"})
	assert.NoError(t, err)

	_, err = New(Config{Timezone: "Atlantis/Nowhere"})
	assert.Error(t, err)
}

func TestAdd(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)

	noop := func(context.Context) {}
	require.NoError(t, s.Add("cleanup", "@every 1h", noop))

	err = s.Add("cleanup", "@every 1h", noop)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	assert.Error(t, s.Add("broken", "not a cron spec", noop))
}

func TestRemove(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)

	require.NoError(t, s.Add("cleanup", "@every 1h", func(context.Context) {}))
	s.Remove("cleanup")
	// The name is free again.
	assert.NoError(t, s.Add("cleanup", "@every 1h", func(context.Context) {}))
	// Removing an unknown name does nothing.
	s.Remove("ghost")
}

func TestRunAndStop(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)

	ran := make(chan struct{}, 1)
	require.NoError(t, s.Add("tick", "@every 10ms", func(context.Context) {
		select {
		case ran <- struct{}{}:
		default:
		}
	}))

	require.NoError(t, s.Start())
	assert.Error(t, s.Start(), "double start must fail")

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job never ran")
	}

	s.Stop()
	assert.Error(t, s.ctx.Err(), "job context is cancelled on stop")
	// Stopping twice does nothing.
	s.Stop()
}

func TestJobPanicIsContained(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)

	done := make(chan struct{}, 1)
	require.NoError(t, s.Add("boom", "@every 10ms", func(context.Context) {
		select {
		case done <- struct{}{}:
		default:
		}
		panic("job exploded")
	}))

	require.NoError(t, s.Start())
	defer s.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never ran")
	}
	// Reaching Stop without the test binary crashing is the assertion.
}

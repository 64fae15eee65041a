package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenNone(t *testing.T) {
	ctx := context.Background()

	for _, typ := range []string{"", "none"} {
		c, err := Open(ctx, Config{Type: typ})
		require.NoError(t, err)

		_, err = c.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrNoCache)
		assert.ErrorIs(t, c.Set(ctx, "k", []byte("v"), 0), ErrNoCache)
		assert.ErrorIs(t, c.Delete(ctx, "k"), ErrNoCache)
		assert.ErrorIs(t, c.Ping(ctx), ErrNoCache)
		assert.NoError(t, c.Close())
	}
}

func TestOpenUnsupportedType(t *testing.T) {
	_, err := Open(context.Background(), Config{Type: "memcached"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported cache type")
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := Open(ctx, Config{Type: "memory"})
	require.NoError(t, err)

	_, err = c.Get(ctx, "greeting")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "greeting", []byte("hello"), 0))
	value, err := c.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), value)

	require.NoError(t, c.Delete(ctx, "greeting"))
	_, err = c.Get(ctx, "greeting")
	assert.ErrorIs(t, err, ErrMiss)

	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	require.NoError(t, c.Set(ctx, "flash", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, err := c.Get(ctx, "flash")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	original := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", original, 0))
	original[0] = 'z'

	value, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), value)
}

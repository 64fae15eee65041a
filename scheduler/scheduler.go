// Package scheduler runs named background jobs for a bot on cron
// schedules (presence rotation, periodic cleanup and the like).
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/zeta-labs/riemann/logging"
)

// Config maps the [scheduler] table of the configuration file.
type Config struct {
	Timezone string `toml:"timezone"` // IANA name, "Local" or empty
}

// Job is one schedulable unit of work. The context is cancelled when
// the scheduler stops.
type Job func(ctx context.Context)

// Scheduler manages cron-scheduled jobs.
type Scheduler struct {
	cron *cron.Cron

	mu      sync.Mutex
	names   map[string]cron.EntryID
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New builds a stopped scheduler in the configured timezone.
func New(cfg Config) (*Scheduler, error) {
	loc := time.Local
	if cfg.Timezone != "" && cfg.Timezone != "Local" {
		parsed, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("scheduler: load timezone %q: %w", cfg.Timezone, err)
		}
		loc = parsed
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		names:  make(map[string]cron.EntryID),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Add registers a job under a unique name. The spec is a standard cron
// expression or a descriptor such as "@every 5m". Jobs can be added
// before or after Start.
func (s *Scheduler) Add(name, spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.names[name]; exists {
		return fmt.Errorf("scheduler: job %q already registered", name)
	}

	id, err := s.cron.AddFunc(spec, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("scheduler: register job %q: %w", name, err)
	}
	s.names[name] = id
	return nil
}

// Remove unregisters a job. Removing an unknown name does nothing.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.names[name]; ok {
		s.cron.Remove(id)
		delete(s.names, name)
	}
}

func (s *Scheduler) run(name string, job Job) {
	log := logging.Base().With().
		Str("job", name).
		Str("run", uuid.NewString()).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Msg("job panicked")
		}
	}()

	start := time.Now()
	log.Debug().Msg("job started")
	job(s.ctx)
	log.Debug().Dur("took", time.Since(start)).Msg("job finished")
}

// Start begins running registered jobs. Starting twice is an error.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler: already running")
	}
	s.cron.Start()
	s.running = true
	log := logging.Base()
	log.Info().Msg("scheduler started")
	return nil
}

// Stop halts scheduling, cancels the job context and waits for running
// jobs to return. Stopping a stopped scheduler does nothing.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	ctx := s.cron.Stop()
	s.cancel()
	<-ctx.Done()
	s.running = false
	log := logging.Base()
	log.Info().Msg("scheduler stopped")
}

package riemann

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/zeta-labs/riemann/api"
	"github.com/zeta-labs/riemann/cache"
	"github.com/zeta-labs/riemann/config"
	"github.com/zeta-labs/riemann/db"
	"github.com/zeta-labs/riemann/logging"
	"github.com/zeta-labs/riemann/scheduler"
)

// Bot wraps a Discord session together with everything the
// configuration file declares: database, cache, incident reporter,
// scheduler and the optional status API.
type Bot struct {
	Session   *discordgo.Session
	Conf      *config.Config
	Tree      *Tree
	DB        db.Database
	Cache     cache.Cache
	Reporter  logging.Reporter
	Scheduler *scheduler.Scheduler

	api     *api.Server
	log     zerolog.Logger
	started time.Time

	mu      sync.Mutex
	running bool
}

// New loads the configuration file at path (config.DefaultPath when
// empty) and builds a Bot from it.
func New(configPath string) (*Bot, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(conf)
}

// NewWithConfig builds a Bot from an already parsed configuration. The
// gateway is not connected until Start.
func NewWithConfig(conf *config.Config) (*Bot, error) {
	if conf.Token == "" {
		return nil, errors.New("riemann: missing token in configuration")
	}

	session, err := discordgo.New("Bot " + conf.Token)
	if err != nil {
		return nil, fmt.Errorf("riemann: create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsAllWithoutPrivileged

	logging.Configure(conf.Logging.Level, nil)

	sched, err := scheduler.New(conf.Scheduler)
	if err != nil {
		return nil, err
	}

	b := &Bot{
		Session:   session,
		Conf:      conf,
		Scheduler: sched,
		log:       logging.Base(),
	}
	b.Tree = NewTree(b)
	return b, nil
}

// Start is the setup hook: it opens the database and cache, connects
// the gateway, builds the incident reporter, starts the scheduler and
// the status API. On failure everything already opened is torn down.
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return errors.New("riemann: bot already started")
	}

	var err error
	if b.DB, err = db.Open(ctx, b.Conf.Database); err != nil {
		return err
	}
	if b.Cache, err = cache.Open(ctx, b.Conf.Cache); err != nil {
		b.DB.Close(ctx)
		return err
	}

	if err = b.Session.Open(); err != nil {
		b.Cache.Close()
		b.DB.Close(ctx)
		return fmt.Errorf("riemann: open gateway connection: %w", err)
	}

	// The discord reporter resolves its channel through the session,
	// so it is built after the connection is up.
	if b.Reporter, err = logging.NewReporter(b.Session, b.Conf.Logging); err != nil {
		b.Session.Close()
		b.Cache.Close()
		b.DB.Close(ctx)
		return err
	}

	if err = b.Scheduler.Start(); err != nil {
		b.Session.Close()
		b.Cache.Close()
		b.DB.Close(ctx)
		return err
	}

	if b.Conf.API.Enabled {
		b.api = api.NewServer(b.Conf.API, b, b.DB)
		b.api.Start()
	}

	b.started = time.Now()
	b.running = true
	b.log.Info().Str("version", Version).Msg("bot started")
	return nil
}

// Close tears the bot down in reverse start order. Closing a bot that
// is not running does nothing.
func (b *Bot) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return nil
	}

	var errs []error
	if b.api != nil {
		errs = append(errs, b.api.Shutdown(ctx))
		b.api = nil
	}
	b.Scheduler.Stop()
	errs = append(errs, b.Session.Close())
	errs = append(errs, b.Cache.Close())
	errs = append(errs, b.DB.Close(ctx))

	b.running = false
	b.log.Info().Msg("bot closed")
	return errors.Join(errs...)
}

// Uptime reports how long the gateway connection has been up.
func (b *Bot) Uptime() time.Duration {
	if b.started.IsZero() {
		return 0
	}
	return time.Since(b.started)
}

// GuildCount reports the number of guilds in the session state.
func (b *Bot) GuildCount() int {
	return len(b.Session.State.Guilds)
}

// GatewayLatency reports the last heartbeat round trip.
func (b *Bot) GatewayLatency() time.Duration {
	return b.Session.HeartbeatLatency()
}

// Version reports the library version.
func (b *Bot) Version() string { return Version }

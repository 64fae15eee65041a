// Package logging carries the library's structured logger and the
// incident reporters that forward command failures to Discord or to
// stderr.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config maps the [logging] table of the configuration file.
type Config struct {
	Type    string        `toml:"type"`  // "stderr" or "discord"
	Level   string        `toml:"level"` // zerolog level name
	Discord DiscordConfig `toml:"discord"`
}

// DiscordConfig maps [logging.discord].
type DiscordConfig struct {
	ChannelID string `toml:"channel-id"`
}

var (
	once sync.Once
	base zerolog.Logger
)

// Configure initialises the global zerolog logger exactly once. An
// empty level defaults to info; a nil output writes to stderr.
func Configure(level string, output io.Writer) {
	once.Do(func() {
		parsed := zerolog.InfoLevel
		if level != "" {
			if l, err := zerolog.ParseLevel(level); err == nil {
				parsed = l
			}
		}
		zerolog.SetGlobalLevel(parsed)
		zerolog.TimeFieldFormat = time.RFC3339

		if output == nil {
			output = os.Stderr
		}

		base = zerolog.New(output).With().
			Timestamp().
			Str("service", "riemann").
			Logger()
	})
}

// Base returns the configured base logger.
func Base() zerolog.Logger {
	Configure("", nil)
	return base
}

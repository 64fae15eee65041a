// Package db is the optional persistence extension. It exposes one
// Connection contract over interchangeable backends: none (the
// default), SQLite and PostgreSQL. Queries always use ? positional
// placeholders; the PostgreSQL backend rewrites them to ordinals.
package db

import (
	"context"
	"errors"
	"fmt"
)

// Row is a single result row keyed by column name.
type Row map[string]any

var (
	// ErrNoDatabase is returned by every operation when no database is
	// configured.
	ErrNoDatabase = errors.New("db: the database is a lie")

	// ErrClosed is returned by operations on a closed database.
	// Closing twice is not an error.
	ErrClosed = errors.New("db: database is closed")
)

// Config selects and configures a backend. It maps the [database]
// table of the configuration file.
type Config struct {
	Type       string           `toml:"type"` // "none", "sqlite" or "postgresql"
	SQLite     SQLiteConfig     `toml:"sqlite"`
	PostgreSQL PostgreSQLConfig `toml:"postgresql"`
}

// SQLiteConfig maps [database.sqlite].
type SQLiteConfig struct {
	Database string `toml:"database"` // file path, ~ and relative paths are expanded
}

// PostgreSQLConfig maps [database.postgresql].
type PostgreSQLConfig struct {
	Conninfo string `toml:"conninfo"`
	MinConns int32  `toml:"min-conns"`
	MaxConns int32  `toml:"max-conns"`
}

// Connection runs queries against the database. Implementations are
// not safe for concurrent use; acquire one connection per unit of
// work.
type Connection interface {
	// Execute runs a statement that returns no rows.
	Execute(ctx context.Context, query string, args ...any) error

	// ExecuteMany runs the same statement once per parameter set.
	ExecuteMany(ctx context.Context, query string, batch [][]any) error

	// QueryOne returns the first result row, or nil when the query
	// matched nothing.
	QueryOne(ctx context.Context, query string, args ...any) (Row, error)

	// QueryAll returns every result row.
	QueryAll(ctx context.Context, query string, args ...any) ([]Row, error)

	// QueryMany returns at most size result rows.
	QueryMany(ctx context.Context, size int, query string, args ...any) ([]Row, error)
}

// ReleaseFunc returns an acquired connection to its database. It must
// be called exactly once and is safe to defer.
type ReleaseFunc func()

// Database hands out connections to one of the supported backends.
type Database interface {
	// Acquire checks a connection out of the database. The release
	// function must be called when the unit of work is done.
	Acquire(ctx context.Context) (Connection, ReleaseFunc, error)

	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error

	// Close shuts the database down. Closing an already closed
	// database is not an error, but any later operation fails with
	// ErrClosed.
	Close(ctx context.Context) error
}

// Open builds the backend selected by cfg.Type. An empty type means
// "none".
func Open(ctx context.Context, cfg Config) (Database, error) {
	switch cfg.Type {
	case "", "none":
		return NoDatabase{}, nil
	case "sqlite":
		return openSQLite(ctx, cfg.SQLite)
	case "postgresql":
		return openPostgreSQL(ctx, cfg.PostgreSQL)
	default:
		return nil, fmt.Errorf("db: unsupported database type: %s", cfg.Type)
	}
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Migrate applies the bot's SQL migrations from src/dir (usually an
// embedded filesystem) against the configured backend. Running when
// the schema is already current is not an error.
func Migrate(ctx context.Context, cfg Config, src fs.FS, dir string) error {
	source, err := iofs.New(src, dir)
	if err != nil {
		return fmt.Errorf("db: open migration source: %w", err)
	}

	var m *migrate.Migrate
	switch cfg.Type {
	case "", "none":
		return ErrNoDatabase

	case "sqlite":
		path, err := expandPath(cfg.SQLite.Database)
		if err != nil {
			return err
		}
		handle, err := sql.Open("sqlite3", path)
		if err != nil {
			return fmt.Errorf("db: open sqlite database %q: %w", path, err)
		}
		defer handle.Close()

		driver, err := sqlite3.WithInstance(handle, &sqlite3.Config{})
		if err != nil {
			return fmt.Errorf("db: sqlite migration driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", source, "sqlite3", driver)
		if err != nil {
			return fmt.Errorf("db: build migrator: %w", err)
		}

	case "postgresql":
		handle, err := sql.Open("pgx", cfg.PostgreSQL.Conninfo)
		if err != nil {
			return fmt.Errorf("db: open postgresql: %w", err)
		}
		defer handle.Close()

		driver, err := migratepgx.WithInstance(handle, &migratepgx.Config{})
		if err != nil {
			return fmt.Errorf("db: postgresql migration driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", source, "pgx", driver)
		if err != nil {
			return fmt.Errorf("db: build migrator: %w", err)
		}

	default:
		return fmt.Errorf("db: unsupported database type: %s", cfg.Type)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("db: run migrations: %w", err)
	}
	return nil
}

package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the file-backed SQLite backend.
//
// DB is the raw handle, exposed in case the Connection API is
// insufficient.
type SQLite struct {
	DB *sql.DB

	closed atomic.Bool
}

func openSQLite(ctx context.Context, cfg SQLiteConfig) (*SQLite, error) {
	path, err := expandPath(cfg.Database)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("db: create database directory: %w", err)
		}
	}

	handle, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("db: open sqlite database %q: %w", path, err)
	}
	if err := handle.PingContext(ctx); err != nil {
		handle.Close()
		return nil, fmt.Errorf("db: ping sqlite database %q: %w", path, err)
	}

	return &SQLite{DB: handle}, nil
}

// expandPath resolves ~ and relative database paths.
func expandPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("db: sqlite database path is empty")
	}
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("db: resolve home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("db: resolve database path %q: %w", path, err)
	}
	return abs, nil
}

func (s *SQLite) Acquire(ctx context.Context) (Connection, ReleaseFunc, error) {
	if s.closed.Load() {
		return nil, nil, ErrClosed
	}
	conn, err := s.DB.Conn(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("db: acquire sqlite connection: %w", err)
	}
	return &sqliteConn{conn: conn}, func() { conn.Close() }, nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return s.DB.PingContext(ctx)
}

func (s *SQLite) Close(context.Context) error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.DB.Close()
}

// sqliteConn wraps a pinned database/sql connection.
type sqliteConn struct {
	conn *sql.Conn
}

func (c *sqliteConn) Execute(ctx context.Context, query string, args ...any) error {
	_, err := c.conn.ExecContext(ctx, query, args...)
	return err
}

func (c *sqliteConn) ExecuteMany(ctx context.Context, query string, batch [][]any) error {
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		tx.Rollback()
		return err
	}
	for _, args := range batch {
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			stmt.Close()
			tx.Rollback()
			return err
		}
	}
	stmt.Close()
	return tx.Commit()
}

func (c *sqliteConn) QueryOne(ctx context.Context, query string, args ...any) (Row, error) {
	rows, err := c.query(ctx, 1, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (c *sqliteConn) QueryAll(ctx context.Context, query string, args ...any) ([]Row, error) {
	return c.query(ctx, -1, query, args...)
}

func (c *sqliteConn) QueryMany(ctx context.Context, size int, query string, args ...any) ([]Row, error) {
	return c.query(ctx, size, query, args...)
}

func (c *sqliteConn) query(ctx context.Context, limit int, query string, args ...any) ([]Row, error) {
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows, limit)
}

// scanRows reads up to limit rows into maps; limit < 0 means all.
func scanRows(rows *sql.Rows, limit int) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	for (limit < 0 || len(out) < limit) && rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

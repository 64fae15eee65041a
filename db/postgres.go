package db

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL is the pgx-backed PostgreSQL backend.
//
// Pool is the raw connection pool, exposed in case the Connection API
// is insufficient.
type PostgreSQL struct {
	Pool *pgxpool.Pool

	closed atomic.Bool
}

func openPostgreSQL(ctx context.Context, cfg PostgreSQLConfig) (*PostgreSQL, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Conninfo)
	if err != nil {
		return nil, fmt.Errorf("db: parse postgresql conninfo: %w", err)
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("db: open postgresql pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db: ping postgresql: %w", err)
	}

	return &PostgreSQL{Pool: pool}, nil
}

func (p *PostgreSQL) Acquire(ctx context.Context) (Connection, ReleaseFunc, error) {
	if p.closed.Load() {
		return nil, nil, ErrClosed
	}
	conn, err := p.Pool.Acquire(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("db: acquire postgresql connection: %w", err)
	}
	return &postgresConn{conn: conn}, conn.Release, nil
}

func (p *PostgreSQL) Ping(ctx context.Context) error {
	if p.closed.Load() {
		return ErrClosed
	}
	return p.Pool.Ping(ctx)
}

func (p *PostgreSQL) Close(context.Context) error {
	if p.closed.Swap(true) {
		return nil
	}
	p.Pool.Close()
	return nil
}

// postgresConn wraps an acquired pool connection.
type postgresConn struct {
	conn *pgxpool.Conn
}

func (c *postgresConn) Execute(ctx context.Context, query string, args ...any) error {
	_, err := c.conn.Exec(ctx, rewritePlaceholders(query), args...)
	return err
}

func (c *postgresConn) ExecuteMany(ctx context.Context, query string, batch [][]any) error {
	rewritten := rewritePlaceholders(query)
	var b pgx.Batch
	for _, args := range batch {
		b.Queue(rewritten, args...)
	}
	results := c.conn.SendBatch(ctx, &b)
	for range batch {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return err
		}
	}
	return results.Close()
}

func (c *postgresConn) QueryOne(ctx context.Context, query string, args ...any) (Row, error) {
	rows, err := c.query(ctx, 1, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (c *postgresConn) QueryAll(ctx context.Context, query string, args ...any) ([]Row, error) {
	return c.query(ctx, -1, query, args...)
}

func (c *postgresConn) QueryMany(ctx context.Context, size int, query string, args ...any) ([]Row, error) {
	return c.query(ctx, size, query, args...)
}

func (c *postgresConn) query(ctx context.Context, limit int, query string, args ...any) ([]Row, error) {
	rows, err := c.conn.Query(ctx, rewritePlaceholders(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for (limit < 0 || len(out) < limit) && rows.Next() {
		m, err := pgx.RowToMap(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, Row(m))
	}
	return out, rows.Err()
}

// rewritePlaceholders converts ? placeholders into the $1..$n ordinals
// pgx expects. Question marks inside single-quoted literals are left
// alone.
func rewritePlaceholders(query string) string {
	if !strings.ContainsRune(query, '?') {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inLiteral := false
	for _, r := range query {
		switch {
		case r == '\'':
			inLiteral = !inLiteral
			b.WriteRune(r)
		case r == '?' && !inLiteral:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Package cache is the optional key-value extension, backed by Redis
// or by an in-process map.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoCache is returned by every operation when no cache is
	// configured.
	ErrNoCache = errors.New("cache: no cache configured")

	// ErrMiss is returned by Get when the key does not exist or has
	// expired.
	ErrMiss = errors.New("cache: key not found")
)

// Config selects and configures a backend. It maps the [cache] table
// of the configuration file.
type Config struct {
	Type  string      `toml:"type"` // "none", "memory" or "redis"
	Redis RedisConfig `toml:"redis"`
}

// RedisConfig maps [cache.redis].
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Cache stores opaque values under string keys with a per-entry TTL.
type Cache interface {
	// Get returns the value stored under key, or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping verifies the cache is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// Open builds the backend selected by cfg.Type. An empty type means
// "none".
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Type {
	case "", "none":
		return NoCache{}, nil
	case "memory":
		return NewMemory(), nil
	case "redis":
		return openRedis(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("cache: unsupported cache type: %s", cfg.Type)
	}
}

// NoCache is the backend used when no cache is configured. Closing it
// does nothing; everything else fails with ErrNoCache.
type NoCache struct{}

func (NoCache) Get(context.Context, string) ([]byte, error) { return nil, ErrNoCache }

func (NoCache) Set(context.Context, string, []byte, time.Duration) error { return ErrNoCache }

func (NoCache) Delete(context.Context, string) error { return ErrNoCache }

func (NoCache) Ping(context.Context) error { return ErrNoCache }

func (NoCache) Close() error { return nil }

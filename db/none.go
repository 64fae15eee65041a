package db

import "context"

// NoDatabase is the backend used when no database is configured.
// Closing it does nothing; everything else fails with ErrNoDatabase.
type NoDatabase struct{}

func (NoDatabase) Acquire(context.Context) (Connection, ReleaseFunc, error) {
	return nil, nil, ErrNoDatabase
}

func (NoDatabase) Ping(context.Context) error { return ErrNoDatabase }

func (NoDatabase) Close(context.Context) error { return nil }

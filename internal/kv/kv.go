// Package kv provides the durable key-value slot the locker state is saved to,
// with SQLite, Redis and S3 implementations.
package kv

import (
	"context"
	"errors"
	"fmt"
)

// ErrLocked is returned when another process already holds the store.
var ErrLocked = errors.New("store is locked by another process")

// Store is a durable string key-value store.
type Store interface {
	// SetString writes value under key, replacing any previous value.
	SetString(ctx context.Context, key, value string) error

	// GetString returns the value for key; ok is false when the key is absent.
	GetString(ctx context.Context, key string) (value string, ok bool, err error)

	// Flush makes previous writes durable and compacts backend state.
	Flush(ctx context.Context) error

	// Close releases the store.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendS3     = "s3"
)

// Options selects and configures a backend.
type Options struct {
	Backend       string
	Path          string
	KeepRevisions int
	RedisURL      string
	RedisPrefix   string
	S3            S3Config
}

// Open opens the backend named by opts.Backend. An empty backend means SQLite.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendSQLite:
		s, err := NewSQLiteStore(opts.Path, opts.KeepRevisions)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendRedis:
		if opts.RedisURL == "" {
			return nil, fmt.Errorf("redis backend requires a URL")
		}
		s, err := NewRedisStore(ctx, opts.RedisURL, opts.RedisPrefix)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendS3:
		s, err := NewS3Store(ctx, opts.S3)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q (valid: sqlite, redis, s3)", opts.Backend)
}

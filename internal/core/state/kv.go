// Package state persists the small amount of session data the client keeps
// between runs: the selected company and the last viewed company and
// contract.
package state

import (
	"context"
	"fmt"
)

// KV is a string key-value store. Implementations are safe for concurrent
// use; the last write to a key wins.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend  string
	Path     string // sqlite database file
	RedisURL string // redis://host:port/db or host:port
}

// Open creates the KV described by opts.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendSQLite:
		return NewSQLite(opts.Path)
	case BackendRedis:
		return NewRedis(ctx, opts.RedisURL)
	default:
		return nil, fmt.Errorf("unknown state backend %q", opts.Backend)
	}
}

// Package store persists the chat session list and the active session id in a
// durable key-value backend.
package store

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown store backend")

// KV is the durable key-value contract the persistence layer writes through.
type KV interface {
	// Get returns the value stored under key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Put writes every entry in a single transaction.
	Put(ctx context.Context, entries map[string]string) error
	Close() error
}

// Options selects and configures a KV backend.
type Options struct {
	Backend   string
	Path      string
	RedisAddr string
	RedisDB   int
}

// Open creates the KV backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", "file":
		return NewFile(opts.Path)
	case "memory":
		return NewMemory(), nil
	case "badger":
		return NewBadger(opts.Path)
	case "sqlite":
		return NewSQLite(ctx, opts.Path)
	case "redis":
		return NewRedis(ctx, opts.RedisAddr, opts.RedisDB)
	default:
		return nil, errors.Wrapf(ErrUnknownBackend, "backend %q", opts.Backend)
	}
}

// Package store provides the key-value persistence used for user preferences.
//
// Every backend offers the same last-write-wins string get/set contract;
// there are no transactions. Backends are selected by name through Open.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// KV is a string key-value store.
type KV interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendPgx      = "pgx"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Backends lists every backend name accepted by Open.
var Backends = []string{BackendFile, BackendSQLite, BackendPostgres, BackendPgx, BackendRedis, BackendMemory}

// Options configures Open.
type Options struct {
	Backend string
	// DSN is a file path for file/sqlite, a connection string for
	// postgres/pgx, or an address for redis. Empty uses the default
	// location under DataDir.
	DSN           string
	RedisPassword string
	RedisDB       int
}

const dataDirName = "namaz"

// DataDir returns the directory holding local state.
// It respects $XDG_DATA_HOME if set, otherwise uses ~/.local/share/.
func DataDir() (string, error) {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, dataDirName), nil
}

// Open creates the backend named in opts.
func Open(ctx context.Context, opts Options) (KV, error) {
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	if backend == "" {
		backend = BackendFile
	}

	switch backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		path := opts.DSN
		if path == "" {
			dir, err := DataDir()
			if err != nil {
				return nil, err
			}
			path = filepath.Join(dir, "preferences.json")
		}
		return NewFile(path)
	case BackendSQLite:
		dsn := opts.DSN
		if dsn == "" {
			dir, err := DataDir()
			if err != nil {
				return nil, err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data directory: %w", err)
			}
			dsn = filepath.Join(dir, "preferences.db")
		}
		return NewSQL(ctx, "sqlite", dsn)
	case BackendPostgres, BackendPgx:
		if opts.DSN == "" {
			return nil, fmt.Errorf("store %q requires a connection string (store_dsn)", backend)
		}
		return NewSQL(ctx, backend, opts.DSN)
	case BackendRedis:
		addr := opts.DSN
		if addr == "" {
			addr = "localhost:6379"
		}
		return NewRedis(ctx, addr, opts.RedisPassword, opts.RedisDB)
	default:
		return nil, fmt.Errorf("unknown store backend %q; valid backends: %s", opts.Backend, strings.Join(Backends, ", "))
	}
}

// Package kv holds the key-value backends the todo store and the profile
// are persisted through. Values are opaque text blobs; callers own their
// interpretation.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("key not found")

// Adapter is a string-keyed store of text values.
type Adapter interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Options selects and configures a backend.
type Options struct {
	Backend string

	// file
	Dir string

	// redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	// sqlite
	SQLitePath string
}

// Open returns the adapter named by opts.Backend. An empty backend means file.
func Open(ctx context.Context, opts Options) (Adapter, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		return NewFileStore(opts.Dir)
	case BackendRedis:
		return NewRedisStore(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.RedisPrefix)
	case BackendSQLite:
		return NewSQLiteStore(opts.SQLitePath)
	}
	return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("empty key")
	}
	return nil
}

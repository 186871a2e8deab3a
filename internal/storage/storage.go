// Package storage opens the configured ledger state store.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore"
	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore/cache"
	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore/leveldb"
	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore/memory"
	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore/pebble"
	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore/redis"
)

// Backend names accepted by Open.
const (
	BackendMemory  = "memory"
	BackendPebble  = "pebble"
	BackendLevelDB = "leveldb"
	BackendRedis   = "redis"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Options selects and configures a backend.
type Options struct {
	Backend string

	// Path is the directory of the pebble and leveldb backends
	Path string

	RedisAddr   string
	RedisDB     int
	RedisPrefix string

	// CacheSize enables an LRU read cache when positive
	CacheSize int
}

// Open returns the store described by opts.
func Open(ctx context.Context, opts Options) (kvstore.DB, error) {
	var (
		db  kvstore.DB
		err error
	)
	switch opts.Backend {
	case BackendMemory, "":
		db = memory.New()
	case BackendPebble:
		if opts.Path == "" {
			return nil, fmt.Errorf("%s backend requires a path", opts.Backend)
		}
		db, err = pebble.Open(opts.Path)
	case BackendLevelDB:
		if opts.Path == "" {
			return nil, fmt.Errorf("%s backend requires a path", opts.Backend)
		}
		db, err = leveldb.Open(opts.Path)
	case BackendRedis:
		var storeOpts []redis.StoreOption
		if opts.RedisPrefix != "" {
			storeOpts = append(storeOpts, redis.WithPrefix(opts.RedisPrefix))
		}
		db, err = redis.Dial(ctx, opts.RedisAddr, opts.RedisDB, storeOpts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
	if err != nil {
		return nil, err
	}

	if opts.CacheSize > 0 {
		cached, err := cache.New(db, opts.CacheSize)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return cached, nil
	}
	return db, nil
}

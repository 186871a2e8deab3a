// Package cache puts an LRU read cache in front of a kvstore.DB.
package cache

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore"
)

// DefaultSize is used when the configured size is not positive.
const DefaultSize = 4096

// DB caches successful reads of the wrapped store. Every write through it
// updates or evicts the cached value.
//
// Reads hold mu shared and writes hold it exclusively, so a miss can never
// fill the cache with a value a concurrent write is replacing. Guarded
// batches are checked under the same lock when the wrapped store has no
// conditional batch of its own.
type DB struct {
	mu    sync.RWMutex
	inner kvstore.DB
	lru   *lru.Cache[string, []byte]

	// Metrics
	hits   atomic.Uint64
	misses atomic.Uint64
}

// Stats is a snapshot of the cache counters.
type Stats struct {
	Hits   uint64
	Misses uint64
	Len    int
}

// New wraps inner with a cache of size entries.
func New(inner kvstore.DB, size int) (*DB, error) {
	if size <= 0 {
		size = DefaultSize
	}
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &DB{inner: inner, lru: c}, nil
}

func (c *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.lru.Get(string(key)); ok {
		c.hits.Add(1)
		return bytes.Clone(v), nil
	}
	c.misses.Add(1)
	v, err := c.inner.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	c.lru.Add(string(key), bytes.Clone(v))
	return v, nil
}

func (c *DB) Write(ctx context.Context, key, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(string(key))
	if err := c.inner.Write(ctx, key, value); err != nil {
		return err
	}
	c.lru.Add(string(key), bytes.Clone(value))
	return nil
}

func (c *DB) Delete(ctx context.Context, key []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(string(key))
	return c.inner.Delete(ctx, key)
}

func (c *DB) Batch(ctx context.Context, ops []kvstore.BatchOperation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evict(ops)
	return c.inner.Batch(ctx, ops)
}

// BatchIf forwards to the wrapped store's conditional batch, or checks the
// guards against the wrapped store itself when it has none. On a conflict
// the guarded keys are evicted, since another writer changed them under
// the cache.
func (c *DB) BatchIf(ctx context.Context, guards []kvstore.Guard, ops []kvstore.BatchOperation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evict(ops)

	var err error
	if cb, ok := c.inner.(kvstore.ConditionalBatcher); ok {
		err = cb.BatchIf(ctx, guards, ops)
	} else if err = kvstore.CheckGuards(ctx, c.inner.Read, guards); err == nil {
		err = c.inner.Batch(ctx, ops)
	}
	if errors.Is(err, kvstore.ErrConflict) {
		for _, g := range guards {
			c.lru.Remove(string(g.Key))
		}
	}
	return err
}

func (c *DB) evict(ops []kvstore.BatchOperation) {
	for _, op := range ops {
		c.lru.Remove(string(op.Key))
	}
}

func (c *DB) Iterator(ctx context.Context, start, end []byte) (kvstore.Iterator, error) {
	return c.inner.Iterator(ctx, start, end)
}

// Purge drops every cached value.
func (c *DB) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// Stats returns the cache counters.
func (c *DB) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Len: c.lru.Len()}
}

func (c *DB) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	return c.inner.Close()
}

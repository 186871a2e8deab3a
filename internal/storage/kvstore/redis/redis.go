// Package redis stores ledger state in Redis so several daemons can share
// one ledger. Guarded batches use WATCH/MULTI/EXEC.
package redis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore"
)

// DefaultPrefix namespaces ledger keys.
const DefaultPrefix = "auctiond:"

// scanCount is the SCAN page size used by Iterator.
const scanCount = 512

// Store implements kvstore.DB on a Redis client.
type Store struct {
	client  *redis.Client
	options StoreOptions
}

// StoreOptions holds the Store configuration
type StoreOptions struct {
	Prefix string
}

type StoreOption func(*StoreOptions)

// WithPrefix sets the key prefix
func WithPrefix(prefix string) StoreOption {
	return func(o *StoreOptions) {
		o.Prefix = prefix
	}
}

// NewStore wraps an existing client.
func NewStore(client *redis.Client, opts ...StoreOption) (*Store, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	options := StoreOptions{Prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(&options)
	}
	return &Store{client: client, options: options}, nil
}

// Dial connects to addr and checks the connection.
func Dial(ctx context.Context, addr string, db int, opts ...StoreOption) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.Dial: ping %s: %w", addr, err)
	}
	return NewStore(client, opts...)
}

func (s *Store) key(k []byte) string {
	return s.options.Prefix + string(k)
}

func (s *Store) Read(ctx context.Context, key []byte) ([]byte, error) {
	const op = "redis.Store.Read"
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, kvstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return val, nil
}

func (s *Store) Write(ctx context.Context, key, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis.Store.Write: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key []byte) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis.Store.Delete: %w", err)
	}
	return nil
}

func (s *Store) queue(ctx context.Context, pipe redis.Pipeliner, ops []kvstore.BatchOperation) error {
	for _, op := range ops {
		switch op.Type {
		case kvstore.BatchPut:
			pipe.Set(ctx, s.key(op.Key), op.Value, 0)
		case kvstore.BatchDelete:
			pipe.Del(ctx, s.key(op.Key))
		default:
			return fmt.Errorf("unknown batch operation type: %d", op.Type)
		}
	}
	return nil
}

// Batch applies ops in one MULTI/EXEC transaction.
func (s *Store) Batch(ctx context.Context, ops []kvstore.BatchOperation) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return s.queue(ctx, pipe, ops)
	})
	if err != nil {
		return fmt.Errorf("redis.Store.Batch: %w", err)
	}
	return nil
}

// BatchIf watches every guarded and written key, checks the guards and
// commits with EXEC. A concurrent write to a watched key aborts the EXEC
// and surfaces as ErrConflict.
func (s *Store) BatchIf(ctx context.Context, guards []kvstore.Guard, ops []kvstore.BatchOperation) error {
	const op = "redis.Store.BatchIf"

	watched := make([]string, 0, len(guards)+len(ops))
	for _, g := range guards {
		watched = append(watched, s.key(g.Key))
	}
	for _, o := range ops {
		watched = append(watched, s.key(o.Key))
	}

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		read := func(ctx context.Context, key []byte) ([]byte, error) {
			val, err := tx.Get(ctx, s.key(key)).Bytes()
			if errors.Is(err, redis.Nil) {
				return nil, kvstore.ErrNotFound
			}
			return val, err
		}
		if err := kvstore.CheckGuards(ctx, read, guards); err != nil {
			return err
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return s.queue(ctx, pipe, ops)
		})
		return err
	}, watched...)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return fmt.Errorf("%s: %w", op, kvstore.ErrConflict)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// Iterator collects the matching keys with SCAN, sorts them and loads the
// values with MGET. It is meant for the small scans the daemon performs.
func (s *Store) Iterator(ctx context.Context, start, end []byte) (kvstore.Iterator, error) {
	const op = "redis.Store.Iterator"

	var keys []string
	iter := s.client.Scan(ctx, 0, s.options.Prefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		k := []byte(iter.Val()[len(s.options.Prefix):])
		if start != nil && bytes.Compare(k, start) < 0 {
			continue
		}
		if end != nil && bytes.Compare(k, end) >= 0 {
			continue
		}
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sort.Strings(keys)

	it := &Iterator{pos: -1}
	if len(keys) == 0 {
		return it, nil
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			// deleted between SCAN and MGET
			continue
		}
		it.keys = append(it.keys, []byte(keys[i][len(s.options.Prefix):]))
		it.values = append(it.values, []byte(str))
	}
	return it, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Iterator walks the snapshot loaded by Store.Iterator.
type Iterator struct {
	keys   [][]byte
	values [][]byte
	pos    int
}

func (it *Iterator) Next() bool {
	if it.pos+1 >= len(it.keys) {
		it.pos = len(it.keys)
		return false
	}
	it.pos++
	return true
}

func (it *Iterator) Key() []byte   { return it.keys[it.pos] }
func (it *Iterator) Value() []byte { return it.values[it.pos] }
func (it *Iterator) Error() error  { return nil }
func (it *Iterator) Close() error  { return nil }

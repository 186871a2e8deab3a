// Package memory is an in-process store for tests and standalone mode.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore"
)

// DB keeps every entry in a map guarded by one lock.
type DB struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// New returns an empty store.
func New() *DB {
	return &DB{data: make(map[string][]byte)}
}

func (m *DB) Read(_ context.Context, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.readLocked(key)
}

func (m *DB) readLocked(key []byte) ([]byte, error) {
	if m.closed {
		return nil, kvstore.ErrClosed
	}
	v, ok := m.data[string(key)]
	if !ok {
		return nil, kvstore.ErrNotFound
	}
	return bytes.Clone(v), nil
}

func (m *DB) Write(_ context.Context, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return kvstore.ErrClosed
	}
	m.data[string(key)] = bytes.Clone(value)
	return nil
}

func (m *DB) Delete(_ context.Context, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return kvstore.ErrClosed
	}
	delete(m.data, string(key))
	return nil
}

func (m *DB) Batch(_ context.Context, ops []kvstore.BatchOperation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applyLocked(ops)
}

// BatchIf checks the guards and applies ops under the write lock.
func (m *DB) BatchIf(ctx context.Context, guards []kvstore.Guard, ops []kvstore.BatchOperation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	read := func(_ context.Context, key []byte) ([]byte, error) { return m.readLocked(key) }
	if err := kvstore.CheckGuards(ctx, read, guards); err != nil {
		return err
	}
	return m.applyLocked(ops)
}

func (m *DB) applyLocked(ops []kvstore.BatchOperation) error {
	if m.closed {
		return kvstore.ErrClosed
	}
	for _, op := range ops {
		if op.Type != kvstore.BatchPut && op.Type != kvstore.BatchDelete {
			return fmt.Errorf("unknown batch operation type: %d", op.Type)
		}
	}
	for _, op := range ops {
		if op.Type == kvstore.BatchPut {
			m.data[string(op.Key)] = bytes.Clone(op.Value)
		} else {
			delete(m.data, string(op.Key))
		}
	}
	return nil
}

// Iterator walks a snapshot taken when it is created.
func (m *DB) Iterator(_ context.Context, start, end []byte) (kvstore.Iterator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, kvstore.ErrClosed
	}
	it := &iterator{pos: -1}
	for k, v := range m.data {
		key := []byte(k)
		if start != nil && bytes.Compare(key, start) < 0 {
			continue
		}
		if end != nil && bytes.Compare(key, end) >= 0 {
			continue
		}
		it.keys = append(it.keys, key)
		it.values = append(it.values, bytes.Clone(v))
	}
	sort.Sort(it)
	return it, nil
}

func (m *DB) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.data = nil
	return nil
}

type iterator struct {
	keys   [][]byte
	values [][]byte
	pos    int
}

func (it *iterator) Len() int           { return len(it.keys) }
func (it *iterator) Less(i, j int) bool { return bytes.Compare(it.keys[i], it.keys[j]) < 0 }
func (it *iterator) Swap(i, j int) {
	it.keys[i], it.keys[j] = it.keys[j], it.keys[i]
	it.values[i], it.values[j] = it.values[j], it.values[i]
}

func (it *iterator) Next() bool {
	if it.pos+1 >= len(it.keys) {
		it.pos = len(it.keys)
		return false
	}
	it.pos++
	return true
}

func (it *iterator) Key() []byte   { return it.keys[it.pos] }
func (it *iterator) Value() []byte { return it.values[it.pos] }
func (it *iterator) Error() error  { return nil }
func (it *iterator) Close() error  { return nil }

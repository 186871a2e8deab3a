// Package leveldb stores ledger state in a goleveldb database.
package leveldb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore"
)

var syncWrites = &opt.WriteOptions{Sync: true}

// DB wraps a goleveldb handle.
type DB struct {
	mu sync.Mutex
	db *leveldb.DB
}

// Open opens or creates a database at path.
func Open(path string) (*DB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb at %s: %w", path, err)
	}
	return &DB{db: db}, nil
}

func (l *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	if l.db == nil {
		return nil, kvstore.ErrClosed
	}
	val, err := l.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, kvstore.ErrNotFound
	}
	return val, err
}

func (l *DB) Write(ctx context.Context, key, value []byte) error {
	if l.db == nil {
		return kvstore.ErrClosed
	}
	return l.db.Put(key, value, syncWrites)
}

func (l *DB) Delete(ctx context.Context, key []byte) error {
	if l.db == nil {
		return kvstore.ErrClosed
	}
	return l.db.Delete(key, syncWrites)
}

func (l *DB) Batch(ctx context.Context, ops []kvstore.BatchOperation) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.commit(ops)
}

// BatchIf checks guards and commits while holding the batch lock.
func (l *DB) BatchIf(ctx context.Context, guards []kvstore.Guard, ops []kvstore.BatchOperation) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := kvstore.CheckGuards(ctx, l.Read, guards); err != nil {
		return err
	}
	return l.commit(ops)
}

func (l *DB) commit(ops []kvstore.BatchOperation) error {
	if l.db == nil {
		return kvstore.ErrClosed
	}
	batch := new(leveldb.Batch)
	for _, op := range ops {
		switch op.Type {
		case kvstore.BatchPut:
			batch.Put(op.Key, op.Value)
		case kvstore.BatchDelete:
			batch.Delete(op.Key)
		default:
			return fmt.Errorf("unknown batch operation type: %d", op.Type)
		}
	}
	return l.db.Write(batch, syncWrites)
}

func (l *DB) Iterator(ctx context.Context, start, end []byte) (kvstore.Iterator, error) {
	if l.db == nil {
		return nil, kvstore.ErrClosed
	}
	return &Iterator{iter: l.db.NewIterator(&util.Range{Start: start, Limit: end}, nil)}, nil
}

func (l *DB) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}

// Iterator adapts a goleveldb iterator.
type Iterator struct {
	iter iterator.Iterator
}

func (it *Iterator) Next() bool    { return it.iter.Next() }
func (it *Iterator) Key() []byte   { return bytes.Clone(it.iter.Key()) }
func (it *Iterator) Value() []byte { return bytes.Clone(it.iter.Value()) }
func (it *Iterator) Error() error  { return it.iter.Error() }

func (it *Iterator) Close() error {
	it.iter.Release()
	return nil
}

// Package kvstore defines the key-value store the ledger state lives in.
package kvstore

import (
	"context"
)

// DB defines the basic operations any store implementation must support
type DB interface {
	// Read returns ErrNotFound when the key is absent
	Read(ctx context.Context, key []byte) ([]byte, error)
	Write(ctx context.Context, key []byte, value []byte) error
	Delete(ctx context.Context, key []byte) error

	// Batch applies every operation or none
	Batch(ctx context.Context, ops []BatchOperation) error

	// Iterator walks keys in [start, end). A nil bound is open.
	Iterator(ctx context.Context, start, end []byte) (Iterator, error)

	Close() error
}

// ConditionalBatcher is implemented by stores that can apply a batch only
// while a set of guards still holds.
type ConditionalBatcher interface {
	// BatchIf applies ops atomically if every guard matches the stored
	// value, and fails with ErrConflict otherwise.
	BatchIf(ctx context.Context, guards []Guard, ops []BatchOperation) error
}

// Iterator allows traversing over store entries
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Close() error
}

// BatchOperation represents a single operation in a batch
type BatchOperation struct {
	Type  BatchOpType
	Key   []byte
	Value []byte
}

type BatchOpType int

const (
	BatchPut BatchOpType = iota
	BatchDelete
)

// Guard asserts the stored value of Key at commit time. A nil Value
// asserts the key is absent.
type Guard struct {
	Key   []byte
	Value []byte
}

// BatchIf applies ops through db's conditional batch when it has one.
// Otherwise the guards are checked and a plain batch follows; that pair is
// atomic only when the caller is the store's sole writer.
func BatchIf(ctx context.Context, db DB, guards []Guard, ops []BatchOperation) error {
	if cb, ok := db.(ConditionalBatcher); ok {
		return cb.BatchIf(ctx, guards, ops)
	}
	if err := CheckGuards(ctx, db.Read, guards); err != nil {
		return err
	}
	return db.Batch(ctx, ops)
}

package kvstore

import "errors"

var (
	// ErrClosed is returned when trying to operate on a closed store
	ErrClosed = errors.New("kvstore is closed")

	// ErrNotFound is returned when a key doesn't exist in the store
	ErrNotFound = errors.New("key not found")

	// ErrConflict is returned by BatchIf when a guard no longer holds
	ErrConflict = errors.New("write conflict")
)

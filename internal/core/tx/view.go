package tx

import (
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/keylet"
)

// ReadView provides read access to ledger state
type ReadView interface {
	// Read returns the entry bytes, or nil, nil when the entry is absent
	Read(k keylet.Keylet) ([]byte, error)

	// Exists checks if an entry exists
	Exists(k keylet.Keylet) (bool, error)
}

// LedgerView provides read/write access to ledger state
type LedgerView interface {
	ReadView

	// Insert adds a new entry
	Insert(k keylet.Keylet, data []byte) error

	// Update modifies an existing entry
	Update(k keylet.Keylet, data []byte) error

	// Erase removes an entry
	Erase(k keylet.Keylet) error
}

// entryPtr constrains a pointer to a concrete ledger entry.
type entryPtr[T any] interface {
	*T
	entry.Entry
}

// ReadEntry loads and decodes the entry at k. It returns nil, nil when the
// entry is absent.
func ReadEntry[T any, P entryPtr[T]](v ReadView, k keylet.Keylet) (P, error) {
	data, err := v.Read(k)
	if err != nil || data == nil {
		return nil, err
	}
	p := P(new(T))
	if err := entries.Decode(data, p); err != nil {
		return nil, err
	}
	return p, nil
}

// InsertEntry encodes and inserts e at k.
func InsertEntry(v LedgerView, k keylet.Keylet, e entry.Entry) error {
	data, err := entries.Encode(e)
	if err != nil {
		return err
	}
	return v.Insert(k, data)
}

// UpdateEntry encodes and writes e over the existing entry at k.
func UpdateEntry(v LedgerView, k keylet.Keylet, e entry.Entry) error {
	data, err := entries.Encode(e)
	if err != nil {
		return err
	}
	return v.Update(k, data)
}

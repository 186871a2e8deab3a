// Package ledger binds the transaction engine to a key-value store: it
// reads ledger state for the engine and commits the engine's change sets.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/keylet"
	"github.com/LeJamon/goDutchAuction/internal/core/tx"
	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore"
)

// State is a read-only view of the ledger in a store, bound to the
// context of one request.
type State struct {
	ctx context.Context
	db  kvstore.DB
}

// NewState returns a view of db whose reads use ctx.
func NewState(ctx context.Context, db kvstore.DB) *State {
	return &State{ctx: ctx, db: db}
}

// Read returns the entry bytes or nil, nil when the entry is absent.
func (s *State) Read(k keylet.Keylet) ([]byte, error) {
	v, err := s.db.Read(s.ctx, k.Key[:])
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", k, err)
	}
	return v, nil
}

func (s *State) Exists(k keylet.Keylet) (bool, error) {
	v, err := s.Read(k)
	return v != nil, err
}

// Commit writes a change set in one store batch. The batch only applies
// if every observation still holds, so a change set computed from state
// another writer has since modified fails with kvstore.ErrConflict.
func Commit(ctx context.Context, db kvstore.DB, changes []tx.Change, observed []tx.Observation) error {
	if len(changes) == 0 {
		return nil
	}
	guards := make([]kvstore.Guard, 0, len(observed))
	for _, o := range observed {
		guards = append(guards, kvstore.Guard{Key: o.Key[:], Value: o.Value})
	}
	ops := make([]kvstore.BatchOperation, 0, len(changes))
	for _, c := range changes {
		op := kvstore.BatchOperation{Type: kvstore.BatchPut, Key: c.Key[:], Value: c.Current}
		if c.Action == tx.ActionErase {
			op = kvstore.BatchOperation{Type: kvstore.BatchDelete, Key: c.Key[:]}
		}
		ops = append(ops, op)
	}
	if err := kvstore.BatchIf(ctx, db, guards, ops); err != nil {
		return fmt.Errorf("commit %d changes: %w", len(ops), err)
	}
	return nil
}

package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/keylet"
	"github.com/LeJamon/goDutchAuction/internal/core/tx"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore"
	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore/memory"
)

type failingDB struct {
	kvstore.DB
	err error
}

func (f failingDB) Read(context.Context, []byte) ([]byte, error) {
	return nil, f.err
}

func seedAccount(t *testing.T, db kvstore.DB, id crypto.AccountID, balance uint64) {
	t.Helper()
	table := tx.NewApplyStateTable(NewState(context.Background(), db))
	require.NoError(t, tx.InsertEntry(table, keylet.Account(id), &entries.AccountRoot{Account: id, Balance: balance, Sequence: 1}))
	changes, observed := table.Apply()
	require.NoError(t, Commit(context.Background(), db, changes, observed))
}

// debit computes a change set that takes amount from id against the
// current state, without committing it.
func debit(t *testing.T, db kvstore.DB, id crypto.AccountID, amount uint64) ([]tx.Change, []tx.Observation) {
	t.Helper()
	table := tx.NewApplyStateTable(NewState(context.Background(), db))
	k := keylet.Account(id)
	acct, err := tx.ReadEntry[entries.AccountRoot](table, k)
	require.NoError(t, err)
	require.NotNil(t, acct)
	acct.Balance -= amount
	require.NoError(t, tx.UpdateEntry(table, k, acct))
	return table.Apply()
}

func balance(t *testing.T, db kvstore.DB, id crypto.AccountID) uint64 {
	t.Helper()
	acct, err := tx.ReadEntry[entries.AccountRoot](NewState(context.Background(), db), keylet.Account(id))
	require.NoError(t, err)
	require.NotNil(t, acct)
	return acct.Balance
}

func TestStateReadMissing(t *testing.T) {
	s := NewState(context.Background(), memory.New())
	v, err := s.Read(keylet.Account(crypto.AccountID{1}))
	require.NoError(t, err)
	assert.Nil(t, v)

	ok, err := s.Exists(keylet.Account(crypto.AccountID{1}))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStateReadWrapsStoreErrors(t *testing.T) {
	boom := errors.New("disk on fire")
	s := NewState(context.Background(), failingDB{DB: memory.New(), err: boom})
	_, err := s.Read(keylet.Account(crypto.AccountID{1}))
	assert.ErrorIs(t, err, boom)
}

func TestCommitWritesChanges(t *testing.T) {
	db := memory.New()
	id := crypto.AccountID{1}
	seedAccount(t, db, id, 100)

	changes, observed := debit(t, db, id, 30)
	require.NoError(t, Commit(context.Background(), db, changes, observed))
	assert.Equal(t, uint64(70), balance(t, db, id))
}

func TestCommitWithoutChanges(t *testing.T) {
	assert.NoError(t, Commit(context.Background(), memory.New(), nil, nil))
}

func TestCommitRejectsStaleChangeSet(t *testing.T) {
	db := memory.New()
	id := crypto.AccountID{1}
	seedAccount(t, db, id, 100)

	// Two change sets computed against the same state.
	first, firstObs := debit(t, db, id, 60)
	second, secondObs := debit(t, db, id, 60)

	require.NoError(t, Commit(context.Background(), db, first, firstObs))
	err := Commit(context.Background(), db, second, secondObs)
	assert.ErrorIs(t, err, kvstore.ErrConflict)

	// Only the first debit landed.
	assert.Equal(t, uint64(40), balance(t, db, id))
}

func TestCommitRejectsInsertOverNewEntry(t *testing.T) {
	db := memory.New()
	id := crypto.AccountID{2}

	table := tx.NewApplyStateTable(NewState(context.Background(), db))
	require.NoError(t, tx.InsertEntry(table, keylet.Account(id), &entries.AccountRoot{Account: id, Balance: 1, Sequence: 1}))
	changes, observed := table.Apply()

	// Someone else creates the entry first.
	seedAccount(t, db, id, 5)

	assert.ErrorIs(t, Commit(context.Background(), db, changes, observed), kvstore.ErrConflict)
	assert.Equal(t, uint64(5), balance(t, db, id))
}

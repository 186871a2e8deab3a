package tx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/keylet"
)

func testKey(b byte) keylet.Keylet {
	return keylet.Keylet{Type: entry.TypeAccountRoot, Key: [32]byte{b}}
}

func TestApplyStateTableNeverWritesBase(t *testing.T) {
	base := mapView{testKey(1).Key: []byte("one")}
	table := NewApplyStateTable(base)

	require.NoError(t, table.Update(testKey(1), []byte("uno")))
	require.NoError(t, table.Insert(testKey(2), []byte("two")))

	got, err := table.Read(testKey(1))
	require.NoError(t, err)
	assert.Equal(t, []byte("uno"), got)

	assert.Equal(t, []byte("one"), base[testKey(1).Key])
	assert.NotContains(t, base, testKey(2).Key)
}

func TestApplyStateTableChanges(t *testing.T) {
	base := mapView{
		testKey(1).Key: []byte("one"),
		testKey(3).Key: []byte("three"),
		testKey(4).Key: []byte("four"),
	}
	table := NewApplyStateTable(base)

	require.NoError(t, table.Update(testKey(1), []byte("uno")))
	require.NoError(t, table.Insert(testKey(2), []byte("two")))
	require.NoError(t, table.Erase(testKey(3)))
	_, err := table.Read(testKey(4))
	require.NoError(t, err)

	changes, observed := table.Apply()
	require.Len(t, changes, 3)
	assert.Equal(t, ActionModify, changes[0].Action)
	assert.Equal(t, []byte("one"), changes[0].Original)
	assert.Equal(t, ActionInsert, changes[1].Action)
	assert.Nil(t, changes[1].Original)
	assert.Equal(t, ActionErase, changes[2].Action)

	// Every key was observed, including the absence of key 2 and the
	// read-only key 4.
	require.Len(t, observed, 4)
	assert.Equal(t, testKey(1).Key, observed[0].Key)
	assert.Nil(t, observed[1].Value)
	assert.Equal(t, []byte("four"), observed[3].Value)
}

func TestApplyStateTableRejectsInvalidOps(t *testing.T) {
	base := mapView{testKey(1).Key: []byte("one")}
	table := NewApplyStateTable(base)

	assert.ErrorIs(t, table.Insert(testKey(1), []byte("x")), ErrEntryExists)
	assert.ErrorIs(t, table.Update(testKey(2), []byte("x")), ErrEntryNotFound)
	assert.ErrorIs(t, table.Erase(testKey(2)), ErrEntryNotFound)

	require.NoError(t, table.Erase(testKey(1)))
	exists, err := table.Exists(testKey(1))
	require.NoError(t, err)
	assert.False(t, exists)
	assert.ErrorIs(t, table.Update(testKey(1), []byte("x")), ErrEntryNotFound)
}

func TestApplyStateTableInsertThenErase(t *testing.T) {
	table := NewApplyStateTable(mapView{})
	require.NoError(t, table.Insert(testKey(9), []byte("tmp")))
	require.NoError(t, table.Erase(testKey(9)))

	changes, observed := table.Apply()
	assert.Empty(t, changes)
	require.Len(t, observed, 1)
	assert.Nil(t, observed[0].Value)
}

func TestApplyStateTableUnchangedModifyIsDropped(t *testing.T) {
	base := mapView{testKey(1).Key: []byte("same")}
	table := NewApplyStateTable(base)
	require.NoError(t, table.Update(testKey(1), []byte("same")))

	changes, observed := table.Apply()
	assert.Empty(t, changes)
	assert.Len(t, observed, 1)
}

// Package kvstoretest holds the behaviour every kvstore backend must share.
package kvstoretest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore"
)

// Run exercises a backend. open must return a fresh, empty store; Run
// closes it.
func Run(t *testing.T, open func(t *testing.T) kvstore.DB) {
	fresh := func(t *testing.T) kvstore.DB {
		db := open(t)
		t.Cleanup(func() { _ = db.Close() })
		return db
	}

	t.Run("ReadWriteDelete", func(t *testing.T) { testReadWriteDelete(t, fresh(t)) })
	t.Run("Batch", func(t *testing.T) { testBatch(t, fresh(t)) })
	t.Run("Iterator", func(t *testing.T) { testIterator(t, fresh(t)) })
	t.Run("BatchIf", func(t *testing.T) { testBatchIf(t, fresh(t)) })
	t.Run("BatchIfRace", func(t *testing.T) { testBatchIfRace(t, fresh(t)) })
}

func testReadWriteDelete(t *testing.T, db kvstore.DB) {
	ctx := context.Background()

	_, err := db.Read(ctx, []byte("missing"))
	require.ErrorIs(t, err, kvstore.ErrNotFound)

	require.NoError(t, db.Write(ctx, []byte("k"), []byte("v1")))
	got, err := db.Read(ctx, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, db.Write(ctx, []byte("k"), []byte("v2")))
	got, err = db.Read(ctx, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	require.NoError(t, db.Delete(ctx, []byte("k")))
	_, err = db.Read(ctx, []byte("k"))
	require.ErrorIs(t, err, kvstore.ErrNotFound)
}

func testBatch(t *testing.T, db kvstore.DB) {
	ctx := context.Background()
	require.NoError(t, db.Write(ctx, []byte("gone"), []byte("x")))

	err := db.Batch(ctx, []kvstore.BatchOperation{
		{Type: kvstore.BatchPut, Key: []byte("a"), Value: []byte("1")},
		{Type: kvstore.BatchPut, Key: []byte("b"), Value: []byte("2")},
		{Type: kvstore.BatchDelete, Key: []byte("gone")},
	})
	require.NoError(t, err)

	got, err := db.Read(ctx, []byte("b"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), got)
	_, err = db.Read(ctx, []byte("gone"))
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func testIterator(t *testing.T, db kvstore.DB) {
	ctx := context.Background()
	for _, k := range []string{"d", "a", "c", "b", "e"} {
		require.NoError(t, db.Write(ctx, []byte(k), []byte("v"+k)))
	}

	it, err := db.Iterator(ctx, []byte("b"), []byte("e"))
	require.NoError(t, err)
	defer it.Close()

	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
		assert.Equal(t, "v"+string(it.Key()), string(it.Value()))
	}
	require.NoError(t, it.Error())
	assert.Equal(t, []string{"b", "c", "d"}, keys)
}

func testBatchIf(t *testing.T, db kvstore.DB) {
	if _, ok := db.(kvstore.ConditionalBatcher); !ok {
		t.Skip("store has no conditional batch")
	}
	ctx := context.Background()
	require.NoError(t, db.Write(ctx, []byte("status"), []byte("active")))

	put := []kvstore.BatchOperation{{Type: kvstore.BatchPut, Key: []byte("status"), Value: []byte("settled")}}

	// A stale guard is rejected and nothing is written.
	err := kvstore.BatchIf(ctx, db, []kvstore.Guard{{Key: []byte("status"), Value: []byte("pending")}}, put)
	require.ErrorIs(t, err, kvstore.ErrConflict)
	got, err := db.Read(ctx, []byte("status"))
	require.NoError(t, err)
	assert.Equal(t, []byte("active"), got)

	// A guard on absence fails once the key exists.
	err = kvstore.BatchIf(ctx, db, []kvstore.Guard{{Key: []byte("status")}}, put)
	require.ErrorIs(t, err, kvstore.ErrConflict)

	// Matching guards commit.
	guards := []kvstore.Guard{{Key: []byte("status"), Value: []byte("active")}, {Key: []byte("fresh")}}
	ops := append(put, kvstore.BatchOperation{Type: kvstore.BatchPut, Key: []byte("fresh"), Value: []byte("1")})
	require.NoError(t, kvstore.BatchIf(ctx, db, guards, ops))
	got, err = db.Read(ctx, []byte("status"))
	require.NoError(t, err)
	assert.Equal(t, []byte("settled"), got)

	// Replaying the same guarded batch now conflicts.
	require.ErrorIs(t, kvstore.BatchIf(ctx, db, guards, ops), kvstore.ErrConflict)
}

// testBatchIfRace has many writers race the same guarded transition;
// exactly one may win.
func testBatchIfRace(t *testing.T, db kvstore.DB) {
	if _, ok := db.(kvstore.ConditionalBatcher); !ok {
		t.Skip("store has no conditional batch")
	}
	ctx := context.Background()
	require.NoError(t, db.Write(ctx, []byte("lot"), []byte("open")))

	const writers = 16
	var wins, conflicts atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := kvstore.BatchIf(ctx, db,
				[]kvstore.Guard{{Key: []byte("lot"), Value: []byte("open")}},
				[]kvstore.BatchOperation{{Type: kvstore.BatchPut, Key: []byte("lot"), Value: []byte{'w', byte('a' + i)}}})
			switch {
			case err == nil:
				wins.Add(1)
			case assert.ErrorIs(t, err, kvstore.ErrConflict):
				conflicts.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(writers-1), conflicts.Load())
}

package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore"
	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore/kvstoretest"
	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore/memory"
)

func TestCachedDB(t *testing.T) {
	kvstoretest.Run(t, func(t *testing.T) kvstore.DB {
		db, err := New(memory.New(), 8)
		require.NoError(t, err)
		return db
	})
}

func TestCacheHitsAndEvictsOnWrite(t *testing.T) {
	inner := memory.New()
	db, err := New(inner, 8)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, inner.Write(ctx, []byte("k"), []byte("v1")))
	_, err = db.Read(ctx, []byte("k"))
	require.NoError(t, err)
	_, err = db.Read(ctx, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, Stats{Hits: 1, Misses: 1, Len: 1}, db.Stats())

	require.NoError(t, db.Batch(ctx, []kvstore.BatchOperation{{Type: kvstore.BatchPut, Key: []byte("k"), Value: []byte("v2")}}))
	got, err := db.Read(ctx, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestCacheEvictsGuardsOnConflict(t *testing.T) {
	inner := memory.New()
	db, err := New(inner, 8)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, db.Write(ctx, []byte("lot"), []byte("open")))
	// A write that bypasses the cache leaves a stale cached value.
	require.NoError(t, inner.Write(ctx, []byte("lot"), []byte("settled")))

	stale, err := db.Read(ctx, []byte("lot"))
	require.NoError(t, err)
	require.Equal(t, []byte("open"), stale)

	err = db.BatchIf(ctx,
		[]kvstore.Guard{{Key: []byte("lot"), Value: stale}},
		[]kvstore.BatchOperation{{Type: kvstore.BatchPut, Key: []byte("other"), Value: []byte("x")}})
	require.ErrorIs(t, err, kvstore.ErrConflict)

	fresh, err := db.Read(ctx, []byte("lot"))
	require.NoError(t, err)
	assert.Equal(t, []byte("settled"), fresh)
}

func TestCachedPlainStore(t *testing.T) {
	kvstoretest.Run(t, func(t *testing.T) kvstore.DB {
		db, err := New(kvstoretest.Plain{DB: memory.New()}, 8)
		require.NoError(t, err)
		return db
	})
}

func TestMissDuringBatchDoesNotCacheOldValue(t *testing.T) {
	ctx := context.Background()
	key := []byte("lot")
	inner := &kvstoretest.Hooked{DB: memory.New()}
	require.NoError(t, inner.DB.Write(ctx, key, []byte("active")))

	db, err := New(inner, 8)
	require.NoError(t, err)

	var wg sync.WaitGroup
	inner.BeforeBatch = func([]kvstore.BatchOperation) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = db.Read(ctx, key)
		}()
		// give the reader time to race the write
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, db.Batch(ctx, []kvstore.BatchOperation{{Type: kvstore.BatchPut, Key: key, Value: []byte("settled")}}))
	inner.BeforeBatch = nil
	wg.Wait()

	got, err := db.Read(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("settled"), got)

	// a commit guarded on the old value must now conflict
	err = db.BatchIf(ctx,
		[]kvstore.Guard{{Key: key, Value: []byte("active")}},
		[]kvstore.BatchOperation{{Type: kvstore.BatchPut, Key: key, Value: []byte("settled-again")}})
	assert.ErrorIs(t, err, kvstore.ErrConflict)
}

func TestPlainBatchIfChecksGuards(t *testing.T) {
	ctx := context.Background()
	inner := kvstoretest.Plain{DB: memory.New()}
	require.NoError(t, inner.Write(ctx, []byte("k"), []byte("v2")))

	err := kvstore.BatchIf(ctx, inner,
		[]kvstore.Guard{{Key: []byte("k"), Value: []byte("v1")}},
		[]kvstore.BatchOperation{{Type: kvstore.BatchPut, Key: []byte("k"), Value: []byte("v3")}})
	require.ErrorIs(t, err, kvstore.ErrConflict)

	got, err := inner.Read(ctx, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

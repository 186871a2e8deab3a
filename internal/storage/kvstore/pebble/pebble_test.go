package pebble

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore"
	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore/kvstoretest"
)

func TestPebbleDB(t *testing.T) {
	kvstoretest.Run(t, func(t *testing.T) kvstore.DB {
		db, err := Open(t.TempDir())
		require.NoError(t, err)
		return db
	})
}

func TestPebbleReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, db.Write(ctx, []byte("k"), []byte("durable")))
	require.NoError(t, db.Close())

	_, err = db.Read(ctx, []byte("k"))
	assert.ErrorIs(t, err, kvstore.ErrClosed)

	db, err = Open(dir)
	require.NoError(t, err)
	defer db.Close()
	got, err := db.Read(ctx, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("durable"), got)
}

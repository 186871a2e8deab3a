package genesis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/keylet"
	"github.com/LeJamon/goDutchAuction/internal/core/tx"
	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore/memory"
)

func TestCreateFundsMaster(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	cfg := Config{MasterSeed: "genesis-test", Supply: 1_000}

	res, err := Create(ctx, db, cfg)
	require.NoError(t, err)
	assert.True(t, res.Created)

	key, err := MasterKey(cfg)
	require.NoError(t, err)
	assert.Equal(t, key.AccountID(), res.Master)

	root, err := tx.ReadEntry[entries.AccountRoot](ledger.NewState(ctx, db), keylet.Account(res.Master))
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Equal(t, uint64(1_000), root.Balance)
	assert.Equal(t, uint32(1), root.Sequence)
}

func TestCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	cfg := DefaultConfig()

	_, err := Create(ctx, db, cfg)
	require.NoError(t, err)

	res, err := Create(ctx, db, Config{MasterSeed: cfg.MasterSeed, Supply: 1})
	require.NoError(t, err)
	assert.False(t, res.Created)

	root, err := tx.ReadEntry[entries.AccountRoot](ledger.NewState(ctx, db), keylet.Account(res.Master))
	require.NoError(t, err)
	assert.Equal(t, DefaultSupply, root.Balance)
}

func TestCreateRequiresSeed(t *testing.T) {
	_, err := Create(context.Background(), memory.New(), Config{})
	assert.Error(t, err)
}

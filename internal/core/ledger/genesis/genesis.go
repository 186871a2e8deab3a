// Package genesis funds the master account of a new ledger.
package genesis

import (
	"context"
	"errors"
	"fmt"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/keylet"
	"github.com/LeJamon/goDutchAuction/internal/core/tx"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore"
)

const (
	// DefaultMasterSeed is the well-known seed of the master account
	DefaultMasterSeed = "masterpassphrase"

	// DefaultSupply is the native balance the master account starts with
	DefaultSupply uint64 = 100_000_000_000_000
)

// Config holds the genesis parameters
type Config struct {
	MasterSeed string
	Supply     uint64
}

// DefaultConfig returns the default genesis configuration
func DefaultConfig() Config {
	return Config{MasterSeed: DefaultMasterSeed, Supply: DefaultSupply}
}

// Result describes the outcome of Create.
type Result struct {
	Master  crypto.AccountID
	Created bool
}

// MasterKey derives the master key pair from the configured seed.
func MasterKey(cfg Config) (*crypto.KeyPair, error) {
	if cfg.MasterSeed == "" {
		return nil, errors.New("genesis: master seed is required")
	}
	return crypto.NewKeyPairFromSeed([]byte(cfg.MasterSeed))
}

// Create funds the master account unless it already exists. Running it
// against an initialized ledger is a no-op.
func Create(ctx context.Context, db kvstore.DB, cfg Config) (Result, error) {
	key, err := MasterKey(cfg)
	if err != nil {
		return Result{}, err
	}
	defer key.Close()
	master := key.AccountID()

	table := tx.NewApplyStateTable(ledger.NewState(ctx, db))
	k := keylet.Account(master)
	exists, err := table.Exists(k)
	if err != nil {
		return Result{}, fmt.Errorf("genesis: %w", err)
	}
	if exists {
		return Result{Master: master}, nil
	}

	root := &entries.AccountRoot{Account: master, Balance: cfg.Supply, Sequence: 1}
	if err := tx.InsertEntry(table, k, root); err != nil {
		return Result{}, fmt.Errorf("genesis: %w", err)
	}
	changes, observed := table.Apply()
	if err := ledger.Commit(ctx, db, changes, observed); err != nil {
		return Result{}, fmt.Errorf("genesis: %w", err)
	}
	return Result{Master: master, Created: true}, nil
}

package testing

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/LeJamon/goDutchAuction/internal/clock"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/genesis"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/service"
	"github.com/LeJamon/goDutchAuction/internal/core/tx"
	_ "github.com/LeJamon/goDutchAuction/internal/core/tx/all"
	"github.com/LeJamon/goDutchAuction/internal/core/tx/payment"
	"github.com/LeJamon/goDutchAuction/internal/core/tx/token"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore"
	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore/cache"
	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore/memory"
)

// DefaultFunding is the native balance Fund gives each account.
const DefaultFunding uint64 = 1_000_000

// TestEnv manages a test ledger environment for transaction testing.
// It provides a simplified interface for creating accounts, funding them,
// submitting transactions, and verifying results.
type TestEnv struct {
	t        *testing.T
	ctx      context.Context
	store    kvstore.DB
	clock    *clock.Manual
	service  *service.Service
	accounts map[crypto.AccountID]*Account
	master   *Account
}

// NewTestEnv creates a test environment with the clock at 0 on an
// in-memory store behind the read cache, as the daemon runs it.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	store, err := cache.New(memory.New(), cache.DefaultSize)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	return NewTestEnvWithStore(t, store)
}

// NewTestEnvWithStore creates a test environment on store. The store is
// closed when the test ends.
func NewTestEnvWithStore(t *testing.T, store kvstore.DB) *TestEnv {
	t.Helper()

	manual := clock.NewManual(0)
	svc, err := service.New(service.Config{
		Store:   store,
		Clock:   manual,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Genesis: genesis.DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("Failed to create ledger service: %v", err)
	}
	ctx := context.Background()
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("Failed to start ledger service: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	master := MasterAccount()
	env := &TestEnv{
		t:        t,
		ctx:      ctx,
		store:    store,
		clock:    manual,
		service:  svc,
		accounts: make(map[crypto.AccountID]*Account),
		master:   master,
	}
	env.accounts[master.ID] = master
	return env
}

// Account returns the named account, registering its key for signing.
func (e *TestEnv) Account(name string) *Account {
	acc := NewAccount(name)
	if known, ok := e.accounts[acc.ID]; ok {
		return known
	}
	e.accounts[acc.ID] = acc
	return acc
}

// MasterAccount returns the genesis account.
func (e *TestEnv) MasterAccount() *Account {
	return e.master
}

// Service returns the ledger service under test.
func (e *TestEnv) Service() *service.Service {
	return e.service
}

// Store returns the backing key-value store.
func (e *TestEnv) Store() kvstore.DB {
	return e.store
}

// Clock returns the manual clock the ledger reads.
func (e *TestEnv) Clock() *clock.Manual {
	return e.clock
}

// Fund pays DefaultFunding from the master account to each account.
func (e *TestEnv) Fund(accounts ...*Account) {
	e.t.Helper()
	for _, acc := range accounts {
		e.FundAmount(acc, DefaultFunding)
	}
}

// FundAmount pays amount from the master account to acc.
func (e *TestEnv) FundAmount(acc *Account, amount uint64) {
	e.t.Helper()
	e.accounts[acc.ID] = acc
	result := e.Submit(payment.NewPayment(e.master.ID, acc.ID, amount))
	if !result.Success {
		e.t.Fatalf("Failed to fund %s: %s", acc, result.Code)
	}
}

// CreateMint creates a mint issued by issuer and returns its ID.
func (e *TestEnv) CreateMint(issuer *Account, decimals uint8) crypto.AccountID {
	e.t.Helper()
	m := token.NewMintCreate(issuer.ID, decimals)
	m.SetSequence(e.Seq(issuer))
	result := e.Submit(m)
	if !result.Success {
		e.t.Fatalf("Failed to create mint for %s: %s", issuer, result.Code)
	}
	return m.MintID()
}

// MintTo issues amount of mint to destination.
func (e *TestEnv) MintTo(issuer *Account, mint crypto.AccountID, destination *Account, amount uint64) {
	e.t.Helper()
	result := e.Submit(token.NewMintTo(issuer.ID, mint, destination.ID, amount))
	if !result.Success {
		e.t.Fatalf("Failed to mint %d to %s: %s", amount, destination, result.Code)
	}
}

// Submit fills in the sequence, signs and submits transaction. A
// service error fails the test.
func (e *TestEnv) Submit(transaction tx.Transaction) TxResult {
	e.t.Helper()
	result, err := e.TrySubmit(transaction)
	if err != nil {
		e.t.Fatalf("Submit %s: %v", transaction.TxType(), err)
	}
	return result
}

// TrySubmit is Submit for tests that expect the service to error.
func (e *TestEnv) TrySubmit(transaction tx.Transaction) (TxResult, error) {
	e.t.Helper()
	common := transaction.GetCommon()
	if common.Sequence == nil {
		common.SetSequence(e.Seq(&Account{ID: common.Account}))
	}
	if acc, ok := e.accounts[common.Account]; ok && common.TxnSignature == "" {
		if err := tx.Sign(transaction, acc.Key); err != nil {
			e.t.Fatalf("Failed to sign %s for %s: %v", transaction.TxType(), acc, err)
		}
	}

	res, err := e.service.SubmitTransaction(e.ctx, transaction)
	if err != nil {
		return TxResult{}, err
	}
	return TxResult{
		Code:      res.Result,
		Success:   res.Applied,
		Message:   res.Message,
		Hash:      res.TxHash,
		ClockTime: res.ClockTime,
	}, nil
}

// Seq returns the next sequence of acc, or 1 when it does not exist.
func (e *TestEnv) Seq(acc *Account) uint32 {
	e.t.Helper()
	root := e.AccountRoot(acc)
	if root == nil {
		return 1
	}
	return root.Sequence
}

// AccountRoot returns the ledger entry of acc, or nil.
func (e *TestEnv) AccountRoot(acc *Account) *entries.AccountRoot {
	e.t.Helper()
	root, err := e.service.GetAccountInfo(e.ctx, acc.ID)
	if err == service.ErrAccountNotFound {
		return nil
	}
	if err != nil {
		e.t.Fatalf("Failed to read account %s: %v", acc, err)
	}
	return root
}

// Exists reports whether acc has an account root.
func (e *TestEnv) Exists(acc *Account) bool {
	e.t.Helper()
	return e.AccountRoot(acc) != nil
}

// Balance returns the native balance of acc, 0 when it does not exist.
func (e *TestEnv) Balance(acc *Account) uint64 {
	e.t.Helper()
	root := e.AccountRoot(acc)
	if root == nil {
		return 0
	}
	return root.Balance
}

// TokenBalance returns owner's holding of mint.
func (e *TestEnv) TokenBalance(owner crypto.AccountID, mint crypto.AccountID) uint64 {
	e.t.Helper()
	bal, _, err := e.service.GetTokenBalance(e.ctx, owner, mint)
	if err != nil {
		e.t.Fatalf("Failed to read token balance: %v", err)
	}
	return bal
}

// Mint returns the mint entry.
func (e *TestEnv) Mint(id crypto.AccountID) *entries.Mint {
	e.t.Helper()
	m, err := e.service.GetMint(e.ctx, id)
	if err != nil {
		e.t.Fatalf("Failed to read mint: %v", err)
	}
	return m
}

// Auction returns the auction record for escrow, or nil.
func (e *TestEnv) Auction(escrow [32]byte) *entries.Auction {
	e.t.Helper()
	rec, err := e.service.GetAuction(e.ctx, escrow)
	if err == service.ErrAuctionNotFound {
		return nil
	}
	if err != nil {
		e.t.Fatalf("Failed to read auction: %v", err)
	}
	return rec
}

// Price quotes the auction at the current clock reading.
func (e *TestEnv) Price(escrow [32]byte) uint64 {
	e.t.Helper()
	q, err := e.service.GetAuctionPrice(e.ctx, escrow)
	if err != nil {
		e.t.Fatalf("Failed to quote auction: %v", err)
	}
	return q.Price
}

// Now returns the clock reading.
func (e *TestEnv) Now() int64 {
	e.t.Helper()
	now, err := e.clock.Now(e.ctx)
	if err != nil {
		e.t.Fatalf("Failed to read clock: %v", err)
	}
	return now
}

// SetTime moves the clock to now.
func (e *TestEnv) SetTime(now int64) {
	e.clock.Set(now)
}

// AdvanceTime moves the clock forward.
func (e *TestEnv) AdvanceTime(seconds int64) {
	e.t.Helper()
	if _, err := e.clock.Advance(seconds); err != nil {
		e.t.Fatalf("Failed to advance clock: %v", err)
	}
}

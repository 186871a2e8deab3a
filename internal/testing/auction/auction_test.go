// Package auction_test contains integration tests for the auction
// lifecycle: create, settle and cancel against a running ledger service.
package auction_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/keylet"
	"github.com/LeJamon/goDutchAuction/internal/core/tx"
	"github.com/LeJamon/goDutchAuction/internal/core/tx/auction"
	"github.com/LeJamon/goDutchAuction/internal/core/tx/payment"
	"github.com/LeJamon/goDutchAuction/internal/core/tx/token"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
	jtx "github.com/LeJamon/goDutchAuction/internal/testing"
	"github.com/LeJamon/goDutchAuction/internal/testing/builders"
)

type fixture struct {
	env    *jtx.TestEnv
	seller *jtx.Account
	buyer  *jtx.Account
	mint   crypto.AccountID
}

// setup funds a seller and a buyer and gives the seller supply tokens of
// a fresh mint.
func setup(t *testing.T, supply uint64) *fixture {
	t.Helper()
	return setupOn(t, jtx.NewTestEnv(t), supply)
}

// setupOn is setup on a prepared environment.
func setupOn(t *testing.T, env *jtx.TestEnv, supply uint64) *fixture {
	t.Helper()
	seller := env.Account("seller")
	buyer := env.Account("buyer")
	env.Fund(seller, buyer)

	mint := env.CreateMint(seller, 0)
	env.MintTo(seller, mint, seller, supply)
	return &fixture{env: env, seller: seller, buyer: buyer, mint: mint}
}

// open creates the default auction of amount tokens and returns its
// escrow key.
func (f *fixture) open(t *testing.T, b *builders.AuctionCreateBuilder) ([32]byte, crypto.AccountID) {
	t.Helper()
	create := b.Build()
	jtx.RequireTxSuccess(t, f.env.Submit(create))
	rec := jtx.RequireAuctionStatus(t, f.env, create.EscrowAccount(), entries.AuctionActive)
	return create.EscrowAccount(), rec.Authority
}

func TestCreateEscrowsTokens(t *testing.T) {
	f := setup(t, 8)
	f.env.SetTime(3)

	escrow, authority := f.open(t, builders.AuctionCreate(f.seller.ID, f.mint).Amount(5))

	jtx.RequireTokenBalance(t, f.env, f.seller.ID, f.mint, 3)
	jtx.RequireTokenBalance(t, f.env, authority, f.mint, 5)

	rec := f.env.Auction(escrow)
	assert.Equal(t, f.seller.ID, rec.Seller)
	assert.Equal(t, uint64(5), rec.Amount)
	assert.Equal(t, escrow, rec.EscrowAccount)
	assert.Equal(t, int64(3), rec.CreatedAt)
	assert.True(t, rec.Buyer.IsZero())

	derived, k := auction.Escrow(f.seller.ID, f.mint, 0)
	assert.Equal(t, derived, authority)
	assert.Equal(t, k.Key, escrow)
}

func TestSettleAtHalfway(t *testing.T) {
	f := setup(t, 5)
	escrow, authority := f.open(t, builders.AuctionCreate(f.seller.ID, f.mint).
		Amount(5).Prices(100, 10).Window(0, 100))

	f.env.SetTime(50)
	assert.Equal(t, uint64(55), f.env.Price(escrow))

	sellerBefore := f.env.Balance(f.seller)
	buyerBefore := f.env.Balance(f.buyer)

	result := f.env.Submit(builders.AuctionSettle(f.buyer.ID, escrow).Build())
	jtx.RequireTxSuccess(t, result)

	jtx.RequireBalance(t, f.env, f.seller, sellerBefore+55)
	jtx.RequireBalance(t, f.env, f.buyer, buyerBefore-55)
	jtx.RequireTokenBalance(t, f.env, f.buyer.ID, f.mint, 5)
	jtx.RequireTokenBalance(t, f.env, authority, f.mint, 0)

	rec := jtx.RequireAuctionStatus(t, f.env, escrow, entries.AuctionSettled)
	assert.Equal(t, f.buyer.ID, rec.Buyer)
	assert.Equal(t, uint64(55), rec.SettledPrice)
	assert.Equal(t, int64(50), rec.SettledAt)
	assert.Equal(t, int64(50), rec.ClosedAt)

	// A later settlement finds the auction closed and changes nothing.
	f.env.SetTime(60)
	third := f.env.Account("third")
	f.env.Fund(third)
	jtx.AssertNoBalanceChange(t, f.env, f.seller, func() {
		jtx.RequireTxFail(t, f.env.Submit(builders.AuctionSettle(third.ID, escrow).Build()), tx.TecNOT_ACTIVE)
	})
	jtx.RequireTokenBalance(t, f.env, third.ID, f.mint, 0)
	jtx.RequireSequence(t, f.env, third, 1)
	assert.Equal(t, uint64(55), f.env.Price(escrow))
}

func TestSettlePriceAcrossWindow(t *testing.T) {
	tests := []struct {
		name     string
		now      int64
		expected uint64
	}{
		{"before start", 0, 100},
		{"at start", 10, 100},
		{"inside", 60, 55},
		{"at end", 110, 10},
		{"after end", 500, 10},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := setup(t, 1)
			escrow, _ := f.open(t, builders.AuctionCreate(f.seller.ID, f.mint).Window(10, 110))

			f.env.SetTime(tc.now)
			jtx.AssertBalanceChange(t, f.env, f.buyer, -int64(tc.expected), func() {
				jtx.RequireTxSuccess(t, f.env.Submit(builders.AuctionSettle(f.buyer.ID, escrow).Build()))
			})
			rec := jtx.RequireAuctionStatus(t, f.env, escrow, entries.AuctionSettled)
			assert.Equal(t, tc.expected, rec.SettledPrice)
		})
	}
}

func TestSettleSteppedCurve(t *testing.T) {
	f := setup(t, 1)
	escrow, _ := f.open(t, builders.AuctionCreate(f.seller.ID, f.mint).
		Prices(100, 10).Window(0, 100).Stepped(25))

	f.env.SetTime(49)
	assert.Equal(t, uint64(77), f.env.Price(escrow))
	jtx.RequireTxSuccess(t, f.env.Submit(builders.AuctionSettle(f.buyer.ID, escrow).Build()))
	rec := jtx.RequireAuctionStatus(t, f.env, escrow, entries.AuctionSettled)
	assert.Equal(t, uint64(77), rec.SettledPrice)
}

func TestSettleMaxPrice(t *testing.T) {
	f := setup(t, 1)
	escrow, authority := f.open(t, builders.AuctionCreate(f.seller.ID, f.mint))
	f.env.SetTime(50)

	jtx.AssertNoBalanceChange(t, f.env, f.buyer, func() {
		result := f.env.Submit(builders.AuctionSettle(f.buyer.ID, escrow).MaxPrice(54).Build())
		jtx.RequireTxFail(t, result, tx.TecPRICE_EXCEEDS_LIMIT)
	})
	jtx.RequireAuctionStatus(t, f.env, escrow, entries.AuctionActive)
	jtx.RequireTokenBalance(t, f.env, authority, f.mint, 1)

	jtx.RequireTxSuccess(t, f.env.Submit(builders.AuctionSettle(f.buyer.ID, escrow).MaxPrice(55).Build()))
}

func TestSettleInsufficientFunds(t *testing.T) {
	f := setup(t, 1)
	escrow, authority := f.open(t, builders.AuctionCreate(f.seller.ID, f.mint).
		Prices(jtx.DefaultFunding*2, jtx.DefaultFunding*2).Window(0, 10))

	result := f.env.Submit(builders.AuctionSettle(f.buyer.ID, escrow).Build())
	jtx.RequireTxFail(t, result, tx.TecINSUFFICIENT_FUNDS)

	jtx.RequireBalance(t, f.env, f.buyer, jtx.DefaultFunding)
	jtx.RequireTokenBalance(t, f.env, authority, f.mint, 1)
	jtx.RequireTokenBalance(t, f.env, f.buyer.ID, f.mint, 0)
	jtx.RequireAuctionStatus(t, f.env, escrow, entries.AuctionActive)
}

func TestSettleAtZeroPrice(t *testing.T) {
	f := setup(t, 2)
	escrow, _ := f.open(t, builders.AuctionCreate(f.seller.ID, f.mint).Amount(2).Prices(0, 0))

	jtx.AssertNoBalanceChange(t, f.env, f.seller, func() {
		jtx.RequireTxSuccess(t, f.env.Submit(builders.AuctionSettle(f.buyer.ID, escrow).Build()))
	})
	jtx.RequireTokenBalance(t, f.env, f.buyer.ID, f.mint, 2)
}

func TestSellerCanSettleOwnAuction(t *testing.T) {
	f := setup(t, 3)
	escrow, _ := f.open(t, builders.AuctionCreate(f.seller.ID, f.mint).Amount(3))

	jtx.AssertNoBalanceChange(t, f.env, f.seller, func() {
		jtx.RequireTxSuccess(t, f.env.Submit(builders.AuctionSettle(f.seller.ID, escrow).Build()))
	})
	jtx.RequireTokenBalance(t, f.env, f.seller.ID, f.mint, 3)
	rec := jtx.RequireAuctionStatus(t, f.env, escrow, entries.AuctionSettled)
	assert.Equal(t, f.seller.ID, rec.Buyer)
}

func TestSettleUnknownAuction(t *testing.T) {
	f := setup(t, 1)
	jtx.RequireTxFail(t, f.env.Submit(builders.AuctionSettle(f.buyer.ID, [32]byte{1}).Build()), tx.TecNO_ENTRY)
}

func TestSettleRejectsMalformedEscrow(t *testing.T) {
	f := setup(t, 1)
	s := auction.NewAuctionSettle(f.buyer.ID, [32]byte{})
	s.EscrowAccount = "not-hex"
	result := f.env.Submit(s)
	assert.False(t, result.Success)
	assert.Equal(t, "tem", jtx.ResultCodeCategory(result.Code))
}

func TestCancelReturnsEscrow(t *testing.T) {
	f := setup(t, 5)
	escrow, authority := f.open(t, builders.AuctionCreate(f.seller.ID, f.mint).Amount(5))
	f.env.SetTime(20)

	jtx.RequireTxSuccess(t, f.env.Submit(builders.AuctionCancel(f.seller.ID, escrow)))

	jtx.RequireTokenBalance(t, f.env, f.seller.ID, f.mint, 5)
	jtx.RequireTokenBalance(t, f.env, authority, f.mint, 0)
	rec := jtx.RequireAuctionStatus(t, f.env, escrow, entries.AuctionCancelled)
	assert.Equal(t, int64(20), rec.ClosedAt)
	assert.True(t, rec.Buyer.IsZero())

	jtx.RequireTxFail(t, f.env.Submit(builders.AuctionCancel(f.seller.ID, escrow)), tx.TecNOT_ACTIVE)
	jtx.RequireTxFail(t, f.env.Submit(builders.AuctionSettle(f.buyer.ID, escrow).Build()), tx.TecNOT_ACTIVE)
}

func TestCancelAfterSettleFails(t *testing.T) {
	f := setup(t, 1)
	escrow, _ := f.open(t, builders.AuctionCreate(f.seller.ID, f.mint))

	jtx.RequireTxSuccess(t, f.env.Submit(builders.AuctionSettle(f.buyer.ID, escrow).Build()))
	jtx.RequireTxFail(t, f.env.Submit(builders.AuctionCancel(f.seller.ID, escrow)), tx.TecNOT_ACTIVE)
	jtx.RequireTokenBalance(t, f.env, f.buyer.ID, f.mint, 1)
	jtx.RequireTokenBalance(t, f.env, f.seller.ID, f.mint, 0)
}

func TestCancelRequiresSeller(t *testing.T) {
	f := setup(t, 1)
	escrow, authority := f.open(t, builders.AuctionCreate(f.seller.ID, f.mint))

	jtx.RequireTxFail(t, f.env.Submit(builders.AuctionCancel(f.buyer.ID, escrow)), tx.TecNO_PERMISSION)
	jtx.RequireTokenBalance(t, f.env, authority, f.mint, 1)
	jtx.RequireAuctionStatus(t, f.env, escrow, entries.AuctionActive)

	jtx.RequireTxFail(t, f.env.Submit(builders.AuctionCancel(f.seller.ID, [32]byte{9})), tx.TecNO_ENTRY)
}

func TestCreateFailures(t *testing.T) {
	f := setup(t, 3)

	t.Run("insufficient tokens", func(t *testing.T) {
		create := builders.AuctionCreate(f.seller.ID, f.mint).Nonce(10).Amount(4).Build()
		jtx.RequireTxFail(t, f.env.Submit(create), tx.TecINSUFFICIENT_FUNDS)
		assert.Nil(t, f.env.Auction(create.EscrowAccount()))
		jtx.RequireTokenBalance(t, f.env, f.seller.ID, f.mint, 3)
	})

	t.Run("invalid schedule", func(t *testing.T) {
		create := builders.AuctionCreate(f.seller.ID, f.mint).Nonce(11).Prices(10, 20).Build()
		jtx.RequireTxFail(t, f.env.Submit(create), tx.TemINVALID_SCHEDULE)

		create = builders.AuctionCreate(f.seller.ID, f.mint).Nonce(12).Window(50, 50).Build()
		jtx.RequireTxFail(t, f.env.Submit(create), tx.TemINVALID_SCHEDULE)
	})

	t.Run("zero amount", func(t *testing.T) {
		create := builders.AuctionCreate(f.seller.ID, f.mint).Nonce(13).Amount(0).Build()
		jtx.RequireTxFail(t, f.env.Submit(create), tx.TemBAD_AMOUNT)
	})

	t.Run("unknown mint", func(t *testing.T) {
		create := builders.AuctionCreate(f.seller.ID, crypto.AccountID{0x42}).Nonce(14).Build()
		jtx.RequireTxFail(t, f.env.Submit(create), tx.TecNO_ENTRY)
	})

	t.Run("duplicate nonce", func(t *testing.T) {
		f.open(t, builders.AuctionCreate(f.seller.ID, f.mint).Nonce(15))
		create := builders.AuctionCreate(f.seller.ID, f.mint).Nonce(15).Build()
		jtx.RequireTxFail(t, f.env.Submit(create), tx.TecDUPLICATE)
		jtx.RequireTokenBalance(t, f.env, f.seller.ID, f.mint, 2)
	})
}

func TestIndependentAuctionsBySameSeller(t *testing.T) {
	f := setup(t, 4)
	first, _ := f.open(t, builders.AuctionCreate(f.seller.ID, f.mint).Nonce(1).Amount(2))
	second, _ := f.open(t, builders.AuctionCreate(f.seller.ID, f.mint).Nonce(2).Amount(2))
	require.NotEqual(t, first, second)

	jtx.RequireTxSuccess(t, f.env.Submit(builders.AuctionSettle(f.buyer.ID, first).Build()))
	jtx.RequireAuctionStatus(t, f.env, second, entries.AuctionActive)
	jtx.RequireTxSuccess(t, f.env.Submit(builders.AuctionCancel(f.seller.ID, second)))

	jtx.RequireTokenBalance(t, f.env, f.buyer.ID, f.mint, 2)
	jtx.RequireTokenBalance(t, f.env, f.seller.ID, f.mint, 2)
}

func TestSettleRejectsTamperedRecord(t *testing.T) {
	f := setup(t, 1)
	escrow, authority := f.open(t, builders.AuctionCreate(f.seller.ID, f.mint))

	rec := f.env.Auction(escrow)
	rec.Nonce++
	data, err := entries.Encode(rec)
	require.NoError(t, err)
	key := keylet.Auction(escrow).Key
	require.NoError(t, f.env.Store().Write(context.Background(), key[:], data))

	jtx.RequireTxFail(t, f.env.Submit(builders.AuctionSettle(f.buyer.ID, escrow).Build()), tx.TecAUTHORITY_MISMATCH)
	jtx.RequireTxFail(t, f.env.Submit(builders.AuctionCancel(f.seller.ID, escrow)), tx.TecAUTHORITY_MISMATCH)
	jtx.RequireTokenBalance(t, f.env, authority, f.mint, 1)
}

func TestTokenSupplyIsConserved(t *testing.T) {
	f := setup(t, 10)
	escrow, authority := f.open(t, builders.AuctionCreate(f.seller.ID, f.mint).Amount(6))

	total := func() uint64 {
		return f.env.TokenBalance(f.seller.ID, f.mint) +
			f.env.TokenBalance(f.buyer.ID, f.mint) +
			f.env.TokenBalance(authority, f.mint)
	}
	assert.Equal(t, uint64(10), total())

	f.env.SetTime(99)
	jtx.RequireTxSuccess(t, f.env.Submit(builders.AuctionSettle(f.buyer.ID, escrow).Build()))
	assert.Equal(t, uint64(10), total())
	assert.Equal(t, uint64(10), f.env.Mint(f.mint).Supply)
}

func TestConcurrentSettleExactlyOnce(t *testing.T) {
	f := setup(t, 1)
	requireSettlesOnce(t, f, 12)
}

// requireSettlesOnce races settlements by n funded buyers against one
// auction and requires exactly one to win.
func requireSettlesOnce(t *testing.T, f *fixture, n int) {
	t.Helper()
	escrow, authority := f.open(t, builders.AuctionCreate(f.seller.ID, f.mint))
	f.env.SetTime(40)

	settles := make([]tx.Transaction, n)
	for i := range settles {
		acc := f.env.Account("buyer-" + string(rune('a'+i)))
		f.env.Fund(acc)
		s := builders.AuctionSettle(acc.ID, escrow).Build()
		s.SetSequence(1)
		require.NoError(t, tx.Sign(s, acc.Key))
		settles[i] = s
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []tx.Result
	)
	for _, s := range settles {
		wg.Add(1)
		go func(s tx.Transaction) {
			defer wg.Done()
			res, err := f.env.Service().SubmitTransaction(context.Background(), s)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			results = append(results, res.Result)
			mu.Unlock()
		}(s)
	}
	wg.Wait()

	var won int
	for _, r := range results {
		switch r {
		case tx.TesSUCCESS:
			won++
		default:
			assert.Equal(t, tx.TecNOT_ACTIVE, r)
		}
	}
	assert.Len(t, results, n)
	assert.Equal(t, 1, won)

	rec := jtx.RequireAuctionStatus(t, f.env, escrow, entries.AuctionSettled)
	jtx.RequireTokenBalance(t, f.env, rec.Buyer, f.mint, 1)
	jtx.RequireTokenBalance(t, f.env, authority, f.mint, 0)
	assert.Equal(t, uint64(1), f.env.Mint(f.mint).Supply)
}

func TestCreateAfterDepositToAuthority(t *testing.T) {
	f := setup(t, 3)
	f.env.MintTo(f.seller, f.mint, f.buyer, 2)

	authority, _ := auction.Escrow(f.seller.ID, f.mint, 7)
	jtx.RequireTxSuccess(t, f.env.Submit(payment.NewPayment(f.buyer.ID, authority, 1)))
	jtx.RequireTxSuccess(t, f.env.Submit(token.NewTokenTransfer(f.buyer.ID, f.mint, authority, 2)))

	escrow, got := f.open(t, builders.AuctionCreate(f.seller.ID, f.mint).Nonce(7).Amount(3))
	require.Equal(t, authority, got)
	jtx.RequireTokenBalance(t, f.env, authority, f.mint, 5)

	f.env.SetTime(99)
	jtx.RequireTxSuccess(t, f.env.Submit(builders.AuctionSettle(f.buyer.ID, escrow).Build()))
	jtx.RequireTokenBalance(t, f.env, f.buyer.ID, f.mint, 3)
	jtx.RequireTokenBalance(t, f.env, authority, f.mint, 2)

	// the record still reserves the nonce
	create := builders.AuctionCreate(f.seller.ID, f.mint).Nonce(7).Amount(1).Build()
	jtx.RequireTxFail(t, f.env.Submit(create), tx.TecDUPLICATE)
}

package testing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goDutchAuction/internal/core/tx"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

// RequireBalance asserts that an account has the expected native balance.
func RequireBalance(t *testing.T, env *TestEnv, acc *Account, expected uint64) {
	t.Helper()
	actual := env.Balance(acc)
	require.Equal(t, expected, actual,
		"Account %s balance mismatch: expected %d, got %d", acc.Name, expected, actual)
}

// RequireTokenBalance asserts owner's holding of mint.
func RequireTokenBalance(t *testing.T, env *TestEnv, owner crypto.AccountID, mint crypto.AccountID, expected uint64) {
	t.Helper()
	actual := env.TokenBalance(owner, mint)
	require.Equal(t, expected, actual,
		"Token balance of %s mismatch: expected %d, got %d", owner, expected, actual)
}

// RequireTxSuccess asserts that a transaction result indicates success.
func RequireTxSuccess(t *testing.T, result TxResult) {
	t.Helper()
	require.True(t, result.Success,
		"Expected transaction success, got %s: %s", result.Code, result.Message)
	require.Equal(t, tx.TesSUCCESS, result.Code)
}

// RequireTxFail asserts that a transaction result indicates failure with a specific code.
func RequireTxFail(t *testing.T, result TxResult, expectedCode tx.Result) {
	t.Helper()
	require.False(t, result.Success,
		"Expected transaction failure with code %s, but transaction succeeded", expectedCode)
	require.Equal(t, expectedCode, result.Code,
		"Expected failure code %s, got %s: %s", expectedCode, result.Code, result.Message)
}

// RequireSequence asserts the next sequence of acc.
func RequireSequence(t *testing.T, env *TestEnv, acc *Account, expected uint32) {
	t.Helper()
	require.Equal(t, expected, env.Seq(acc), "Account %s sequence mismatch", acc.Name)
}

// RequireAuctionStatus asserts the status of the auction at escrow.
func RequireAuctionStatus(t *testing.T, env *TestEnv, escrow [32]byte, expected entries.AuctionStatus) *entries.Auction {
	t.Helper()
	rec := env.Auction(escrow)
	require.NotNil(t, rec, "auction not found")
	require.Equal(t, expected, rec.Status, "auction status mismatch")
	return rec
}

// AssertBalanceChange runs fn and asserts the signed change of acc's
// native balance.
func AssertBalanceChange(t *testing.T, env *TestEnv, acc *Account, expectedChange int64, fn func()) {
	t.Helper()
	before := env.Balance(acc)
	fn()
	after := env.Balance(acc)
	require.Equal(t, expectedChange, int64(after)-int64(before),
		"Account %s balance change mismatch", acc.Name)
}

// AssertNoBalanceChange runs fn and asserts acc's native balance is unchanged.
func AssertNoBalanceChange(t *testing.T, env *TestEnv, acc *Account, fn func()) {
	t.Helper()
	AssertBalanceChange(t, env, acc, 0, fn)
}

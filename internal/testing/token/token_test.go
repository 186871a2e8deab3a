// Package token_test contains integration tests for mints and token
// transfers.
package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/LeJamon/goDutchAuction/internal/core/tx"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
	jtx "github.com/LeJamon/goDutchAuction/internal/testing"
	"github.com/LeJamon/goDutchAuction/internal/testing/builders"
)

func TestMintCreate(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := env.Account("issuer")
	env.Fund(issuer)

	mint := env.CreateMint(issuer, 6)
	m := env.Mint(mint)
	assert.Equal(t, issuer.ID, m.Issuer)
	assert.Equal(t, uint8(6), m.Decimals)
	assert.Zero(t, m.Supply)
	jtx.RequireSequence(t, env, issuer, 2)

	// Each sequence yields a new mint.
	other := env.CreateMint(issuer, 0)
	assert.NotEqual(t, mint, other)
}

func TestMintCreateRejectsPrecision(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := env.Account("issuer")
	env.Fund(issuer)

	result := env.Submit(builders.MintCreate(issuer.ID).Decimals(19).Build())
	jtx.RequireTxFail(t, result, tx.TemMALFORMED)
}

func TestMintToIssuerOnly(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := env.Account("issuer")
	alice := env.Account("alice")
	env.Fund(issuer, alice)
	mint := env.CreateMint(issuer, 0)

	jtx.RequireTxSuccess(t, env.Submit(builders.MintTo(issuer.ID, mint, alice.ID, 40)))
	jtx.RequireTokenBalance(t, env, alice.ID, mint, 40)
	assert.Equal(t, uint64(40), env.Mint(mint).Supply)

	jtx.RequireTxFail(t, env.Submit(builders.MintTo(alice.ID, mint, alice.ID, 1)), tx.TecNO_PERMISSION)
	jtx.RequireTokenBalance(t, env, alice.ID, mint, 40)
}

func TestMintToUnknownDestination(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := env.Account("issuer")
	env.Fund(issuer)
	mint := env.CreateMint(issuer, 0)

	ghost := jtx.NewAccount("ghost")
	jtx.RequireTxFail(t, env.Submit(builders.MintTo(issuer.ID, mint, ghost.ID, 1)), tx.TecNO_DST)
	jtx.RequireTxFail(t, env.Submit(builders.MintTo(issuer.ID, crypto.AccountID{7}, issuer.ID, 1)), tx.TecNO_ENTRY)
}

func TestTokenTransfer(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := env.Account("issuer")
	alice := env.Account("alice")
	bob := env.Account("bob")
	env.Fund(issuer, alice, bob)
	mint := env.CreateMint(issuer, 0)
	env.MintTo(issuer, mint, alice, 10)

	jtx.RequireTxSuccess(t, env.Submit(builders.TokenTransfer(alice.ID, mint, bob.ID, 4)))
	jtx.RequireTokenBalance(t, env, alice.ID, mint, 6)
	jtx.RequireTokenBalance(t, env, bob.ID, mint, 4)

	jtx.RequireTxFail(t, env.Submit(builders.TokenTransfer(alice.ID, mint, bob.ID, 7)), tx.TecINSUFFICIENT_FUNDS)
	jtx.RequireTxFail(t, env.Submit(builders.TokenTransfer(issuer.ID, mint, bob.ID, 1)), tx.TecINSUFFICIENT_FUNDS)
	jtx.RequireTxFail(t, env.Submit(builders.TokenTransfer(alice.ID, mint, alice.ID, 1)), tx.TemDST_IS_SRC)
	jtx.RequireTxFail(t, env.Submit(builders.TokenTransfer(alice.ID, mint, bob.ID, 0)), tx.TemBAD_AMOUNT)

	ghost := jtx.NewAccount("ghost")
	jtx.RequireTxFail(t, env.Submit(builders.TokenTransfer(alice.ID, mint, ghost.ID, 1)), tx.TecNO_DST)

	// Transfers move tokens but never supply.
	assert.Equal(t, uint64(10), env.Mint(mint).Supply)
}

func TestTokenBalancesArePerMint(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := env.Account("issuer")
	alice := env.Account("alice")
	env.Fund(issuer, alice)
	gold := env.CreateMint(issuer, 0)
	silver := env.CreateMint(issuer, 2)

	env.MintTo(issuer, gold, alice, 3)
	env.MintTo(issuer, silver, alice, 300)

	jtx.RequireTokenBalance(t, env, alice.ID, gold, 3)
	jtx.RequireTokenBalance(t, env, alice.ID, silver, 300)
}

// Package token implements the fungible token program: mint definitions,
// associated token accounts and the authority-checked transfer primitive
// the auction program builds on.
package token

import (
	"math"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/authority"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/keylet"
	"github.com/LeJamon/goDutchAuction/internal/core/tx"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

// Authority authorizes a debit from a token account. It can only be built
// from an engine-verified signer or from an escrow authority grant.
type Authority struct {
	signer *crypto.AccountID
	grant  *authority.Grant
}

// BySigner authorizes debits from accounts owned by the transaction signer.
func BySigner(ctx *tx.ApplyContext) Authority {
	id := ctx.AccountID
	return Authority{signer: &id}
}

// ByGrant authorizes debits from accounts owned by a derived authority.
func ByGrant(g authority.Grant) Authority {
	return Authority{grant: &g}
}

func (a Authority) authorizes(owner crypto.AccountID) bool {
	switch {
	case a.signer != nil:
		return !a.signer.IsZero() && *a.signer == owner
	case a.grant != nil:
		return a.grant.Authorizes(owner)
	default:
		return false
	}
}

// Balance returns owner's holding of mint, zero when no account exists.
func Balance(view tx.ReadView, owner, mint crypto.AccountID) (uint64, error) {
	acct, err := tx.ReadEntry[entries.TokenAccount](view, keylet.TokenAccount(owner, mint))
	if err != nil || acct == nil {
		return 0, err
	}
	return acct.Amount, nil
}

// Transfer moves amount of mint from the associated account of from to the
// associated account of to, creating the destination account if needed.
// It fails with tecNO_PERMISSION unless auth controls the source account
// and with tecINSUFFICIENT_FUNDS when the source holds less than amount.
func Transfer(view tx.LedgerView, mint, from, to crypto.AccountID, amount uint64, auth Authority) tx.Result {
	if amount == 0 {
		return tx.TemBAD_AMOUNT
	}
	m, err := tx.ReadEntry[entries.Mint](view, keylet.Mint(mint))
	if err != nil {
		return tx.TefINTERNAL
	}
	if m == nil {
		return tx.TecNO_ENTRY
	}

	srcKey := keylet.TokenAccount(from, mint)
	src, err := tx.ReadEntry[entries.TokenAccount](view, srcKey)
	if err != nil {
		return tx.TefINTERNAL
	}
	if src == nil {
		return tx.TecINSUFFICIENT_FUNDS
	}
	if !auth.authorizes(src.Owner) {
		return tx.TecNO_PERMISSION
	}
	if src.Amount < amount {
		return tx.TecINSUFFICIENT_FUNDS
	}
	if from == to {
		return tx.TesSUCCESS
	}

	src.Amount -= amount
	if err := tx.UpdateEntry(view, srcKey, src); err != nil {
		return tx.TefINTERNAL
	}
	return credit(view, mint, to, amount)
}

// credit adds amount to owner's associated account, opening it if absent.
func credit(view tx.LedgerView, mint, owner crypto.AccountID, amount uint64) tx.Result {
	k := keylet.TokenAccount(owner, mint)
	dst, err := tx.ReadEntry[entries.TokenAccount](view, k)
	if err != nil {
		return tx.TefINTERNAL
	}
	if dst == nil {
		if err := tx.InsertEntry(view, k, &entries.TokenAccount{Mint: mint, Owner: owner, Amount: amount}); err != nil {
			return tx.TefINTERNAL
		}
		return tx.TesSUCCESS
	}
	if dst.Amount > math.MaxUint64-amount {
		return tx.TecBALANCE_OVERFLOW
	}
	dst.Amount += amount
	if err := tx.UpdateEntry(view, k, dst); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}

package token

import (
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/keylet"
	"github.com/LeJamon/goDutchAuction/internal/core/tx"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

func init() {
	tx.Register(tx.TypeTokenTransfer, func() tx.Transaction {
		return &TokenTransfer{BaseTx: *tx.NewBaseTx(tx.TypeTokenTransfer, crypto.AccountID{})}
	})
}

// TokenTransfer moves tokens from the sender's associated account to the
// destination's.
type TokenTransfer struct {
	tx.BaseTx

	Mint        crypto.AccountID `json:"Mint"`
	Destination crypto.AccountID `json:"Destination"`
	Amount      uint64           `json:"Amount,string"`
}

// NewTokenTransfer creates a new TokenTransfer transaction
func NewTokenTransfer(account, mint, destination crypto.AccountID, amount uint64) *TokenTransfer {
	return &TokenTransfer{
		BaseTx:      *tx.NewBaseTx(tx.TypeTokenTransfer, account),
		Mint:        mint,
		Destination: destination,
		Amount:      amount,
	}
}

// TxType returns the transaction type
func (t *TokenTransfer) TxType() tx.Type {
	return tx.TypeTokenTransfer
}

// Validate validates the TokenTransfer transaction
func (t *TokenTransfer) Validate() error {
	if err := t.BaseTx.Validate(); err != nil {
		return err
	}
	if t.Mint.IsZero() {
		return tx.Errorf(tx.TemMALFORMED, "Mint is required")
	}
	if t.Destination.IsZero() {
		return &tx.Error{Code: tx.TemDST_NEEDED}
	}
	if t.Destination == t.Account {
		return &tx.Error{Code: tx.TemDST_IS_SRC}
	}
	if t.Amount == 0 {
		return &tx.Error{Code: tx.TemBAD_AMOUNT}
	}
	return nil
}

// Apply applies a TokenTransfer transaction
func (t *TokenTransfer) Apply(ctx *tx.ApplyContext) tx.Result {
	exists, err := ctx.View.Exists(keylet.Account(t.Destination))
	if err != nil {
		return tx.TefINTERNAL
	}
	if !exists {
		return tx.TecNO_DST
	}
	return Transfer(ctx.View, t.Mint, ctx.AccountID, t.Destination, t.Amount, BySigner(ctx))
}

package token

import (
	"math"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/keylet"
	"github.com/LeJamon/goDutchAuction/internal/core/tx"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

func init() {
	tx.Register(tx.TypeMintTo, func() tx.Transaction {
		return &MintTo{BaseTx: *tx.NewBaseTx(tx.TypeMintTo, crypto.AccountID{})}
	})
}

// MintTo issues new supply of a mint into the destination's associated
// token account. Only the mint issuer may send it.
type MintTo struct {
	tx.BaseTx

	Mint        crypto.AccountID `json:"Mint"`
	Destination crypto.AccountID `json:"Destination"`
	Amount      uint64           `json:"Amount,string"`
}

// NewMintTo creates a new MintTo transaction
func NewMintTo(issuer, mint, destination crypto.AccountID, amount uint64) *MintTo {
	return &MintTo{
		BaseTx:      *tx.NewBaseTx(tx.TypeMintTo, issuer),
		Mint:        mint,
		Destination: destination,
		Amount:      amount,
	}
}

// TxType returns the transaction type
func (m *MintTo) TxType() tx.Type {
	return tx.TypeMintTo
}

// Validate validates the MintTo transaction
func (m *MintTo) Validate() error {
	if err := m.BaseTx.Validate(); err != nil {
		return err
	}
	if m.Mint.IsZero() {
		return tx.Errorf(tx.TemMALFORMED, "Mint is required")
	}
	if m.Destination.IsZero() {
		return &tx.Error{Code: tx.TemDST_NEEDED}
	}
	if m.Amount == 0 {
		return &tx.Error{Code: tx.TemBAD_AMOUNT}
	}
	return nil
}

// Apply applies a MintTo transaction
func (m *MintTo) Apply(ctx *tx.ApplyContext) tx.Result {
	mk := keylet.Mint(m.Mint)
	mint, err := tx.ReadEntry[entries.Mint](ctx.View, mk)
	if err != nil {
		return tx.TefINTERNAL
	}
	if mint == nil {
		return tx.TecNO_ENTRY
	}
	if mint.Issuer != ctx.AccountID {
		return tx.TecNO_PERMISSION
	}

	exists, err := ctx.View.Exists(keylet.Account(m.Destination))
	if err != nil {
		return tx.TefINTERNAL
	}
	if !exists {
		return tx.TecNO_DST
	}

	if mint.Supply > math.MaxUint64-m.Amount {
		return tx.TecBALANCE_OVERFLOW
	}
	mint.Supply += m.Amount
	if err := tx.UpdateEntry(ctx.View, mk, mint); err != nil {
		return tx.TefINTERNAL
	}
	return credit(ctx.View, m.Mint, m.Destination, m.Amount)
}

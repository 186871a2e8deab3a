package token

import (
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/keylet"
	"github.com/LeJamon/goDutchAuction/internal/core/tx"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

func init() {
	tx.Register(tx.TypeMintCreate, func() tx.Transaction {
		return &MintCreate{BaseTx: *tx.NewBaseTx(tx.TypeMintCreate, crypto.AccountID{})}
	})
}

// MintCreate defines a new fungible asset issued by the sender. The mint
// ID is derived from the sender and the transaction sequence.
type MintCreate struct {
	tx.BaseTx

	// Decimals is the display precision of the asset
	Decimals uint8 `json:"Decimals"`
}

// NewMintCreate creates a new MintCreate transaction
func NewMintCreate(issuer crypto.AccountID, decimals uint8) *MintCreate {
	return &MintCreate{
		BaseTx:   *tx.NewBaseTx(tx.TypeMintCreate, issuer),
		Decimals: decimals,
	}
}

// TxType returns the transaction type
func (m *MintCreate) TxType() tx.Type {
	return tx.TypeMintCreate
}

// Validate validates the MintCreate transaction
func (m *MintCreate) Validate() error {
	if err := m.BaseTx.Validate(); err != nil {
		return err
	}
	if m.Decimals > entries.MaxDecimals {
		return tx.Errorf(tx.TemMALFORMED, "Decimals must not exceed %d", entries.MaxDecimals)
	}
	return nil
}

// MintID returns the identity the mint will have once applied.
func (m *MintCreate) MintID() crypto.AccountID {
	return keylet.MintID(m.Account, m.GetSequence())
}

// Apply applies a MintCreate transaction
func (m *MintCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	id := m.MintID()
	k := keylet.Mint(id)
	exists, err := ctx.View.Exists(k)
	if err != nil {
		return tx.TefINTERNAL
	}
	if exists {
		return tx.TecDUPLICATE
	}
	mint := &entries.Mint{ID: id, Issuer: ctx.AccountID, Decimals: m.Decimals}
	if err := tx.InsertEntry(ctx.View, k, mint); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}

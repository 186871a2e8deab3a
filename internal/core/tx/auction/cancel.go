package auction

import (
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/authority"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/keylet"
	"github.com/LeJamon/goDutchAuction/internal/core/tx"
	"github.com/LeJamon/goDutchAuction/internal/core/tx/token"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

func init() {
	tx.Register(tx.TypeAuctionCancel, func() tx.Transaction {
		return &AuctionCancel{BaseTx: *tx.NewBaseTx(tx.TypeAuctionCancel, crypto.AccountID{})}
	})
}

// AuctionCancel closes an active auction and returns the lot to the
// seller. Only the seller may send it.
type AuctionCancel struct {
	tx.BaseTx

	EscrowAccount string `json:"EscrowAccount"`
}

// NewAuctionCancel creates a new AuctionCancel transaction
func NewAuctionCancel(seller crypto.AccountID, escrow [32]byte) *AuctionCancel {
	return &AuctionCancel{
		BaseTx:        *tx.NewBaseTx(tx.TypeAuctionCancel, seller),
		EscrowAccount: FormatEscrow(escrow),
	}
}

// TxType returns the transaction type
func (c *AuctionCancel) TxType() tx.Type {
	return tx.TypeAuctionCancel
}

// Validate validates the AuctionCancel transaction
func (c *AuctionCancel) Validate() error {
	if err := c.BaseTx.Validate(); err != nil {
		return err
	}
	if _, err := ParseEscrow(c.EscrowAccount); err != nil {
		return tx.Errorf(tx.TemMALFORMED, "%v", err)
	}
	return nil
}

// Apply applies an AuctionCancel transaction
func (c *AuctionCancel) Apply(ctx *tx.ApplyContext) tx.Result {
	escrow, err := ParseEscrow(c.EscrowAccount)
	if err != nil {
		return tx.TemMALFORMED
	}

	recKey := keylet.Auction(escrow)
	rec, err := tx.ReadEntry[entries.Auction](ctx.View, recKey)
	if err != nil {
		return tx.TefINTERNAL
	}
	if rec == nil {
		return tx.TecNO_ENTRY
	}
	if rec.Seller != ctx.AccountID {
		return tx.TecNO_PERMISSION
	}
	if rec.Status != entries.AuctionActive {
		return tx.TecNOT_ACTIVE
	}

	if r := verifyAuthority(ctx.View, rec, escrow); !r.IsSuccess() {
		return r
	}

	err = authority.SignAs(seedsOf(rec), func(g authority.Grant) error {
		return token.Transfer(ctx.View, rec.Mint, g.Identity(), rec.Seller, rec.Amount, token.ByGrant(g)).Err()
	})
	if err != nil {
		return tx.ResultOf(err, tx.TefINTERNAL)
	}

	rec.Status = entries.AuctionCancelled
	rec.ClosedAt = ctx.Now
	if err := tx.UpdateEntry(ctx.View, recKey, rec); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}

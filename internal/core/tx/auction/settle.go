package auction

import (
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/authority"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goDutchAuction/internal/core/tx"
	"github.com/LeJamon/goDutchAuction/internal/core/tx/payment"
	"github.com/LeJamon/goDutchAuction/internal/core/tx/token"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

func init() {
	tx.Register(tx.TypeAuctionSettle, func() tx.Transaction {
		return &AuctionSettle{BaseTx: *tx.NewBaseTx(tx.TypeAuctionSettle, crypto.AccountID{})}
	})
}

// AuctionSettle buys the lot of an active auction at the current price.
// The sender is the buyer.
type AuctionSettle struct {
	tx.BaseTx

	EscrowAccount string `json:"EscrowAccount"`

	// MaxPrice, when set, rejects settlement above this price
	MaxPrice *uint64 `json:"MaxPrice,omitempty,string"`
}

// NewAuctionSettle creates a new AuctionSettle transaction
func NewAuctionSettle(buyer crypto.AccountID, escrow [32]byte) *AuctionSettle {
	return &AuctionSettle{
		BaseTx:        *tx.NewBaseTx(tx.TypeAuctionSettle, buyer),
		EscrowAccount: FormatEscrow(escrow),
	}
}

// WithMaxPrice sets the buyer's price limit.
func (s *AuctionSettle) WithMaxPrice(limit uint64) *AuctionSettle {
	s.MaxPrice = &limit
	return s
}

// TxType returns the transaction type
func (s *AuctionSettle) TxType() tx.Type {
	return tx.TypeAuctionSettle
}

// Validate validates the AuctionSettle transaction
func (s *AuctionSettle) Validate() error {
	if err := s.BaseTx.Validate(); err != nil {
		return err
	}
	if _, err := ParseEscrow(s.EscrowAccount); err != nil {
		return tx.Errorf(tx.TemMALFORMED, "%v", err)
	}
	return nil
}

// Apply applies an AuctionSettle transaction. The status check, both
// transfers and the status write share one state table, so a second
// settlement ordered after this one observes the record as Settled.
func (s *AuctionSettle) Apply(ctx *tx.ApplyContext) tx.Result {
	escrow, err := ParseEscrow(s.EscrowAccount)
	if err != nil {
		return tx.TemMALFORMED
	}

	rec, recKey, r := loadActive(ctx.View, escrow)
	if !r.IsSuccess() {
		return r
	}

	price, err := rec.Schedule().PriceAt(ctx.Now)
	if err != nil {
		return tx.TefINTERNAL
	}
	if s.MaxPrice != nil && price > *s.MaxPrice {
		return tx.TecPRICE_EXCEEDS_LIMIT
	}

	if r := verifyAuthority(ctx.View, rec, escrow); !r.IsSuccess() {
		return r
	}

	if price > 0 {
		if r := payment.Send(ctx, rec.Seller, price); !r.IsSuccess() {
			return r
		}
	}

	err = authority.SignAs(seedsOf(rec), func(g authority.Grant) error {
		return token.Transfer(ctx.View, rec.Mint, g.Identity(), ctx.AccountID, rec.Amount, token.ByGrant(g)).Err()
	})
	if err != nil {
		return tx.ResultOf(err, tx.TefINTERNAL)
	}

	rec.Status = entries.AuctionSettled
	rec.Buyer = ctx.AccountID
	rec.SettledPrice = price
	rec.SettledAt = ctx.Now
	rec.ClosedAt = ctx.Now
	if err := tx.UpdateEntry(ctx.View, recKey, rec); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}

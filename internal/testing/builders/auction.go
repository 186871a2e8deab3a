package builders

import (
	"github.com/LeJamon/goDutchAuction/internal/core/pricing"
	"github.com/LeJamon/goDutchAuction/internal/core/tx/auction"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

// AuctionCreateBuilder provides a fluent interface for building
// AuctionCreate transactions. The defaults describe a linear auction of
// one token from 100 down to 10 over [0, 100).
type AuctionCreateBuilder struct {
	seller   crypto.AccountID
	mint     crypto.AccountID
	nonce    uint64
	amount   uint64
	schedule pricing.Schedule
	sequence *uint32
}

// AuctionCreate creates a new AuctionCreateBuilder.
func AuctionCreate(seller, mint crypto.AccountID) *AuctionCreateBuilder {
	return &AuctionCreateBuilder{
		seller: seller,
		mint:   mint,
		amount: 1,
		schedule: pricing.Schedule{
			StartPrice: 100,
			FloorPrice: 10,
			StartTime:  0,
			EndTime:    100,
		},
	}
}

// Nonce distinguishes auctions of the same seller and mint.
func (b *AuctionCreateBuilder) Nonce(n uint64) *AuctionCreateBuilder {
	b.nonce = n
	return b
}

// Amount sets the number of tokens escrowed.
func (b *AuctionCreateBuilder) Amount(a uint64) *AuctionCreateBuilder {
	b.amount = a
	return b
}

// Prices sets the start and floor price.
func (b *AuctionCreateBuilder) Prices(start, floor uint64) *AuctionCreateBuilder {
	b.schedule.StartPrice = start
	b.schedule.FloorPrice = floor
	return b
}

// Window sets the time window the price declines over.
func (b *AuctionCreateBuilder) Window(start, end int64) *AuctionCreateBuilder {
	b.schedule.StartTime = start
	b.schedule.EndTime = end
	return b
}

// Stepped switches to a stepped curve that drops every interval seconds.
func (b *AuctionCreateBuilder) Stepped(interval int64) *AuctionCreateBuilder {
	b.schedule.Curve = pricing.CurveStepped
	b.schedule.StepInterval = interval
	return b
}

// Sequence sets the sequence number explicitly.
func (b *AuctionCreateBuilder) Sequence(seq uint32) *AuctionCreateBuilder {
	b.sequence = &seq
	return b
}

// Build constructs the AuctionCreate transaction.
func (b *AuctionCreateBuilder) Build() *auction.AuctionCreate {
	c := auction.NewAuctionCreate(b.seller, b.mint, b.nonce, b.amount, b.schedule)
	if b.sequence != nil {
		c.SetSequence(*b.sequence)
	}
	return c
}

// AuctionSettleBuilder builds AuctionSettle transactions.
type AuctionSettleBuilder struct {
	buyer    crypto.AccountID
	escrow   [32]byte
	maxPrice *uint64
}

// AuctionSettle creates a builder for buyer settling the auction at escrow.
func AuctionSettle(buyer crypto.AccountID, escrow [32]byte) *AuctionSettleBuilder {
	return &AuctionSettleBuilder{buyer: buyer, escrow: escrow}
}

// MaxPrice bounds the price the buyer accepts.
func (b *AuctionSettleBuilder) MaxPrice(p uint64) *AuctionSettleBuilder {
	b.maxPrice = &p
	return b
}

// Build constructs the AuctionSettle transaction.
func (b *AuctionSettleBuilder) Build() *auction.AuctionSettle {
	s := auction.NewAuctionSettle(b.buyer, b.escrow)
	if b.maxPrice != nil {
		s.WithMaxPrice(*b.maxPrice)
	}
	return s
}

// AuctionCancel builds a cancellation by seller.
func AuctionCancel(seller crypto.AccountID, escrow [32]byte) *auction.AuctionCancel {
	return auction.NewAuctionCancel(seller, escrow)
}

package entries

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry"
	"github.com/LeJamon/goDutchAuction/internal/core/pricing"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

// AuctionStatus is the lifecycle state of an auction record.
type AuctionStatus uint8

const (
	AuctionCreated AuctionStatus = iota
	AuctionActive
	AuctionSettled
	AuctionCancelled
)

func (s AuctionStatus) String() string {
	switch s {
	case AuctionCreated:
		return "Created"
	case AuctionActive:
		return "Active"
	case AuctionSettled:
		return "Settled"
	case AuctionCancelled:
		return "Cancelled"
	default:
		return fmt.Sprintf("AuctionStatus(%d)", uint8(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s AuctionStatus) Terminal() bool {
	return s == AuctionSettled || s == AuctionCancelled
}

// Auction is the record of one Dutch auction, stored under the keylet of
// its escrow token account.
type Auction struct {
	Seller        crypto.AccountID `codec:"seller"`
	Mint          crypto.AccountID `codec:"mint"`
	Nonce         uint64           `codec:"nonce"`
	Authority     crypto.AccountID `codec:"authority"`
	EscrowAccount [32]byte         `codec:"escrow_account"`
	Amount        uint64           `codec:"amount"`

	StartPrice   uint64        `codec:"start_price"`
	FloorPrice   uint64        `codec:"floor_price"`
	StartTime    int64         `codec:"start_time"`
	EndTime      int64         `codec:"end_time"`
	Curve        pricing.Curve `codec:"curve"`
	StepInterval int64         `codec:"step_interval"`

	Status       AuctionStatus    `codec:"status"`
	Buyer        crypto.AccountID `codec:"buyer"`
	SettledPrice uint64           `codec:"settled_price"`
	SettledAt    int64            `codec:"settled_at"`
	ClosedAt     int64            `codec:"closed_at"`
	CreatedAt    int64            `codec:"created_at"`
}

func (a *Auction) Type() entry.Type {
	return entry.TypeAuction
}

// Schedule returns the price terms of the auction.
func (a *Auction) Schedule() pricing.Schedule {
	return pricing.Schedule{
		StartPrice:   a.StartPrice,
		FloorPrice:   a.FloorPrice,
		StartTime:    a.StartTime,
		EndTime:      a.EndTime,
		Curve:        a.Curve,
		StepInterval: a.StepInterval,
	}
}

func (a *Auction) Validate() error {
	if a.Seller.IsZero() || a.Mint.IsZero() || a.Authority.IsZero() {
		return errors.New("auction seller, mint and authority are required")
	}
	if a.Amount == 0 {
		return errors.New("auction amount must be positive")
	}
	if err := a.Schedule().Validate(); err != nil {
		return err
	}
	if a.Status == AuctionSettled && a.Buyer.IsZero() {
		return errors.New("settled auction must record a buyer")
	}
	if a.Status != AuctionSettled && !a.Buyer.IsZero() {
		return errors.New("only a settled auction has a buyer")
	}
	return nil
}

package auction

import (
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/keylet"
	"github.com/LeJamon/goDutchAuction/internal/core/pricing"
	"github.com/LeJamon/goDutchAuction/internal/core/tx"
	"github.com/LeJamon/goDutchAuction/internal/core/tx/token"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

func init() {
	tx.Register(tx.TypeAuctionCreate, func() tx.Transaction {
		return &AuctionCreate{BaseTx: *tx.NewBaseTx(tx.TypeAuctionCreate, crypto.AccountID{})}
	})
}

// AuctionCreate escrows Amount tokens of Mint and opens a Dutch auction
// over them. The sender is the seller.
type AuctionCreate struct {
	tx.BaseTx

	Mint crypto.AccountID `json:"Mint"`

	// Nonce distinguishes auctions of the same mint by the same seller
	Nonce  uint64 `json:"Nonce,string"`
	Amount uint64 `json:"Amount,string"`

	StartPrice uint64 `json:"StartPrice,string"`
	FloorPrice uint64 `json:"FloorPrice,string"`
	StartTime  int64  `json:"StartTime"`
	EndTime    int64  `json:"EndTime"`

	// Curve is "linear" (default) or "stepped"
	Curve        string `json:"Curve,omitempty"`
	StepInterval int64  `json:"StepInterval,omitempty"`
}

// NewAuctionCreate creates a new AuctionCreate transaction with a linear
// schedule.
func NewAuctionCreate(seller, mint crypto.AccountID, nonce, amount uint64, s pricing.Schedule) *AuctionCreate {
	c := &AuctionCreate{
		BaseTx:       *tx.NewBaseTx(tx.TypeAuctionCreate, seller),
		Mint:         mint,
		Nonce:        nonce,
		Amount:       amount,
		StartPrice:   s.StartPrice,
		FloorPrice:   s.FloorPrice,
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		StepInterval: s.StepInterval,
	}
	if s.Curve != pricing.CurveLinear {
		c.Curve = s.Curve.String()
	}
	return c
}

// TxType returns the transaction type
func (c *AuctionCreate) TxType() tx.Type {
	return tx.TypeAuctionCreate
}

// Schedule returns the price terms carried by the transaction.
func (c *AuctionCreate) Schedule() (pricing.Schedule, error) {
	curve, err := pricing.ParseCurve(c.Curve)
	if err != nil {
		return pricing.Schedule{}, err
	}
	return pricing.Schedule{
		StartPrice:   c.StartPrice,
		FloorPrice:   c.FloorPrice,
		StartTime:    c.StartTime,
		EndTime:      c.EndTime,
		Curve:        curve,
		StepInterval: c.StepInterval,
	}, nil
}

// EscrowAccount returns the escrow key the auction will be recorded under.
func (c *AuctionCreate) EscrowAccount() [32]byte {
	_, k := Escrow(c.Account, c.Mint, c.Nonce)
	return k.Key
}

// Validate validates the AuctionCreate transaction
func (c *AuctionCreate) Validate() error {
	if err := c.BaseTx.Validate(); err != nil {
		return err
	}
	if c.Mint.IsZero() {
		return tx.Errorf(tx.TemMALFORMED, "Mint is required")
	}
	if c.Amount == 0 {
		return tx.Errorf(tx.TemBAD_AMOUNT, "Amount must be positive")
	}
	s, err := c.Schedule()
	if err != nil {
		return tx.Errorf(tx.TemINVALID_SCHEDULE, "%v", err)
	}
	if err := s.Validate(); err != nil {
		return tx.Errorf(tx.TemINVALID_SCHEDULE, "%v", err)
	}
	return nil
}

// Apply applies an AuctionCreate transaction
func (c *AuctionCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	schedule, err := c.Schedule()
	if err != nil {
		return tx.TemINVALID_SCHEDULE
	}

	auth, escrow := Escrow(ctx.AccountID, c.Mint, c.Nonce)
	recKey := keylet.Auction(escrow.Key)

	// Only the record marks a nonce as used. The escrow account may already
	// exist from a transfer to the public authority; such tokens stay in
	// escrow and only Amount moves on settle or cancel.
	exists, err := ctx.View.Exists(recKey)
	if err != nil {
		return tx.TefINTERNAL
	}
	if exists {
		return tx.TecDUPLICATE
	}

	if r := token.Transfer(ctx.View, c.Mint, ctx.AccountID, auth, c.Amount, token.BySigner(ctx)); !r.IsSuccess() {
		return r
	}

	rec := &entries.Auction{
		Seller:        ctx.AccountID,
		Mint:          c.Mint,
		Nonce:         c.Nonce,
		Authority:     auth,
		EscrowAccount: escrow.Key,
		Amount:        c.Amount,
		StartPrice:    schedule.StartPrice,
		FloorPrice:    schedule.FloorPrice,
		StartTime:     schedule.StartTime,
		EndTime:       schedule.EndTime,
		Curve:         schedule.Curve,
		StepInterval:  schedule.StepInterval,
		// The escrow is funded above, so the record is written already Active.
		Status:    entries.AuctionActive,
		CreatedAt: ctx.Now,
	}

	if err := tx.InsertEntry(ctx.View, recKey, rec); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}

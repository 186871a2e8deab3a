// Package payment implements transfers of the native balance.
package payment

import (
	"math"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/keylet"
	"github.com/LeJamon/goDutchAuction/internal/core/tx"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

func init() {
	tx.Register(tx.TypePayment, func() tx.Transaction {
		return &Payment{BaseTx: *tx.NewBaseTx(tx.TypePayment, crypto.AccountID{})}
	})
}

// Payment moves native balance from the sender to the destination. A
// missing destination account is created.
type Payment struct {
	tx.BaseTx

	Destination crypto.AccountID `json:"Destination"`
	Amount      uint64           `json:"Amount,string"`
}

// NewPayment creates a new Payment transaction
func NewPayment(account, destination crypto.AccountID, amount uint64) *Payment {
	return &Payment{
		BaseTx:      *tx.NewBaseTx(tx.TypePayment, account),
		Destination: destination,
		Amount:      amount,
	}
}

// TxType returns the transaction type
func (p *Payment) TxType() tx.Type {
	return tx.TypePayment
}

// Validate validates the Payment transaction
func (p *Payment) Validate() error {
	if err := p.BaseTx.Validate(); err != nil {
		return err
	}
	if p.Destination.IsZero() {
		return &tx.Error{Code: tx.TemDST_NEEDED}
	}
	if p.Destination == p.Account {
		return &tx.Error{Code: tx.TemDST_IS_SRC}
	}
	if p.Amount == 0 {
		return &tx.Error{Code: tx.TemBAD_AMOUNT}
	}
	return nil
}

// Apply applies a Payment transaction
func (p *Payment) Apply(ctx *tx.ApplyContext) tx.Result {
	return Send(ctx, p.Destination, p.Amount)
}

// Send debits amount from the signer of ctx and credits it to to. Only the
// signer's own balance can be spent.
func Send(ctx *tx.ApplyContext, to crypto.AccountID, amount uint64) tx.Result {
	if amount == 0 {
		return tx.TemBAD_AMOUNT
	}
	if to == ctx.AccountID {
		return tx.TesSUCCESS
	}

	srcKey := keylet.Account(ctx.AccountID)
	src, err := tx.ReadEntry[entries.AccountRoot](ctx.View, srcKey)
	if err != nil {
		return tx.TefINTERNAL
	}
	if src == nil {
		return tx.TerNO_ACCOUNT
	}
	if src.Balance < amount {
		return tx.TecINSUFFICIENT_FUNDS
	}

	dstKey := keylet.Account(to)
	dst, err := tx.ReadEntry[entries.AccountRoot](ctx.View, dstKey)
	if err != nil {
		return tx.TefINTERNAL
	}

	src.Balance -= amount
	if err := tx.UpdateEntry(ctx.View, srcKey, src); err != nil {
		return tx.TefINTERNAL
	}

	if dst == nil {
		dst = &entries.AccountRoot{Account: to, Balance: amount, Sequence: 1}
		if err := tx.InsertEntry(ctx.View, dstKey, dst); err != nil {
			return tx.TefINTERNAL
		}
		return tx.TesSUCCESS
	}
	if dst.Balance > math.MaxUint64-amount {
		return tx.TecBALANCE_OVERFLOW
	}
	dst.Balance += amount
	if err := tx.UpdateEntry(ctx.View, dstKey, dst); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}

package builders

import (
	"github.com/LeJamon/goDutchAuction/internal/core/tx/payment"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

// PaymentBuilder provides a fluent interface for building Payment transactions.
type PaymentBuilder struct {
	from     crypto.AccountID
	to       crypto.AccountID
	amount   uint64
	memo     string
	sequence *uint32
}

// Pay creates a new PaymentBuilder for a native payment.
func Pay(from, to crypto.AccountID, amount uint64) *PaymentBuilder {
	return &PaymentBuilder{from: from, to: to, amount: amount}
}

// Memo attaches a memo.
func (b *PaymentBuilder) Memo(m string) *PaymentBuilder {
	b.memo = m
	return b
}

// Sequence sets the sequence number explicitly.
func (b *PaymentBuilder) Sequence(seq uint32) *PaymentBuilder {
	b.sequence = &seq
	return b
}

// Build constructs the Payment transaction.
func (b *PaymentBuilder) Build() *payment.Payment {
	p := payment.NewPayment(b.from, b.to, b.amount)
	p.Memo = b.memo
	if b.sequence != nil {
		p.SetSequence(*b.sequence)
	}
	return p
}

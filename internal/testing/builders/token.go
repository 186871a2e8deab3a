package builders

import (
	"github.com/LeJamon/goDutchAuction/internal/core/tx/token"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

// MintCreateBuilder builds MintCreate transactions.
type MintCreateBuilder struct {
	issuer   crypto.AccountID
	decimals uint8
	sequence *uint32
}

// MintCreate creates a builder for a new mint owned by issuer.
func MintCreate(issuer crypto.AccountID) *MintCreateBuilder {
	return &MintCreateBuilder{issuer: issuer}
}

// Decimals sets the display precision.
func (b *MintCreateBuilder) Decimals(d uint8) *MintCreateBuilder {
	b.decimals = d
	return b
}

// Sequence sets the sequence number explicitly. The mint ID depends on it.
func (b *MintCreateBuilder) Sequence(seq uint32) *MintCreateBuilder {
	b.sequence = &seq
	return b
}

// Build constructs the MintCreate transaction.
func (b *MintCreateBuilder) Build() *token.MintCreate {
	m := token.NewMintCreate(b.issuer, b.decimals)
	if b.sequence != nil {
		m.SetSequence(*b.sequence)
	}
	return m
}

// MintTo builds a supply issuance of amount to destination.
func MintTo(issuer, mint, destination crypto.AccountID, amount uint64) *token.MintTo {
	return token.NewMintTo(issuer, mint, destination, amount)
}

// TokenTransfer builds a signer-authorized token transfer.
func TokenTransfer(from, mint, to crypto.AccountID, amount uint64) *token.TokenTransfer {
	return token.NewTokenTransfer(from, mint, to, amount)
}

package tx

import (
	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

// Transaction is the interface that all transaction types must implement
type Transaction interface {
	// TxType returns the transaction type
	TxType() Type

	// GetCommon returns the common transaction fields
	GetCommon() *Common

	// Validate checks the transaction body without reading ledger state.
	// A returned *Error selects the result code; any other error maps to
	// temMALFORMED.
	Validate() error
}

// Appliable is implemented by transaction types that can apply themselves to ledger state.
type Appliable interface {
	Apply(ctx *ApplyContext) Result
}

// Common contains fields common to all transaction types
type Common struct {
	Account         crypto.AccountID `json:"Account"`
	TransactionType string           `json:"TransactionType"`

	// Sequence must equal the sender's next sequence
	Sequence *uint32 `json:"Sequence,omitempty"`

	Memo          string `json:"Memo,omitempty"`
	SigningPubKey string `json:"SigningPubKey,omitempty"`
	TxnSignature  string `json:"TxnSignature,omitempty"`
}

// Validate validates the common fields
func (c *Common) Validate() error {
	if c.Account.IsZero() {
		return &Error{Code: TemBAD_SRC_ACCOUNT}
	}
	if c.TransactionType == "" {
		return Errorf(TemINVALID, "TransactionType is required")
	}
	if c.Sequence != nil && *c.Sequence == 0 {
		return &Error{Code: TemBAD_SEQUENCE}
	}
	if len(c.Memo) > MaxMemoSize {
		return Errorf(TemMALFORMED, "memo exceeds %d bytes", MaxMemoSize)
	}
	return nil
}

// MaxMemoSize is the maximum length of the Memo field.
const MaxMemoSize = 1024

// SetSequence sets the sequence number
func (c *Common) SetSequence(seq uint32) {
	c.Sequence = &seq
}

// GetSequence returns the sequence number (0 if not set)
func (c *Common) GetSequence() uint32 {
	if c.Sequence == nil {
		return 0
	}
	return *c.Sequence
}

// BaseTx provides a base implementation for transactions
type BaseTx struct {
	Common
	txType Type
}

// TxType returns the transaction type
func (b *BaseTx) TxType() Type {
	return b.txType
}

// GetCommon returns the common transaction fields
func (b *BaseTx) GetCommon() *Common {
	return &b.Common
}

// Validate validates the base transaction
func (b *BaseTx) Validate() error {
	return b.Common.Validate()
}

// NewBaseTx creates a new base transaction
func NewBaseTx(txType Type, account crypto.AccountID) *BaseTx {
	return &BaseTx{
		Common: Common{
			Account:         account,
			TransactionType: txType.String(),
		},
		txType: txType,
	}
}

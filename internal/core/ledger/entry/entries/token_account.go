package entries

import (
	"errors"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

// TokenAccount holds the balance of one mint for one owner. Only the
// owner, or a grant that authorizes the owner, may debit it.
type TokenAccount struct {
	Mint   crypto.AccountID `codec:"mint"`
	Owner  crypto.AccountID `codec:"owner"`
	Amount uint64           `codec:"amount"`
}

func (t *TokenAccount) Type() entry.Type {
	return entry.TypeTokenAccount
}

func (t *TokenAccount) Validate() error {
	if t.Mint.IsZero() {
		return errors.New("token account mint is required")
	}
	if t.Owner.IsZero() {
		return errors.New("token account owner is required")
	}
	return nil
}

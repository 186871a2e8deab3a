package entries

import (
	"errors"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

// AccountRoot holds an account's native balance and next sequence.
type AccountRoot struct {
	Account    crypto.AccountID `codec:"account"`
	Balance    uint64           `codec:"balance"`
	Sequence   uint32           `codec:"sequence"`
	OwnerCount uint32           `codec:"owner_count"`
}

func (a *AccountRoot) Type() entry.Type {
	return entry.TypeAccountRoot
}

func (a *AccountRoot) Validate() error {
	if a.Account.IsZero() {
		return errors.New("account ID is required")
	}
	if a.Sequence == 0 {
		return errors.New("sequence must be non-zero")
	}
	return nil
}

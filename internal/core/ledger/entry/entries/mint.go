package entries

import (
	"errors"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

// MaxDecimals bounds the display precision of a mint.
const MaxDecimals = 18

// Mint defines a fungible asset. Only the issuer can create supply.
type Mint struct {
	ID       crypto.AccountID `codec:"id"`
	Issuer   crypto.AccountID `codec:"issuer"`
	Supply   uint64           `codec:"supply"`
	Decimals uint8            `codec:"decimals"`
}

func (m *Mint) Type() entry.Type {
	return entry.TypeMint
}

func (m *Mint) Validate() error {
	if m.ID.IsZero() {
		return errors.New("mint ID is required")
	}
	if m.Issuer.IsZero() {
		return errors.New("mint issuer is required")
	}
	if m.Decimals > MaxDecimals {
		return errors.New("mint decimals exceed 18")
	}
	return nil
}

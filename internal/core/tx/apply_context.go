package tx

import (
	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

// ApplyContext provides all the state and helpers needed to apply a transaction.
// It is passed to Appliable.Apply() instead of individual parameters.
type ApplyContext struct {
	// View provides read/write access to ledger state (the ApplyStateTable)
	View LedgerView

	// AccountID is the source account. The engine has verified that the
	// transaction was signed by it.
	AccountID crypto.AccountID

	// Now is the clock reading taken for this request
	Now int64

	// Config holds engine configuration
	Config EngineConfig

	// TxHash is the hash of the current transaction
	TxHash [32]byte
}

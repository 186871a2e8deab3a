package testing

import "github.com/LeJamon/goDutchAuction/internal/core/tx"

// TxResult represents the result of submitting a transaction.
type TxResult struct {
	// Code is the transaction engine result code.
	Code tx.Result

	// Success indicates whether the transaction was applied.
	Success bool

	// Message provides additional details about the result.
	Message string

	// Hash identifies the transaction.
	Hash [32]byte

	// ClockTime is the clock reading the transaction was applied at.
	ClockTime int64
}

// ResultCodeCategory returns the category prefix of a result code.
func ResultCodeCategory(code tx.Result) string {
	switch {
	case code.IsSuccess():
		return "tes"
	case code.IsTec():
		return "tec"
	case code.IsTef():
		return "tef"
	case code.IsTem():
		return "tem"
	case code.IsTer():
		return "ter"
	default:
		return "unknown"
	}
}

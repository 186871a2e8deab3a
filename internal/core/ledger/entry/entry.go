package entry

import (
	"fmt"
)

// Type represents a ledger entry type
type Type uint16

const (
	TypeAccountRoot  Type = 0x0061 // Native balance and sequence
	TypeMint         Type = 0x006d // Fungible asset definition
	TypeTokenAccount Type = 0x0074 // Holding of one mint by one owner
	TypeAuction      Type = 0x0078 // Dutch auction record
)

// String returns the string representation of the Type
func (t Type) String() string {
	switch t {
	case TypeAccountRoot:
		return "AccountRoot"
	case TypeMint:
		return "Mint"
	case TypeTokenAccount:
		return "TokenAccount"
	case TypeAuction:
		return "Auction"
	default:
		return fmt.Sprintf("Unknown(%#x)", uint16(t))
	}
}

// Entry defines the interface for all ledger entries
type Entry interface {
	Type() Type
	Validate() error
}

package tx

import "fmt"

// Type represents a transaction type code
type Type uint16

const (
	TypeInvalid Type = 0xFFFF // Invalid/unknown type

	// Native currency and token program
	TypePayment       Type = 0
	TypeMintCreate    Type = 1
	TypeMintTo        Type = 2
	TypeTokenTransfer Type = 3

	// Auction program
	TypeAuctionCreate Type = 10
	TypeAuctionSettle Type = 11
	TypeAuctionCancel Type = 12
)

var typeNames = map[Type]string{
	TypePayment:       "Payment",
	TypeMintCreate:    "MintCreate",
	TypeMintTo:        "MintTo",
	TypeTokenTransfer: "TokenTransfer",
	TypeAuctionCreate: "AuctionCreate",
	TypeAuctionSettle: "AuctionSettle",
	TypeAuctionCancel: "AuctionCancel",
}

// String returns the transaction type name
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", uint16(t))
}

// TypeFromName returns the type for a TransactionType name
func TypeFromName(name string) (Type, bool) {
	for t, n := range typeNames {
		if n == name {
			return t, true
		}
	}
	return TypeInvalid, false
}

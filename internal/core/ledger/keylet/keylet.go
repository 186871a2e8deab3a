package keylet

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
	common "github.com/LeJamon/goDutchAuction/internal/crypto/common"
)

// Space identifiers for keylet generation
const (
	spaceAccount      uint16 = 'a' // Account root
	spaceMint         uint16 = 'm' // Mint
	spaceMintID       uint16 = 'M' // Mint identity from issuer and sequence
	spaceTokenAccount uint16 = 't' // Associated token account
	spaceAuction      uint16 = 'x' // Auction record
)

// Keylet represents an addressable location in the ledger state.
// It combines a type identifier with a 256-bit key.
type Keylet struct {
	Type entry.Type
	Key  [32]byte
}

// String returns the hex form of the key.
func (k Keylet) String() string {
	return hex.EncodeToString(k.Key[:])
}

// indexHash computes a keylet key by hashing the space and provided data.
func indexHash(space uint16, data ...[]byte) [32]byte {
	spaceBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(spaceBytes, space)

	inputs := make([][]byte, 0, len(data)+1)
	inputs = append(inputs, spaceBytes)
	inputs = append(inputs, data...)

	return common.Sha512Half(inputs...)
}

// Account returns the keylet for an account root entry.
func Account(accountID crypto.AccountID) Keylet {
	return Keylet{
		Type: entry.TypeAccountRoot,
		Key:  indexHash(spaceAccount, accountID[:]),
	}
}

// MintID derives the identity of the mint created by issuer at sequence.
func MintID(issuer crypto.AccountID, sequence uint32) crypto.AccountID {
	seqBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(seqBytes, sequence)
	h := indexHash(spaceMintID, issuer[:], seqBytes)
	return crypto.AccountIDFromBytes(h[:crypto.AccountIDSize])
}

// Mint returns the keylet for a mint definition.
func Mint(mintID crypto.AccountID) Keylet {
	return Keylet{
		Type: entry.TypeMint,
		Key:  indexHash(spaceMint, mintID[:]),
	}
}

// TokenAccount returns the keylet of the associated token account that
// holds mint for owner. There is exactly one per (owner, mint) pair.
func TokenAccount(owner, mint crypto.AccountID) Keylet {
	return Keylet{
		Type: entry.TypeTokenAccount,
		Key:  indexHash(spaceTokenAccount, owner[:], mint[:]),
	}
}

// Auction returns the keylet of the auction record bound to an escrow
// token account.
func Auction(escrow [32]byte) Keylet {
	return Keylet{
		Type: entry.TypeAuction,
		Key:  indexHash(spaceAuction, escrow[:]),
	}
}

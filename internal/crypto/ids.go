package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/decred/dcrd/crypto/ripemd160"
)

// AccountIDSize is the size of an account ID in bytes.
const AccountIDSize = 20

// AccountID identifies an account, a mint or a derived authority.
type AccountID [AccountIDSize]byte

// CalcAccountID computes the account ID from a public key as
// RIPEMD160(SHA256(publicKey)).
func CalcAccountID(publicKey []byte) AccountID {
	sha256Hash := sha256.Sum256(publicKey)

	ripemd160Hasher := ripemd160.New()
	ripemd160Hasher.Write(sha256Hash[:])
	ripemd160Hash := ripemd160Hasher.Sum(nil)

	var result AccountID
	copy(result[:], ripemd160Hash)
	return result
}

// AccountIDFromBytes creates an account ID from a byte slice.
// Returns a zero account ID if the slice is not exactly 20 bytes.
func AccountIDFromBytes(b []byte) AccountID {
	var result AccountID
	if len(b) == AccountIDSize {
		copy(result[:], b)
	}
	return result
}

// IsZero reports whether every byte of the ID is zero.
func (id AccountID) IsZero() bool {
	return id == AccountID{}
}

// Bytes returns a copy of the ID.
func (id AccountID) Bytes() []byte {
	result := make([]byte, AccountIDSize)
	copy(result, id[:])
	return result
}

// Hex returns the upper-case hex form of the ID.
func (id AccountID) Hex() string {
	return hex.EncodeToString(id[:])
}

// String returns the base58 address of the ID.
func (id AccountID) String() string {
	return EncodeAddress(id)
}

// MarshalText encodes the ID as its address.
func (id AccountID) MarshalText() ([]byte, error) {
	return []byte(EncodeAddress(id)), nil
}

// UnmarshalText decodes an address.
func (id *AccountID) UnmarshalText(text []byte) error {
	decoded, err := DecodeAddress(string(text))
	if err != nil {
		return err
	}
	*id = decoded
	return nil
}

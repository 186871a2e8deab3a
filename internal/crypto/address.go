package crypto

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"math/big"
)

const (
	addressAlphabet = "rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz"
	addressPrefix   = 0x00
)

var (
	ErrInvalidAddress  = errors.New("invalid address")
	ErrAddressChecksum = errors.New("address checksum mismatch")
)

var addressIndex = func() [256]int {
	var idx [256]int
	for i := range idx {
		idx[i] = -1
	}
	for i := 0; i < len(addressAlphabet); i++ {
		idx[addressAlphabet[i]] = i
	}
	return idx
}()

// EncodeAddress base58check-encodes an account ID with the account prefix.
func EncodeAddress(id AccountID) string {
	payload := make([]byte, 0, 1+AccountIDSize+4)
	payload = append(payload, addressPrefix)
	payload = append(payload, id[:]...)
	payload = append(payload, checksum(payload)...)
	return encodeBase58(payload)
}

// DecodeAddress reverses EncodeAddress.
func DecodeAddress(address string) (AccountID, error) {
	var id AccountID
	raw, err := decodeBase58(address)
	if err != nil {
		return id, err
	}
	if len(raw) != 1+AccountIDSize+4 || raw[0] != addressPrefix {
		return id, ErrInvalidAddress
	}
	body, sum := raw[:len(raw)-4], raw[len(raw)-4:]
	if !bytes.Equal(checksum(body), sum) {
		return id, ErrAddressChecksum
	}
	copy(id[:], body[1:])
	return id, nil
}

// IsValidAddress reports whether the string decodes to an account ID.
func IsValidAddress(address string) bool {
	_, err := DecodeAddress(address)
	return err == nil
}

func checksum(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:4]
}

func encodeBase58(b []byte) string {
	n := new(big.Int).SetBytes(b)
	radix := big.NewInt(int64(len(addressAlphabet)))
	mod := new(big.Int)

	var out []byte
	for n.Sign() > 0 {
		n.DivMod(n, radix, mod)
		out = append(out, addressAlphabet[mod.Int64()])
	}
	for _, c := range b {
		if c != 0 {
			break
		}
		out = append(out, addressAlphabet[0])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

func decodeBase58(s string) ([]byte, error) {
	if s == "" {
		return nil, ErrInvalidAddress
	}
	n := new(big.Int)
	radix := big.NewInt(int64(len(addressAlphabet)))
	for i := 0; i < len(s); i++ {
		d := addressIndex[s[i]]
		if d < 0 {
			return nil, ErrInvalidAddress
		}
		n.Mul(n, radix)
		n.Add(n, big.NewInt(int64(d)))
	}
	decoded := n.Bytes()

	zeros := 0
	for zeros < len(s) && s[zeros] == addressAlphabet[0] {
		zeros++
	}
	out := make([]byte, zeros+len(decoded))
	copy(out[zeros:], decoded)
	return out, nil
}

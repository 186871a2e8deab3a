package crypto

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	common "github.com/LeJamon/goDutchAuction/internal/crypto/common"
)

var (
	// ErrInvalidPrivateKey is returned when a private key cannot be parsed.
	ErrInvalidPrivateKey = errors.New("invalid private key")
	// ErrInvalidPublicKey is returned when a public key cannot be parsed.
	ErrInvalidPublicKey = errors.New("invalid public key")
	// ErrEmptySeed is returned when a key pair is derived from an empty seed.
	ErrEmptySeed = errors.New("seed must not be empty")
	// ErrSignatureMismatch is returned when a signature does not verify.
	ErrSignatureMismatch = errors.New("signature does not match")
)

// KeyPair is a secp256k1 signing key for an account.
type KeyPair struct {
	privateKey *btcec.PrivateKey
	publicKey  *btcec.PublicKey
}

// NewKeyPair creates a random key pair.
func NewKeyPair() (*KeyPair, error) {
	privateKey, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}
	return &KeyPair{privateKey: privateKey, publicKey: privateKey.PubKey()}, nil
}

// NewKeyPairFromSeed deterministically derives a key pair from seed bytes.
// The private scalar is the first half of SHA-512(seed).
func NewKeyPairFromSeed(seed []byte) (*KeyPair, error) {
	if len(seed) == 0 {
		return nil, ErrEmptySeed
	}
	h := sha512.Sum512(seed)
	privateKey, _ := btcec.PrivKeyFromBytes(h[:32])
	return &KeyPair{privateKey: privateKey, publicKey: privateKey.PubKey()}, nil
}

// NewKeyPairFromPrivateKey parses a hex-encoded 32 byte private key.
func NewKeyPairFromPrivateKey(privKeyHex string) (*KeyPair, error) {
	if len(privKeyHex) == 66 && privKeyHex[:2] == "00" {
		privKeyHex = privKeyHex[2:]
	}
	if len(privKeyHex) != 64 {
		return nil, ErrInvalidPrivateKey
	}
	privKeyBytes, err := hex.DecodeString(privKeyHex)
	if err != nil {
		return nil, ErrInvalidPrivateKey
	}
	privateKey, _ := btcec.PrivKeyFromBytes(privKeyBytes)
	return &KeyPair{privateKey: privateKey, publicKey: privateKey.PubKey()}, nil
}

// GenerateSeed returns 16 random bytes suitable for NewKeyPairFromSeed.
func GenerateSeed() ([]byte, error) {
	seed := make([]byte, 16)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("failed to generate random seed: %w", err)
	}
	return seed, nil
}

// Sign returns the DER signature of Sha512Half(message).
func (k *KeyPair) Sign(message []byte) []byte {
	hash := common.Sha512Half(message)
	return ecdsa.Sign(k.privateKey, hash[:]).Serialize()
}

// PublicKey returns the compressed public key.
func (k *KeyPair) PublicKey() []byte {
	return k.publicKey.SerializeCompressed()
}

// PublicKeyHex returns the compressed public key in upper-case hex.
func (k *KeyPair) PublicKeyHex() string {
	return fmt.Sprintf("%X", k.PublicKey())
}

// PrivateKeyHex returns the private key with the 00 prefix.
func (k *KeyPair) PrivateKeyHex() string {
	return "00" + hex.EncodeToString(k.privateKey.Serialize())
}

// AccountID returns the account controlled by this key pair.
func (k *KeyPair) AccountID() AccountID {
	return CalcAccountID(k.PublicKey())
}

// Close zeroes the private scalar.
func (k *KeyPair) Close() {
	if k.privateKey != nil {
		k.privateKey.Zero()
	}
}

// Verify checks a DER signature over Sha512Half(message) against a
// compressed or uncompressed public key.
func Verify(publicKey, message, signature []byte) error {
	pub, err := btcec.ParsePubKey(publicKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return fmt.Errorf("parse signature: %w", err)
	}
	hash := common.Sha512Half(message)
	if !sig.Verify(hash[:], pub) {
		return ErrSignatureMismatch
	}
	return nil
}

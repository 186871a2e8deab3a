package testing

import (
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/genesis"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

// Account represents a test account with keypair and address information.
type Account struct {
	// Name is a human-readable identifier for the account (used for debugging).
	Name string

	// Key signs transactions for the account.
	Key *crypto.KeyPair

	// ID is the 20-byte account ID derived from the public key.
	ID crypto.AccountID

	// Address is the base58 form of ID.
	Address string
}

// NewAccount creates a test account whose key is derived from the name.
// Using the same name always produces the same account.
func NewAccount(name string) *Account {
	key, err := crypto.NewKeyPairFromSeed([]byte(name))
	if err != nil {
		panic("failed to derive keypair for account " + name + ": " + err.Error())
	}
	id := key.AccountID()
	return &Account{
		Name:    name,
		Key:     key,
		ID:      id,
		Address: crypto.EncodeAddress(id),
	}
}

// MasterAccount returns the account funded at genesis.
func MasterAccount() *Account {
	acc := NewAccount(genesis.DefaultMasterSeed)
	acc.Name = "master"
	return acc
}

// String returns the account name and address.
func (a *Account) String() string {
	return a.Name + " (" + a.Address + ")"
}

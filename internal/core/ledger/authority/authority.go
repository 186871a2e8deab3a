// Package authority derives the keyless controller of auction escrow
// accounts.
//
// An escrow authority is an AccountID computed from public seed material.
// No private key exists for it, so no signature can ever prove control of
// it. Instead, code that needs to move escrowed tokens obtains a Grant
// through SignAs, and the token program accepts the grant only if
// re-deriving its seeds reproduces the account owner.
package authority

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/LeJamon/goDutchAuction/internal/crypto"
	common "github.com/LeJamon/goDutchAuction/internal/crypto/common"
)

// ProgramID namespaces every derived authority to the auction program.
var ProgramID = crypto.AccountIDFromBytes(func() []byte {
	h := common.Sha512Half([]byte("DutchAuction"))
	return h[:crypto.AccountIDSize]
}())

const spaceAuthority uint16 = 'E'

// Seeds is the fixed material an authority is derived from.
type Seeds struct {
	Seller crypto.AccountID
	Mint   crypto.AccountID
	Nonce  uint64
}

// Derive returns the authority identity for seeds.
func Derive(s Seeds) crypto.AccountID {
	var space [2]byte
	binary.BigEndian.PutUint16(space[:], spaceAuthority)
	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], s.Nonce)

	h := common.Sha512Half(space[:], ProgramID[:], s.Seller[:], s.Mint[:], nonce[:])
	return crypto.AccountIDFromBytes(h[:crypto.AccountIDSize])
}

// Grant is a signing capability for one derived authority. It is only
// valid while the SignAs callback that produced it is running.
type Grant struct {
	seeds    Seeds
	identity crypto.AccountID
	expired  *atomic.Bool
}

// SignAs runs effect with a grant for the authority derived from seeds.
// The grant expires when effect returns.
func SignAs(s Seeds, effect func(Grant) error) error {
	expired := new(atomic.Bool)
	defer expired.Store(true)
	return effect(Grant{seeds: s, identity: Derive(s), expired: expired})
}

// Identity returns the authority the grant signs for.
func (g Grant) Identity() crypto.AccountID {
	return g.identity
}

// Authorizes reports whether the grant can act for owner. The seeds are
// re-derived, so a grant whose identity does not match them never
// authorizes anything.
func (g Grant) Authorizes(owner crypto.AccountID) bool {
	if g.expired == nil || g.expired.Load() {
		return false
	}
	if g.identity.IsZero() || g.identity != owner {
		return false
	}
	return Derive(g.seeds) == owner
}

// Package auction implements the Dutch auction program: creation moves the
// lot into an escrow token account owned by a derived authority, and
// settlement or cancellation moves it out again under that authority.
package auction

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/authority"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/keylet"
	"github.com/LeJamon/goDutchAuction/internal/core/tx"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

// Escrow returns the derived authority and the escrow token account keylet
// for an auction of mint by seller under nonce.
func Escrow(seller, mint crypto.AccountID, nonce uint64) (crypto.AccountID, keylet.Keylet) {
	auth := authority.Derive(authority.Seeds{Seller: seller, Mint: mint, Nonce: nonce})
	return auth, keylet.TokenAccount(auth, mint)
}

// FormatEscrow renders an escrow account key as upper-case hex.
func FormatEscrow(key [32]byte) string {
	return strings.ToUpper(hex.EncodeToString(key[:]))
}

// ParseEscrow parses the hex form of an escrow account key.
func ParseEscrow(s string) ([32]byte, error) {
	var key [32]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return key, fmt.Errorf("escrow account: %w", err)
	}
	if len(b) != len(key) {
		return key, fmt.Errorf("escrow account: want %d bytes, got %d", len(key), len(b))
	}
	copy(key[:], b)
	return key, nil
}

func seedsOf(rec *entries.Auction) authority.Seeds {
	return authority.Seeds{Seller: rec.Seller, Mint: rec.Mint, Nonce: rec.Nonce}
}

// Load reads the auction record stored for an escrow account. It returns
// nil, nil when there is none.
func Load(view tx.ReadView, escrow [32]byte) (*entries.Auction, error) {
	return tx.ReadEntry[entries.Auction](view, keylet.Auction(escrow))
}

// CurrentPrice returns what settling rec at now would cost. Terminal
// auctions report the price they settled at, or zero when cancelled.
func CurrentPrice(rec *entries.Auction, now int64) (uint64, error) {
	if rec.Status.Terminal() {
		return rec.SettledPrice, nil
	}
	return rec.Schedule().PriceAt(now)
}

// loadActive fetches the record for escrow and requires it to be Active.
func loadActive(view tx.ReadView, escrow [32]byte) (*entries.Auction, keylet.Keylet, tx.Result) {
	k := keylet.Auction(escrow)
	rec, err := tx.ReadEntry[entries.Auction](view, k)
	if err != nil {
		return nil, k, tx.TefINTERNAL
	}
	if rec == nil {
		return nil, k, tx.TecNO_ENTRY
	}
	if rec.Status != entries.AuctionActive {
		return nil, k, tx.TecNOT_ACTIVE
	}
	return rec, k, tx.TesSUCCESS
}

// verifyAuthority re-derives the authority from the record's seeds and
// checks it against the stored authority, the escrow key the record lives
// under and the owner of the escrow token account.
func verifyAuthority(view tx.ReadView, rec *entries.Auction, escrow [32]byte) tx.Result {
	derived, k := Escrow(rec.Seller, rec.Mint, rec.Nonce)
	if derived != rec.Authority || k.Key != escrow || rec.EscrowAccount != escrow {
		return tx.TecAUTHORITY_MISMATCH
	}
	acct, err := tx.ReadEntry[entries.TokenAccount](view, k)
	if err != nil {
		return tx.TefINTERNAL
	}
	if acct == nil || acct.Owner != derived || acct.Mint != rec.Mint {
		return tx.TecAUTHORITY_MISMATCH
	}
	return tx.TesSUCCESS
}

package rpc

import (
	"encoding/hex"
	"encoding/json"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/service"
	"github.com/LeJamon/goDutchAuction/internal/core/tx/auction"
	"github.com/LeJamon/goDutchAuction/internal/storage/journal"
	"github.com/shopspring/decimal"
)

// FormatAmount renders a raw token amount with the mint's decimals.
func FormatAmount(amount uint64, decimals uint8) string {
	d := decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals))
	return d.StringFixed(int32(decimals))
}

// ParseAmount converts a display amount back into raw units. It rejects
// more fractional digits than the mint carries.
func ParseAmount(s string, decimals uint8) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	raw := d.Shift(int32(decimals))
	if !raw.Equal(raw.Truncate(0)) {
		return 0, strconv.ErrSyntax
	}
	if raw.Sign() < 0 || raw.BigInt().BitLen() > 64 {
		return 0, strconv.ErrRange
	}
	return raw.BigInt().Uint64(), nil
}

func hashHex(h [32]byte) string {
	return strings.ToUpper(hex.EncodeToString(h[:]))
}

func u64(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func auctionJSON(rec *entries.Auction) map[string]any {
	out := map[string]any{
		"LedgerEntryType": "Auction",
		"Seller":          rec.Seller.String(),
		"Mint":            rec.Mint.String(),
		"Nonce":           u64(rec.Nonce),
		"Authority":       rec.Authority.String(),
		"EscrowAccount":   auction.FormatEscrow(rec.EscrowAccount),
		"Amount":          u64(rec.Amount),
		"StartPrice":      u64(rec.StartPrice),
		"FloorPrice":      u64(rec.FloorPrice),
		"StartTime":       rec.StartTime,
		"EndTime":         rec.EndTime,
		"Curve":           rec.Curve.String(),
		"Status":          rec.Status.String(),
		"CreatedAt":       rec.CreatedAt,
	}
	if rec.StepInterval > 0 {
		out["StepInterval"] = rec.StepInterval
	}
	switch rec.Status {
	case entries.AuctionSettled:
		out["Buyer"] = rec.Buyer.String()
		out["SettledPrice"] = u64(rec.SettledPrice)
		out["SettledAt"] = rec.SettledAt
		out["ClosedAt"] = rec.ClosedAt
	case entries.AuctionCancelled:
		out["ClosedAt"] = rec.ClosedAt
	}
	return out
}

func recordJSON(r journal.Record) map[string]any {
	out := map[string]any{
		"id":          r.ID.String(),
		"hash":        hashHex(r.TxHash),
		"account":     r.Account.String(),
		"sequence":    r.Sequence,
		"type":        r.TxType,
		"result":      r.Result,
		"applied":     r.Applied,
		"clock_time":  r.ClockTime,
		"recorded_at": r.RecordedAt.UTC().Format(time.RFC3339),
	}
	if len(r.TxJSON) > 0 {
		out["tx_json"] = json.RawMessage(r.TxJSON)
	}
	return out
}

// eventJSON renders a stream event as a websocket message.
func eventJSON(ev service.Event) map[string]any {
	switch {
	case ev.Transaction != nil:
		t := ev.Transaction
		return map[string]any{
			"type":                  "transaction",
			"hash":                  hashHex(t.Hash),
			"transaction_type":      t.Type,
			"account":               t.Account.String(),
			"sequence":              t.Sequence,
			"engine_result":         t.Result.String(),
			"engine_result_code":    int(t.Result),
			"engine_result_message": t.Result.Message(),
			"applied":               t.Applied,
			"clock_time":            t.ClockTime,
		}
	case ev.Auction != nil:
		a := ev.Auction
		return map[string]any{
			"type":           "auction",
			"escrow_account": auction.FormatEscrow(a.Escrow),
			"auction":        auctionJSON(&a.Auction),
			"tx_hash":        hashHex(a.TxHash),
			"clock_time":     a.ClockTime,
		}
	}
	return map[string]any{"type": string(ev.Stream)}
}

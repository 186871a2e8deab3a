package entries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry"
	"github.com/LeJamon/goDutchAuction/internal/core/pricing"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

func sampleAuction() *Auction {
	return &Auction{
		Seller:        crypto.AccountID{1},
		Mint:          crypto.AccountID{2},
		Nonce:         7,
		Authority:     crypto.AccountID{3},
		EscrowAccount: [32]byte{4},
		Amount:        5,
		StartPrice:    100,
		FloorPrice:    10,
		StartTime:     0,
		EndTime:       100,
		Curve:         pricing.CurveStepped,
		StepInterval:  10,
		Status:        AuctionActive,
		CreatedAt:     -3,
	}
}

func TestAuctionEncodeDecode(t *testing.T) {
	a := sampleAuction()
	data, err := Encode(a)
	require.NoError(t, err)

	typ, err := PeekType(data)
	require.NoError(t, err)
	assert.Equal(t, entry.TypeAuction, typ)

	var back Auction
	require.NoError(t, Decode(data, &back))
	assert.Equal(t, *a, back)
}

func TestDecodeRejectsOtherType(t *testing.T) {
	data, err := Encode(&AccountRoot{Account: crypto.AccountID{1}, Balance: 10, Sequence: 1})
	require.NoError(t, err)

	var a Auction
	assert.ErrorIs(t, Decode(data, &a), ErrWrongType)
	assert.ErrorIs(t, Decode(data[:1], &a), ErrTruncated)
}

func TestEncodeValidates(t *testing.T) {
	a := sampleAuction()
	a.Amount = 0
	_, err := Encode(a)
	assert.Error(t, err)

	a = sampleAuction()
	a.FloorPrice = 1000
	_, err = Encode(a)
	assert.ErrorIs(t, err, pricing.ErrInvalidSchedule)

	a = sampleAuction()
	a.Status = AuctionSettled
	_, err = Encode(a)
	assert.Error(t, err)

	a.Buyer = crypto.AccountID{9}
	_, err = Encode(a)
	assert.NoError(t, err)

	_, err = Encode(&Mint{ID: crypto.AccountID{1}, Issuer: crypto.AccountID{2}, Decimals: 19})
	assert.Error(t, err)
	_, err = Encode(&TokenAccount{Mint: crypto.AccountID{1}})
	assert.Error(t, err)
	_, err = Encode(&AccountRoot{Account: crypto.AccountID{1}})
	assert.Error(t, err)
}

func TestAuctionStatus(t *testing.T) {
	assert.False(t, AuctionActive.Terminal())
	assert.True(t, AuctionSettled.Terminal())
	assert.True(t, AuctionCancelled.Terminal())
	assert.Equal(t, "Cancelled", AuctionCancelled.String())
}

package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalcAccountID(t *testing.T) {
	tests := []struct {
		name      string
		publicKey string
		accountID string
	}{
		{
			name:      "Ed25519 public key",
			publicKey: "ED9434799226374926EDA3B54B1B461B4ABF7237962EAE18528FEA67595397FA32",
			accountID: "7f58b19358f8e497c8a9ded3e6db3bc23a13c1a5",
		},
		{
			name:      "Secp256k1 public key",
			publicKey: "0330E7FC9D56BB25D6893BA3F317AE5BCF33B3291BD63DB32654A313222F7FD020",
			accountID: "b5f762798a53d543a014caf8b297cff8f2f937e8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pubKey, err := hex.DecodeString(tt.publicKey)
			require.NoError(t, err)

			accountID := CalcAccountID(pubKey)
			assert.Equal(t, tt.accountID, accountID.Hex())
		})
	}
}

func TestAccountIDFromBytes(t *testing.T) {
	t.Run("Valid 20 byte input", func(t *testing.T) {
		input := make([]byte, 20)
		for i := range input {
			input[i] = byte(i)
		}

		result := AccountIDFromBytes(input)
		assert.Equal(t, input, result[:])
	})

	t.Run("Wrong length returns zero", func(t *testing.T) {
		result := AccountIDFromBytes([]byte{0x01, 0x02, 0x03})
		assert.True(t, result.IsZero())
	})

	t.Run("Empty input returns zero", func(t *testing.T) {
		assert.True(t, AccountIDFromBytes(nil).IsZero())
	})
}

func TestAccountIDBytesIsCopy(t *testing.T) {
	var id AccountID
	for i := range id {
		id[i] = byte(i)
	}

	result := id.Bytes()
	require.Len(t, result, AccountIDSize)
	result[0] = 0xFF
	assert.NotEqual(t, id[0], result[0])
}

func TestAddressRoundTrip(t *testing.T) {
	raw, err := hex.DecodeString("b5f762798a53d543a014caf8b297cff8f2f937e8")
	require.NoError(t, err)
	id := AccountIDFromBytes(raw)

	assert.Equal(t, "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh", id.String())

	decoded, err := DecodeAddress("rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh")
	require.NoError(t, err)
	assert.Equal(t, id, decoded)
}

func TestDecodeAddressErrors(t *testing.T) {
	_, err := DecodeAddress("")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = DecodeAddress("rHb9CJAWyB4rj91VRWn96DkukG4bwdtyT0")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = DecodeAddress("rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTj")
	assert.ErrorIs(t, err, ErrAddressChecksum)

	assert.False(t, IsValidAddress("not-an-address"))
}

func TestAccountIDTextMarshaling(t *testing.T) {
	kp, err := NewKeyPairFromSeed([]byte("alice"))
	require.NoError(t, err)
	id := kp.AccountID()

	text, err := id.MarshalText()
	require.NoError(t, err)

	var back AccountID
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, id, back)
}

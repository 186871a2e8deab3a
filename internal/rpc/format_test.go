package rpc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   uint64
		decimals uint8
		want     string
	}{
		{0, 0, "0"},
		{42, 0, "42"},
		{1_500_000, 6, "1.500000"},
		{1, 9, "0.000000001"},
		{math.MaxUint64, 0, "18446744073709551615"},
		{math.MaxUint64, 18, "18.446744073709551615"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(tt.amount, tt.decimals))
	}
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount("1.5", 6)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000), v)

	v, err = ParseAmount("18446744073709551615", 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), v)

	_, err = ParseAmount("0.0000001", 6)
	assert.Error(t, err)

	_, err = ParseAmount("-1", 0)
	assert.Error(t, err)

	_, err = ParseAmount("18446744073709551616", 0)
	assert.Error(t, err)

	_, err = ParseAmount("abc", 2)
	assert.Error(t, err)
}

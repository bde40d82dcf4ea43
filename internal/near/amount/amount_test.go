package amount_test

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/kashguard/go-near-auth/internal/near/amount"
	"github.com/kashguard/go-near-auth/internal/types/autherr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNear(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1", "1000000000000000000000000"},
		{"0.5", "500000000000000000000000"},
		{"1.25", "1250000000000000000000000"},
		{"0", "0"},
		{"0.000000000000000000000001", "1"},
		{"1,000", "1000000000000000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := amount.ParseNear(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Dec())
		})
	}
}

func TestParseNearInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "-1", "0.0000000000000000000000001"} {
		_, err := amount.ParseNear(in)
		require.Error(t, err, in)
		assert.ErrorIs(t, err, autherr.ErrSerialization, in)
	}
}

func TestParseYocto(t *testing.T) {
	v, err := amount.ParseYocto("30000000000000")
	require.NoError(t, err)
	assert.Equal(t, uint64(30000000000000), v.Uint64())

	_, err = amount.ParseYocto("1.5")
	assert.Error(t, err)

	tooBig := new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	_, err = amount.ParseYocto(tooBig.Dec())
	assert.ErrorIs(t, err, autherr.ErrSerialization)

	_, err = amount.ParseYocto(amount.MaxUint128().Dec())
	assert.NoError(t, err)
}

func TestFormatNear(t *testing.T) {
	v, err := amount.ParseNear("2.5")
	require.NoError(t, err)
	assert.Equal(t, "2.5", amount.FormatNear(v))
	assert.Equal(t, "0", amount.FormatNear(nil))
}

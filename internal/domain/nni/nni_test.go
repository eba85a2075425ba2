package nni

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_AcceptsValidAndRoundTrips(t *testing.T) {
	cases := []struct {
		raw  string
		want NNI
	}{
		{"FR1234567890", "FR1234567890"},
		{" fr1234567890 ", "FR1234567890"},
		{"\tMa0000000001\n", "MA0000000001"},
	}

	for _, tc := range cases {
		got, err := Normalize(tc.raw)
		require.NoError(t, err, "raw=%q", tc.raw)
		assert.Equal(t, tc.want, got)

		again, err := Normalize(string(got))
		require.NoError(t, err)
		assert.Equal(t, got, again)
	}
}

func TestNormalize_AllPrefixesAndSerials(t *testing.T) {
	for _, prefix := range []string{"FR", "MA", "BE", "ES"} {
		for i := 0; i < 50; i++ {
			raw := fmt.Sprintf("%s%010d", prefix, i*7919)
			got, err := Normalize(raw)
			require.NoError(t, err)
			assert.Equal(t, prefix, got.Country())
			assert.Len(t, got.Serial(), 10)
		}
	}
}

func TestNormalize_RejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"   ",
		"FR123456789",   // 9 dígitos
		"FR12345678901", // 11 dígitos
		"1234567890",    // sin prefijo
		"F1234567890",   // prefijo de una letra
		"FRA234567890",  // sufijo no numérico
		"FR12345X7890",
		"F-1234567890",
		"FR 1234567890",
	}

	for _, raw := range bad {
		_, err := Normalize(raw)
		if !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("expected ErrInvalidFormat for %q, got %v", raw, err)
		}
		assert.False(t, Valid(raw))
	}
}

func TestNNI_CountryAndSerial_NotNormalized(t *testing.T) {
	assert.Equal(t, "", NNI("FR1").Country())
	assert.Equal(t, "", NNI("FR1").Serial())
}

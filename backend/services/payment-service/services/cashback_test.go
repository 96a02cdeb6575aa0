package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateCashback(t *testing.T) {
	cases := map[string]float64{
		"100.00": 5.0,
		"100":    5.0,
		"55":     2.75,
		"10.01":  0.5,
		"0":      0,
		"abc":    0,
		"":       0,
	}
	for amount, want := range cases {
		assert.Equal(t, want, CalculateCashback(amount), "amount %q", amount)
	}
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount(" 19.99 ")
	assert.NoError(t, err)
	assert.Equal(t, "19.99", d.String())

	_, err = ParseAmount("1,000")
	assert.ErrorIs(t, err, ErrMalformedAmount)
}

func TestChargeableAmount(t *testing.T) {
	for _, ok := range []string{"100.00", "100", "0.01", " 7.5 ", "100.500"} {
		_, err := ChargeableAmount(ok)
		assert.NoError(t, err, ok)
	}
	for _, bad := range []string{"0", "-5", "abc", "", "10.005", "100.000000000000000000000000000001"} {
		_, err := ChargeableAmount(bad)
		assert.ErrorIs(t, err, ErrInvalidAmount, bad)
	}
}

package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var cashbackRate = decimal.NewFromFloat(0.05)

// ParseAmount parses a decimal amount string.
func ParseAmount(amount string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedAmount, amount)
	}
	return d, nil
}

// ChargeableAmount parses amount and requires it to be positive with no
// fraction of a cent, so the gateway charges exactly what is recorded.
func ChargeableAmount(amount string) (decimal.Decimal, error) {
	d, err := ParseAmount(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if !d.IsPositive() || !d.Equal(d.Round(2)) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	return d, nil
}

// CalculateCashback returns 5% of amount rounded to two places, or 0 when
// amount does not parse.
func CalculateCashback(amount string) float64 {
	cashback, err := cashbackFor(amount)
	if err != nil {
		return 0
	}
	return cashback
}

func cashbackFor(amount string) (float64, error) {
	d, err := ParseAmount(amount)
	if err != nil {
		return 0, err
	}
	return d.Mul(cashbackRate).Round(2).InexactFloat64(), nil
}

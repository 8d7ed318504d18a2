// Package money holds the rounding policy shared by every monetary and rate
// computation in the engine. Amounts are shopspring decimals end to end; no
// binary floating point is involved anywhere between input and persistence.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// CurrencyPlaces is the scale of every rounded monetary amount.
	CurrencyPlaces int32 = 2
	// RatePlaces is the scale of a per-period rate before it is used.
	RatePlaces int32 = 10
)

var (
	// Cent is the reconciliation tolerance for schedule invariants.
	Cent = decimal.New(1, -CurrencyPlaces)
	// Hundred converts between percentages and fractions.
	Hundred = decimal.NewFromInt(100)
)

// Round rounds an amount to CurrencyPlaces, half away from zero. For the
// non-negative amounts the engine produces this is round-half-up.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// RoundRate rounds a rate to RatePlaces, half away from zero.
func RoundRate(d decimal.Decimal) decimal.Decimal {
	return d.Round(RatePlaces)
}

// PercentToFraction turns 12 (percent) into 0.12 without a lossy division.
func PercentToFraction(pct decimal.Decimal) decimal.Decimal {
	return pct.Shift(-2)
}

// WithinCent reports whether a and b differ by at most one cent.
func WithinCent(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Cent)
}

// Clamp bounds d to [lo, hi].
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}
	if d.GreaterThan(hi) {
		return hi
	}
	return d
}

// Parse reads a decimal amount from its wire representation.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// Format renders an amount with exactly CurrencyPlaces digits, e.g. "1066.19".
func Format(d decimal.Decimal) string {
	return d.StringFixed(CurrencyPlaces)
}

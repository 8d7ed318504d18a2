package service

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/loanengine/internal/domain/valueobject"
	"github.com/bibbank/loanengine/pkg/money"
)

// PeriodRate converts an annual nominal rate, expressed as a percentage, to
// the fractional rate of a single payment period of f. The result is rounded
// half-up to money.RatePlaces digits so every period of a loan reuses the
// exact same value.
func PeriodRate(annualRate decimal.Decimal, f valueobject.Frequency) decimal.Decimal {
	periods := f.PeriodsPerYear()
	if periods <= 0 {
		return decimal.Zero
	}
	return money.RoundRate(
		money.PercentToFraction(annualRate).Div(decimal.NewFromInt(int64(periods))),
	)
}

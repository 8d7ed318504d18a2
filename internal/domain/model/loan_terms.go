package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loanengine/internal/domain/valueobject"
)

// LoanTerms is the immutable input of the amortization engine.
type LoanTerms struct {
	principal    decimal.Decimal
	annualRate   decimal.Decimal
	termCount    int
	frequency    valueobject.Frequency
	method       valueobject.AmortizationMethod
	firstDueDate time.Time
}

// NewLoanTerms validates and builds LoanTerms. annualRate is a percentage
// (12 means 12% per year).
func NewLoanTerms(
	principal, annualRate decimal.Decimal,
	termCount int,
	frequency valueobject.Frequency,
	method valueobject.AmortizationMethod,
	firstDueDate time.Time,
) (LoanTerms, error) {
	t := LoanTerms{
		principal:    principal,
		annualRate:   annualRate,
		termCount:    termCount,
		frequency:    frequency,
		method:       method,
		firstDueDate: firstDueDate,
	}
	if err := t.Validate(); err != nil {
		return LoanTerms{}, err
	}
	return t, nil
}

// Validate checks every precondition in a fixed order and reports the first
// failure as a *ValidationError.
func (t LoanTerms) Validate() error {
	switch {
	case !t.principal.IsPositive():
		return NewValidationError("principal", ErrNonPositivePrincipal, t.principal.String())
	case !t.principal.Equal(t.principal.Round(2)):
		return NewValidationError("principal", ErrPrincipalPrecision, t.principal.String())
	case t.termCount < 1:
		return NewValidationError("term_count", ErrInvalidTermCount, "")
	case t.annualRate.IsNegative():
		return NewValidationError("annual_rate", ErrNegativeRate, t.annualRate.String())
	case t.method.IsZero():
		return NewValidationError("method", ErrUnsupportedMethod, "")
	case t.frequency.IsZero():
		return NewValidationError("frequency", ErrUnsupportedFrequency, "")
	case t.firstDueDate.IsZero():
		return NewValidationError("first_due_date", ErrMissingFirstDueDate, "")
	}
	return nil
}

// WithAnnualRate returns a copy carrying a different annual rate.
func (t LoanTerms) WithAnnualRate(rate decimal.Decimal) (LoanTerms, error) {
	return NewLoanTerms(t.principal, rate, t.termCount, t.frequency, t.method, t.firstDueDate)
}

func (t LoanTerms) Principal() decimal.Decimal { return t.principal }
func (t LoanTerms) AnnualRate() decimal.Decimal { return t.annualRate }
func (t LoanTerms) TermCount() int { return t.termCount }
func (t LoanTerms) Frequency() valueobject.Frequency { return t.frequency }
func (t LoanTerms) Method() valueobject.AmortizationMethod { return t.method }
func (t LoanTerms) FirstDueDate() time.Time { return t.firstDueDate }

package service

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/loanengine/internal/domain/model"
	"github.com/bibbank/loanengine/internal/domain/valueobject"
	"github.com/bibbank/loanengine/pkg/money"
)

// ---------------------------------------------------------------------------
// AmortizationEngine – domain service producing payment schedules
// ---------------------------------------------------------------------------

// powPlaces bounds the precision of intermediate (1+r)^n factors.
const powPlaces int32 = 30

// AmortizationEngine turns LoanTerms into an ordered installment schedule.
// It holds no state and is safe for concurrent use.
type AmortizationEngine struct{}

// NewAmortizationEngine returns a new engine instance.
func NewAmortizationEngine() *AmortizationEngine {
	return &AmortizationEngine{}
}

// Generate validates terms and builds the schedule for the configured method.
//
// Money is rounded to cents half-up after each period's interest and principal
// computation. The final period always absorbs whatever balance is left, so
// the schedule reconciles to zero regardless of rounding drift.
func (e *AmortizationEngine) Generate(terms model.LoanTerms) ([]model.Installment, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}

	rate := PeriodRate(terms.AnnualRate(), terms.Frequency())

	var installments []model.Installment
	switch {
	case terms.Method().Equal(valueobject.MethodFrench):
		installments = french(terms, rate)
	case terms.Method().Equal(valueobject.MethodGerman):
		installments = german(terms, rate)
	case terms.Method().Equal(valueobject.MethodAmerican):
		installments = american(terms, rate)
	default:
		return nil, model.NewValidationError("method", model.ErrUnsupportedMethod, terms.Method().String())
	}

	assertReconciles(terms, installments)
	return installments, nil
}

// FixedInstallment returns the constant FRENCH installment for principal over
// n periods at the fractional period rate r.
func FixedInstallment(principal, r decimal.Decimal, n int) decimal.Decimal {
	if r.IsZero() {
		return money.Round(principal.Div(decimal.NewFromInt(int64(n))))
	}
	factor := powInt(decimal.NewFromInt(1).Add(r), n)
	return money.Round(principal.Mul(r).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1))))
}

func french(terms model.LoanTerms, r decimal.Decimal) []model.Installment {
	n := terms.TermCount()
	payment := FixedInstallment(terms.Principal(), r, n)

	out := make([]model.Installment, 0, n)
	balance := terms.Principal()
	for seq := 1; seq <= n; seq++ {
		interest := money.Round(balance.Mul(r))
		principal := payment.Sub(interest)
		if seq == n || principal.GreaterThan(balance) {
			principal = balance
		}
		balance = balance.Sub(principal)
		out = append(out, newInstallment(terms, seq, principal, interest, balance))
	}
	return out
}

func german(terms model.LoanTerms, r decimal.Decimal) []model.Installment {
	n := terms.TermCount()
	fixed := money.Round(terms.Principal().Div(decimal.NewFromInt(int64(n))))

	out := make([]model.Installment, 0, n)
	balance := terms.Principal()
	for seq := 1; seq <= n; seq++ {
		interest := money.Round(balance.Mul(r))
		principal := fixed
		if seq == n || principal.GreaterThan(balance) {
			principal = balance
		}
		balance = balance.Sub(principal)
		out = append(out, newInstallment(terms, seq, principal, interest, balance))
	}
	return out
}

func american(terms model.LoanTerms, r decimal.Decimal) []model.Installment {
	n := terms.TermCount()
	interest := money.Round(terms.Principal().Mul(r))

	out := make([]model.Installment, 0, n)
	balance := terms.Principal()
	for seq := 1; seq <= n; seq++ {
		principal := decimal.Zero
		if seq == n {
			principal = balance
		}
		balance = balance.Sub(principal)
		out = append(out, newInstallment(terms, seq, principal, interest, balance))
	}
	return out
}

func newInstallment(terms model.LoanTerms, seq int, principal, interest, balance decimal.Decimal) model.Installment {
	return model.Installment{
		SequenceNumber:        seq,
		DueDate:               terms.Frequency().DueDate(terms.FirstDueDate(), seq),
		PrincipalComponent:    principal,
		InterestComponent:     interest,
		ScheduledTotal:        principal.Add(interest),
		RemainingBalanceAfter: balance,
		PaidAmount:            decimal.Zero,
		Status:                valueobject.InstallmentStatusPending,
	}
}

// powInt computes base^n by repeated squaring, keeping intermediates at
// powPlaces fractional digits.
func powInt(base decimal.Decimal, n int) decimal.Decimal {
	result := decimal.NewFromInt(1)
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base).Round(powPlaces)
		}
		base = base.Mul(base).Round(powPlaces)
		n >>= 1
	}
	return result
}

func assertReconciles(terms model.LoanTerms, installments []model.Installment) {
	if len(installments) != terms.TermCount() {
		model.Violate("schedule_length", "got %d installments, want %d", len(installments), terms.TermCount())
	}
	last := installments[len(installments)-1]
	if !last.RemainingBalanceAfter.IsZero() {
		model.Violate("final_balance_zero", "final balance is %s", last.RemainingBalanceAfter)
	}
	total := decimal.Zero
	for _, inst := range installments {
		if inst.PrincipalComponent.IsNegative() || inst.InterestComponent.IsNegative() {
			model.Violate("non_negative_components", "installment %d has a negative component", inst.SequenceNumber)
		}
		total = total.Add(inst.PrincipalComponent)
	}
	if !money.WithinCent(total, terms.Principal()) {
		model.Violate("principal_reconciles", "principal components sum to %s, want %s", total, terms.Principal())
	}
}

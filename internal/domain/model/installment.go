package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loanengine/internal/domain/valueobject"
)

// MoraState is the late-payment penalty position of one installment.
type MoraState struct {
	AccruedMora      decimal.Decimal
	AppliedDailyRate decimal.Decimal
	DaysOverdue      int
}

// IsZero reports whether no mora has been accrued.
func (m MoraState) IsZero() bool {
	return m.AccruedMora.IsZero() && m.DaysOverdue == 0
}

// Equal reports whether both states carry the same amounts and day count.
func (m MoraState) Equal(other MoraState) bool {
	return m.AccruedMora.Equal(other.AccruedMora) &&
		m.AppliedDailyRate.Equal(other.AppliedDailyRate) &&
		m.DaysOverdue == other.DaysOverdue
}

// Installment is one scheduled payment. It is a plain value; the caller owns
// it once the engine returns it.
type Installment struct {
	DueDate               time.Time
	PrincipalComponent    decimal.Decimal
	InterestComponent     decimal.Decimal
	ScheduledTotal        decimal.Decimal
	RemainingBalanceAfter decimal.Decimal
	PaidAmount            decimal.Decimal
	Status                valueobject.InstallmentStatus
	Mora                  MoraState
	SequenceNumber        int
}

// Outstanding is the part of the scheduled total that is still unpaid.
func (i Installment) Outstanding() decimal.Decimal {
	return i.ScheduledTotal.Sub(i.PaidAmount)
}

// ScheduleSummary aggregates a whole schedule.
type ScheduleSummary struct {
	TotalPrincipal decimal.Decimal
	TotalInterest  decimal.Decimal
	TotalPayable   decimal.Decimal
	Installments   int
}

// ScheduleTotals sums principal, interest and total payable over installments.
func ScheduleTotals(installments []Installment) ScheduleSummary {
	s := ScheduleSummary{
		TotalPrincipal: decimal.Zero,
		TotalInterest:  decimal.Zero,
		TotalPayable:   decimal.Zero,
		Installments:   len(installments),
	}
	for _, inst := range installments {
		s.TotalPrincipal = s.TotalPrincipal.Add(inst.PrincipalComponent)
		s.TotalInterest = s.TotalInterest.Add(inst.InterestComponent)
		s.TotalPayable = s.TotalPayable.Add(inst.ScheduledTotal)
	}
	return s
}

// MoraRecalcSummary is the audit record of one MoraCalculator pass.
type MoraRecalcSummary struct {
	AsOf            time.Time
	TotalMoraBefore decimal.Decimal
	TotalMoraAfter  decimal.Decimal
	Delta           decimal.Decimal
	Updated         int
}

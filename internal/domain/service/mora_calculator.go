package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loanengine/internal/domain/model"
	"github.com/bibbank/loanengine/internal/domain/valueobject"
	"github.com/bibbank/loanengine/pkg/money"
)

// ---------------------------------------------------------------------------
// MoraCalculator – domain service for late-payment penalties
// ---------------------------------------------------------------------------

// MoraPolicy tunes which installments the calculator considers overdue.
type MoraPolicy struct {
	// PromoteOverduePending moves PENDING installments past their due date
	// to LATE before accruing.
	PromoteOverduePending bool
}

// MoraCalculator recomputes accrued mora for a loan's installments.
type MoraCalculator struct {
	policy MoraPolicy
}

// NewMoraCalculator returns a calculator applying policy.
func NewMoraCalculator(policy MoraPolicy) *MoraCalculator {
	return &MoraCalculator{policy: policy}
}

// Recompute derives mora from scratch for every overdue LATE or PARTIAL
// installment as of asOf. dailyRate is a fraction (0.001 is 0.1% per day).
//
// The input slice is not modified; a recomputed copy is returned. The summary
// counts only installments whose status or mora state changed. PAID
// installments have their mora cleared and installments not yet due are
// returned untouched. Running Recompute twice with the same asOf yields the
// same values.
func (c *MoraCalculator) Recompute(
	installments []model.Installment,
	dailyRate decimal.Decimal,
	asOf time.Time,
) ([]model.Installment, model.MoraRecalcSummary, error) {
	if dailyRate.IsNegative() {
		return nil, model.MoraRecalcSummary{}, model.NewValidationError(
			"daily_mora_rate", model.ErrNegativeMoraRate, dailyRate.String())
	}

	asOfDay := civilDay(asOf)
	summary := model.MoraRecalcSummary{
		AsOf:            asOfDay,
		TotalMoraBefore: decimal.Zero,
		TotalMoraAfter:  decimal.Zero,
	}

	out := make([]model.Installment, len(installments))
	for i, inst := range installments {
		summary.TotalMoraBefore = summary.TotalMoraBefore.Add(inst.Mora.AccruedMora)

		switch {
		case inst.Status.Equal(valueobject.InstallmentStatusPaid):
			if !inst.Mora.IsZero() {
				inst.Mora = model.MoraState{AccruedMora: decimal.Zero, AppliedDailyRate: decimal.Zero}
				summary.Updated++
			}
		case c.accrues(inst.Status):
			days := daysBetween(civilDay(inst.DueDate), asOfDay)
			if days <= 0 {
				break
			}
			outstanding := inst.Outstanding()
			if outstanding.IsNegative() {
				return nil, model.MoraRecalcSummary{}, model.NewValidationError(
					fmt.Sprintf("installment[%d].outstanding", inst.SequenceNumber),
					model.ErrNegativeOutstanding, outstanding.String())
			}
			next := accrue(outstanding, dailyRate, days)
			promote := inst.Status.Equal(valueobject.InstallmentStatusPending)
			if promote || !next.Equal(inst.Mora) {
				summary.Updated++
			}
			if promote {
				inst.Status = valueobject.InstallmentStatusLate
			}
			inst.Mora = next
		}

		summary.TotalMoraAfter = summary.TotalMoraAfter.Add(inst.Mora.AccruedMora)
		out[i] = inst
	}

	summary.Delta = summary.TotalMoraAfter.Sub(summary.TotalMoraBefore)
	return out, summary, nil
}

func (c *MoraCalculator) accrues(s valueobject.InstallmentStatus) bool {
	if s.AccruesMora() {
		return true
	}
	return c.policy.PromoteOverduePending && s.Equal(valueobject.InstallmentStatusPending)
}

func accrue(outstanding, dailyRate decimal.Decimal, days int) model.MoraState {
	if days < 0 {
		model.Violate("days_overdue_non_negative", "days overdue is %d", days)
	}
	return model.MoraState{
		AccruedMora:      money.Round(outstanding.Mul(dailyRate).Mul(decimal.NewFromInt(int64(days)))),
		AppliedDailyRate: dailyRate,
		DaysOverdue:      days,
	}
}

// civilDay drops the clock so day counts are whole calendar days.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

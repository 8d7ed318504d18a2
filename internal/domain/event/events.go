package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loanengine/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

const aggregateLoan = "Loan"

// Event types published by the engine.
const (
	TypeScheduleGenerated = "loanengine.schedule.generated"
	TypeCreditEvaluated   = "loanengine.credit.evaluated"
	TypeLoanApproved      = "loanengine.loan.approved"
	TypeMoraRecalculated  = "loanengine.mora.recalculated"
)

// ---------------------------------------------------------------------------
// Schedule Events
// ---------------------------------------------------------------------------

// ScheduleGenerated is raised once a loan's schedule has been persisted.
type ScheduleGenerated struct {
	events.BaseEvent
	Method        string          `json:"method"`
	Frequency     string          `json:"frequency"`
	Principal     decimal.Decimal `json:"principal"`
	AnnualRate    decimal.Decimal `json:"annual_rate"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	TotalPayable  decimal.Decimal `json:"total_payable"`
	FirstDueDate  time.Time       `json:"first_due_date"`
	Installments  int             `json:"installments"`
}

func NewScheduleGenerated(
	loanID, method, frequency string,
	principal, annualRate, totalInterest, totalPayable decimal.Decimal,
	installments int, firstDueDate time.Time,
) ScheduleGenerated {
	return ScheduleGenerated{
		BaseEvent:     events.NewBaseEvent(TypeScheduleGenerated, loanID, aggregateLoan),
		Method:        method,
		Frequency:     frequency,
		Principal:     principal,
		AnnualRate:    annualRate,
		TotalInterest: totalInterest,
		TotalPayable:  totalPayable,
		Installments:  installments,
		FirstDueDate:  firstDueDate,
	}
}

// ---------------------------------------------------------------------------
// Credit Events
// ---------------------------------------------------------------------------

// CreditEvaluated is raised when an applicant has been scored.
type CreditEvaluated struct {
	events.BaseEvent
	Classification      string          `json:"classification"`
	Decision            string          `json:"decision"`
	TotalScore          decimal.Decimal `json:"total_score"`
	AppliedInterestRate decimal.Decimal `json:"applied_interest_rate"`
	MinDownPaymentPct   decimal.Decimal `json:"min_down_payment_pct"`
	MaxTerm             int             `json:"max_term"`
}

func NewCreditEvaluated(
	loanID, classification, decision string,
	totalScore, rate, minDownPaymentPct decimal.Decimal, maxTerm int,
) CreditEvaluated {
	return CreditEvaluated{
		BaseEvent:           events.NewBaseEvent(TypeCreditEvaluated, loanID, aggregateLoan),
		Classification:      classification,
		Decision:            decision,
		TotalScore:          totalScore,
		AppliedInterestRate: rate,
		MinDownPaymentPct:   minDownPaymentPct,
		MaxTerm:             maxTerm,
	}
}

// LoanApproved is raised when an evaluated loan is approved and scheduled at
// the rate its classification grants.
type LoanApproved struct {
	events.BaseEvent
	Classification string          `json:"classification"`
	Principal      decimal.Decimal `json:"principal"`
	AnnualRate     decimal.Decimal `json:"annual_rate"`
	TermCount      int             `json:"term_count"`
}

func NewLoanApproved(loanID, classification string, principal, annualRate decimal.Decimal, termCount int) LoanApproved {
	return LoanApproved{
		BaseEvent:      events.NewBaseEvent(TypeLoanApproved, loanID, aggregateLoan),
		Classification: classification,
		Principal:      principal,
		AnnualRate:     annualRate,
		TermCount:      termCount,
	}
}

// ---------------------------------------------------------------------------
// Mora Events
// ---------------------------------------------------------------------------

// MoraRecalculated is raised per loan after a mora pass has been saved.
type MoraRecalculated struct {
	events.BaseEvent
	AsOf            time.Time       `json:"as_of"`
	TotalMoraBefore decimal.Decimal `json:"total_mora_before"`
	TotalMoraAfter  decimal.Decimal `json:"total_mora_after"`
	Delta           decimal.Decimal `json:"delta"`
	Updated         int             `json:"installments_updated"`
}

func NewMoraRecalculated(loanID string, asOf time.Time, before, after, delta decimal.Decimal, updated int) MoraRecalculated {
	return MoraRecalculated{
		BaseEvent:       events.NewBaseEvent(TypeMoraRecalculated, loanID, aggregateLoan),
		AsOf:            asOf,
		TotalMoraBefore: before,
		TotalMoraAfter:  after,
		Delta:           delta,
		Updated:         updated,
	}
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// GenerateScheduleRequest carries the terms of a loan to amortize.
type GenerateScheduleRequest struct {
	FirstDueDate time.Time       `json:"first_due_date"`
	LoanID       string          `json:"loan_id"`
	Frequency    string          `json:"frequency"`
	Method       string          `json:"method"`
	Principal    decimal.Decimal `json:"principal"`
	AnnualRate   decimal.Decimal `json:"annual_rate"`
	TermCount    int             `json:"term_count"`
}

// EvaluateApplicantRequest carries the applicant attributes scored by the
// configured criteria.
type EvaluateApplicantRequest struct {
	LoanID               string          `json:"loan_id"`
	EmploymentType       string          `json:"employment_type"`
	MaritalStatus        string          `json:"marital_status"`
	MonthlyIncome        decimal.Decimal `json:"monthly_income"`
	MonthlyDebtPayments  decimal.Decimal `json:"monthly_debt_payments"`
	RequestedInstallment decimal.Decimal `json:"requested_installment"`
	RequestedAmount      decimal.Decimal `json:"requested_amount"`
	DownPaymentPct       decimal.Decimal `json:"down_payment_pct"`
	CollateralValue      decimal.Decimal `json:"collateral_value"`
	EmploymentMonths     int             `json:"employment_months"`
	VerifiedReferences   int             `json:"verified_references"`
	MonthsAtResidence    int             `json:"months_at_residence"`
	Dependents           int             `json:"dependents"`
	Age                  int             `json:"age"`
	OwnsHome             bool            `json:"owns_home"`
}

// ApproveLoanRequest asks for an evaluated loan to be approved and scheduled
// at the rate its evaluation grants.
type ApproveLoanRequest struct {
	FirstDueDate   time.Time       `json:"first_due_date"`
	LoanID         string          `json:"loan_id"`
	Frequency      string          `json:"frequency"`
	Method         string          `json:"method"`
	Principal      decimal.Decimal `json:"principal"`
	DownPaymentPct decimal.Decimal `json:"down_payment_pct"`
	TermCount      int             `json:"term_count"`
}

// MoraBatchRequest drives one mora pass over every open loan.
type MoraBatchRequest struct {
	AsOf      time.Time       `json:"as_of"`
	DailyRate decimal.Decimal `json:"daily_rate"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// InstallmentResponse represents a single schedule entry.
type InstallmentResponse struct {
	DueDate          time.Time       `json:"due_date"`
	Status           string          `json:"status"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	Total            decimal.Decimal `json:"total"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	SequenceNumber   int             `json:"sequence_number"`
}

// ScheduleResponse is the external representation of a generated schedule.
type ScheduleResponse struct {
	LoanID         string                `json:"loan_id"`
	Method         string                `json:"method"`
	Frequency      string                `json:"frequency"`
	AnnualRate     decimal.Decimal       `json:"annual_rate"`
	TotalPrincipal decimal.Decimal       `json:"total_principal"`
	TotalInterest  decimal.Decimal       `json:"total_interest"`
	TotalPayable   decimal.Decimal       `json:"total_payable"`
	Installments   []InstallmentResponse `json:"installments"`
}

// CriterionScoreResponse is one line of the score breakdown.
type CriterionScoreResponse struct {
	Name       string          `json:"name"`
	Descriptor string          `json:"descriptor"`
	Points     decimal.Decimal `json:"points"`
	MaxWeight  decimal.Decimal `json:"max_weight"`
}

// EvaluationResponse is the external representation of a credit evaluation.
type EvaluationResponse struct {
	LoanID              string                   `json:"loan_id"`
	Classification      string                   `json:"classification"`
	Decision            string                   `json:"decision"`
	TotalScore          decimal.Decimal          `json:"total_score"`
	AppliedInterestRate decimal.Decimal          `json:"applied_interest_rate"`
	MinDownPaymentPct   decimal.Decimal          `json:"min_down_payment_pct"`
	Criteria            []CriterionScoreResponse `json:"criteria"`
	MaxTerm             int                      `json:"max_term"`
}

// ApproveLoanResponse couples the approving evaluation with the schedule.
type ApproveLoanResponse struct {
	Classification string           `json:"classification"`
	Decision       string           `json:"decision"`
	Schedule       ScheduleResponse `json:"schedule"`
}

// MoraFailure records a loan the batch could not process.
type MoraFailure struct {
	LoanID string `json:"loan_id"`
	Error  string `json:"error"`
}

// MoraBatchResponse summarises one mora batch pass.
type MoraBatchResponse struct {
	AsOf                time.Time       `json:"as_of"`
	TotalDelta          decimal.Decimal `json:"total_delta"`
	Failures            []MoraFailure   `json:"failures,omitempty"`
	LoansSeen           int             `json:"loans_seen"`
	LoansUpdated        int             `json:"loans_updated"`
	LoansUnchanged      int             `json:"loans_unchanged"`
	InstallmentsUpdated int             `json:"installments_updated"`
	Cancelled           bool            `json:"cancelled"`
}

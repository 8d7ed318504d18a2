package model

import "github.com/shopspring/decimal"

// EmploymentType classifies the applicant's source of income.
type EmploymentType string

const (
	EmploymentPermanent    EmploymentType = "PERMANENT"
	EmploymentContract     EmploymentType = "CONTRACT"
	EmploymentSelfEmployed EmploymentType = "SELF_EMPLOYED"
	EmploymentInformal     EmploymentType = "INFORMAL"
	EmploymentUnemployed   EmploymentType = "UNEMPLOYED"
)

// MaritalStatus is used by the sociodemographic criterion.
type MaritalStatus string

const (
	MaritalSingle   MaritalStatus = "SINGLE"
	MaritalMarried  MaritalStatus = "MARRIED"
	MaritalUnion    MaritalStatus = "UNION"
	MaritalDivorced MaritalStatus = "DIVORCED"
	MaritalWidowed  MaritalStatus = "WIDOWED"
)

// ApplicantProfile carries the attributes the scoring criteria read. All
// monetary fields are in the loan currency.
type ApplicantProfile struct {
	MonthlyIncome        decimal.Decimal
	MonthlyDebtPayments  decimal.Decimal
	RequestedInstallment decimal.Decimal
	RequestedAmount      decimal.Decimal
	DownPaymentPct       decimal.Decimal
	CollateralValue      decimal.Decimal
	EmploymentType       EmploymentType
	MaritalStatus        MaritalStatus
	EmploymentMonths     int
	VerifiedReferences   int
	MonthsAtResidence    int
	Dependents           int
	Age                  int
	OwnsHome             bool
}

// Validate rejects profiles no criterion could score meaningfully.
func (p ApplicantProfile) Validate() error {
	switch {
	case p.MonthlyIncome.IsNegative():
		return NewValidationError("monthly_income", ErrValidation, "must not be negative")
	case p.MonthlyDebtPayments.IsNegative():
		return NewValidationError("monthly_debt_payments", ErrValidation, "must not be negative")
	case p.RequestedInstallment.IsNegative():
		return NewValidationError("requested_installment", ErrValidation, "must not be negative")
	case p.RequestedAmount.IsNegative():
		return NewValidationError("requested_amount", ErrValidation, "must not be negative")
	case p.DownPaymentPct.IsNegative() || p.DownPaymentPct.GreaterThan(decimal.NewFromInt(100)):
		return NewValidationError("down_payment_pct", ErrValidation, "must be between 0 and 100")
	case p.CollateralValue.IsNegative():
		return NewValidationError("collateral_value", ErrValidation, "must not be negative")
	case p.EmploymentMonths < 0, p.VerifiedReferences < 0, p.MonthsAtResidence < 0, p.Dependents < 0:
		return NewValidationError("profile", ErrValidation, "counts must not be negative")
	case p.Age < 0:
		return NewValidationError("age", ErrValidation, "must not be negative")
	}
	return nil
}

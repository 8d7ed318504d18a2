package service

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loanengine/internal/domain/model"
	"github.com/bibbank/loanengine/pkg/money"
)

// ---------------------------------------------------------------------------
// Reference criteria
// ---------------------------------------------------------------------------

// Reference criterion kinds. Each scores a fraction of the weight it is
// configured with, so the weight split itself stays configuration.
const (
	CriterionCapacityToPay        = "capacity_to_pay"
	CriterionEmploymentStability  = "employment_stability"
	CriterionPersonalReferences   = "personal_references"
	CriterionResidentialStability = "residential_stability"
	CriterionSociodemographic     = "sociodemographic"
	CriterionAge                  = "age"
	CriterionCollateral           = "collateral"
)

type fractionFunc func(p model.ApplicantProfile) (decimal.Decimal, string)

var referenceCriteria = map[string]fractionFunc{
	CriterionCapacityToPay:        capacityToPay,
	CriterionEmploymentStability:  employmentStability,
	CriterionPersonalReferences:   personalReferences,
	CriterionResidentialStability: residentialStability,
	CriterionSociodemographic:     sociodemographic,
	CriterionAge:                  ageFraction,
	CriterionCollateral:           collateralStrength,
}

// ReferenceCriterionKinds lists the built-in criterion kinds in name order.
func ReferenceCriterionKinds() []string {
	kinds := make([]string, 0, len(referenceCriteria))
	for k := range referenceCriteria {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// NewReferenceCriterion builds a ScoreCriterion for a built-in kind. An empty
// name defaults to the kind.
func NewReferenceCriterion(kind, name string, weight decimal.Decimal) (ScoreCriterion, error) {
	fn, ok := referenceCriteria[kind]
	if !ok {
		return ScoreCriterion{}, model.NewValidationError(kind, model.ErrInvalidCriteria, "unknown criterion kind")
	}
	if name == "" {
		name = kind
	}
	return ScoreCriterion{
		Name:      name,
		MaxWeight: weight,
		Evaluator: weighted{weight: weight, fraction: fn},
	}, nil
}

// weighted scales a [0,1] fraction to the configured weight.
type weighted struct {
	fraction fractionFunc
	weight   decimal.Decimal
}

func (w weighted) Evaluate(p model.ApplicantProfile) (decimal.Decimal, string) {
	f, descriptor := w.fraction(p)
	f = money.Clamp(f, decimal.Zero, decimal.NewFromInt(1))
	return money.Round(w.weight.Mul(f)), descriptor
}

func frac(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func capacityToPay(p model.ApplicantProfile) (decimal.Decimal, string) {
	if !p.MonthlyIncome.IsPositive() {
		return decimal.Zero, "no verifiable income"
	}
	burden := p.MonthlyDebtPayments.Add(p.RequestedInstallment).Div(p.MonthlyIncome)
	pct := money.Round(burden.Mul(money.Hundred))
	switch {
	case burden.LessThanOrEqual(frac("0.30")):
		return decimal.NewFromInt(1), fmt.Sprintf("debt burden %s%% (comfortable)", pct)
	case burden.LessThanOrEqual(frac("0.40")):
		return frac("0.75"), fmt.Sprintf("debt burden %s%% (acceptable)", pct)
	case burden.LessThanOrEqual(frac("0.50")):
		return frac("0.5"), fmt.Sprintf("debt burden %s%% (tight)", pct)
	case burden.LessThanOrEqual(frac("0.60")):
		return frac("0.25"), fmt.Sprintf("debt burden %s%% (strained)", pct)
	default:
		return decimal.Zero, fmt.Sprintf("debt burden %s%% (over capacity)", pct)
	}
}

func employmentStability(p model.ApplicantProfile) (decimal.Decimal, string) {
	var kind decimal.Decimal
	switch p.EmploymentType {
	case model.EmploymentPermanent:
		kind = decimal.NewFromInt(1)
	case model.EmploymentContract:
		kind = frac("0.75")
	case model.EmploymentSelfEmployed:
		kind = frac("0.6")
	case model.EmploymentInformal:
		kind = frac("0.35")
	default:
		return decimal.Zero, "no employment"
	}

	var tenure decimal.Decimal
	switch {
	case p.EmploymentMonths >= 24:
		tenure = decimal.NewFromInt(1)
	case p.EmploymentMonths >= 12:
		tenure = frac("0.75")
	case p.EmploymentMonths >= 6:
		tenure = frac("0.5")
	default:
		tenure = frac("0.25")
	}
	score := kind.Mul(frac("0.6")).Add(tenure.Mul(frac("0.4")))
	return score, fmt.Sprintf("%s, %d months", p.EmploymentType, p.EmploymentMonths)
}

func personalReferences(p model.ApplicantProfile) (decimal.Decimal, string) {
	desc := fmt.Sprintf("%d verified references", p.VerifiedReferences)
	switch {
	case p.VerifiedReferences >= 3:
		return decimal.NewFromInt(1), desc
	case p.VerifiedReferences == 2:
		return frac("0.7"), desc
	case p.VerifiedReferences == 1:
		return frac("0.4"), desc
	default:
		return decimal.Zero, desc
	}
}

func residentialStability(p model.ApplicantProfile) (decimal.Decimal, string) {
	var score decimal.Decimal
	switch {
	case p.MonthsAtResidence >= 60:
		score = frac("0.6")
	case p.MonthsAtResidence >= 24:
		score = frac("0.45")
	case p.MonthsAtResidence >= 12:
		score = frac("0.3")
	default:
		score = frac("0.1")
	}
	tenure := "renting"
	if p.OwnsHome {
		score = score.Add(frac("0.4"))
		tenure = "homeowner"
	}
	return score, fmt.Sprintf("%s, %d months at address", tenure, p.MonthsAtResidence)
}

func sociodemographic(p model.ApplicantProfile) (decimal.Decimal, string) {
	score := frac("0.3")
	if p.MaritalStatus == model.MaritalMarried || p.MaritalStatus == model.MaritalUnion {
		score = frac("0.5")
	}
	switch {
	case p.Dependents == 0:
		score = score.Add(frac("0.5"))
	case p.Dependents <= 2:
		score = score.Add(frac("0.4"))
	case p.Dependents == 3:
		score = score.Add(frac("0.25"))
	default:
		score = score.Add(frac("0.1"))
	}
	return score, fmt.Sprintf("%s, %d dependents", p.MaritalStatus, p.Dependents)
}

func ageFraction(p model.ApplicantProfile) (decimal.Decimal, string) {
	desc := fmt.Sprintf("%d years old", p.Age)
	switch {
	case p.Age < 18:
		return decimal.Zero, "under legal age"
	case p.Age < 25:
		return frac("0.5"), desc
	case p.Age <= 55:
		return decimal.NewFromInt(1), desc
	case p.Age <= 65:
		return frac("0.7"), desc
	default:
		return frac("0.3"), desc
	}
}

func collateralStrength(p model.ApplicantProfile) (decimal.Decimal, string) {
	var down decimal.Decimal
	switch {
	case p.DownPaymentPct.GreaterThanOrEqual(decimal.NewFromInt(30)):
		down = frac("0.6")
	case p.DownPaymentPct.GreaterThanOrEqual(decimal.NewFromInt(20)):
		down = frac("0.45")
	case p.DownPaymentPct.GreaterThanOrEqual(decimal.NewFromInt(10)):
		down = frac("0.3")
	case p.DownPaymentPct.IsPositive():
		down = frac("0.15")
	default:
		down = decimal.Zero
	}

	coverage := decimal.Zero
	if p.RequestedAmount.IsPositive() {
		ratio := p.CollateralValue.Div(p.RequestedAmount)
		switch {
		case ratio.GreaterThanOrEqual(decimal.NewFromInt(1)):
			coverage = frac("0.4")
		case ratio.GreaterThanOrEqual(frac("0.5")):
			coverage = frac("0.25")
		case ratio.IsPositive():
			coverage = frac("0.1")
		}
	}
	return down.Add(coverage), fmt.Sprintf("down payment %s%%, collateral %s", p.DownPaymentPct, money.Format(p.CollateralValue))
}

package model

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/loanengine/internal/domain/valueobject"
)

// CriterionScore is the outcome of one criterion evaluation.
type CriterionScore struct {
	Name       string          `json:"name"`
	Descriptor string          `json:"descriptor"`
	Points     decimal.Decimal `json:"points"`
	MaxWeight  decimal.Decimal `json:"max_weight"`
}

// ApprovalConditions are the terms granted for a classification.
type ApprovalConditions struct {
	InterestRate      decimal.Decimal
	MinDownPaymentPct decimal.Decimal
	MaxTerm           int
}

// CreditScoreResult is produced once per evaluation and never mutated.
type CreditScoreResult struct {
	criteria       []CriterionScore
	totalScore     decimal.Decimal
	classification valueobject.RiskClassification
	decision       valueobject.Decision
	conditions     ApprovalConditions
}

// NewCreditScoreResult assembles a result. The criteria slice is copied.
func NewCreditScoreResult(
	criteria []CriterionScore,
	totalScore decimal.Decimal,
	classification valueobject.RiskClassification,
	decision valueobject.Decision,
	conditions ApprovalConditions,
) CreditScoreResult {
	cp := make([]CriterionScore, len(criteria))
	copy(cp, criteria)
	return CreditScoreResult{
		criteria:       cp,
		totalScore:     totalScore,
		classification: classification,
		decision:       decision,
		conditions:     conditions,
	}
}

// Criteria returns a copy of the per-criterion breakdown.
func (r CreditScoreResult) Criteria() []CriterionScore {
	out := make([]CriterionScore, len(r.criteria))
	copy(out, r.criteria)
	return out
}

func (r CreditScoreResult) TotalScore() decimal.Decimal { return r.totalScore }
func (r CreditScoreResult) Classification() valueobject.RiskClassification { return r.classification }
func (r CreditScoreResult) Decision() valueobject.Decision { return r.decision }
func (r CreditScoreResult) Conditions() ApprovalConditions { return r.conditions }
func (r CreditScoreResult) AppliedInterestRate() decimal.Decimal { return r.conditions.InterestRate }
func (r CreditScoreResult) MaxTerm() int { return r.conditions.MaxTerm }
func (r CreditScoreResult) MinDownPaymentPct() decimal.Decimal { return r.conditions.MinDownPaymentPct }

// IsZero reports whether the result was never populated.
func (r CreditScoreResult) IsZero() bool { return r.classification.IsZero() }

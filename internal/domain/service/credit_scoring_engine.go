package service

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loanengine/internal/domain/model"
	"github.com/bibbank/loanengine/internal/domain/valueobject"
	"github.com/bibbank/loanengine/pkg/money"
)

// ---------------------------------------------------------------------------
// CreditScoringEngine – weighted, table-driven risk scoring
// ---------------------------------------------------------------------------

// TotalWeight is the budget every criteria set must add up to.
var TotalWeight = decimal.NewFromInt(100)

// CriterionEvaluator scores one aspect of an applicant. Points outside
// [0, max_weight] are clamped by the engine.
type CriterionEvaluator interface {
	Evaluate(profile model.ApplicantProfile) (points decimal.Decimal, descriptor string)
}

// EvaluatorFunc adapts a plain function to CriterionEvaluator.
type EvaluatorFunc func(profile model.ApplicantProfile) (decimal.Decimal, string)

// Evaluate calls f(profile).
func (f EvaluatorFunc) Evaluate(profile model.ApplicantProfile) (decimal.Decimal, string) {
	return f(profile)
}

// ScoreCriterion is one weighted entry of the scoring configuration.
type ScoreCriterion struct {
	Evaluator CriterionEvaluator
	Name      string
	MaxWeight decimal.Decimal
}

// RiskBand maps every score >= MinScore (and below the next band up) to
// Classification.
type RiskBand struct {
	Classification valueobject.RiskClassification
	MinScore       decimal.Decimal
}

// ScoringPolicy holds the classification, decision and conditions tables.
type ScoringPolicy struct {
	Decisions  map[valueobject.RiskClassification]valueobject.Decision
	Conditions map[valueobject.RiskClassification]model.ApprovalConditions
	Bands      []RiskBand
}

// CreditScoringEngine evaluates applicants against a validated criteria set.
// It is immutable after construction and safe for concurrent use.
type CreditScoringEngine struct {
	decisions  map[valueobject.RiskClassification]valueobject.Decision
	conditions map[valueobject.RiskClassification]model.ApprovalConditions
	criteria   []ScoreCriterion
	bands      []RiskBand // sorted by MinScore, highest first
}

// NewCreditScoringEngine validates the configuration and returns an engine.
// Every problem is reported as a *model.ValidationError naming the
// offending criterion or table.
func NewCreditScoringEngine(criteria []ScoreCriterion, policy ScoringPolicy) (*CreditScoringEngine, error) {
	if err := validateCriteria(criteria); err != nil {
		return nil, err
	}
	bands, err := validatePolicy(policy)
	if err != nil {
		return nil, err
	}

	e := &CreditScoringEngine{
		decisions:  make(map[valueobject.RiskClassification]valueobject.Decision, len(policy.Decisions)),
		conditions: make(map[valueobject.RiskClassification]model.ApprovalConditions, len(policy.Conditions)),
		criteria:   append([]ScoreCriterion(nil), criteria...),
		bands:      bands,
	}
	for k, v := range policy.Decisions {
		e.decisions[k] = v
	}
	for k, v := range policy.Conditions {
		e.conditions[k] = v
	}
	return e, nil
}

// Evaluate scores profile in one pure step. The result is never mutated
// afterwards.
func (e *CreditScoringEngine) Evaluate(profile model.ApplicantProfile) model.CreditScoreResult {
	scores := make([]model.CriterionScore, 0, len(e.criteria))
	total := decimal.Zero
	for _, c := range e.criteria {
		raw, descriptor := c.Evaluator.Evaluate(profile)
		points := money.Clamp(money.Round(raw), decimal.Zero, c.MaxWeight)
		total = total.Add(points)
		scores = append(scores, model.CriterionScore{
			Name:       c.Name,
			Points:     points,
			MaxWeight:  c.MaxWeight,
			Descriptor: descriptor,
		})
	}

	classification := e.Classify(total)
	return model.NewCreditScoreResult(
		scores,
		total,
		classification,
		e.decisions[classification],
		e.conditions[classification],
	)
}

// Classify returns the band containing score.
func (e *CreditScoringEngine) Classify(score decimal.Decimal) valueobject.RiskClassification {
	for _, b := range e.bands {
		if score.GreaterThanOrEqual(b.MinScore) {
			return b.Classification
		}
	}
	model.Violate("score_in_band", "score %s is below every band", score)
	return valueobject.RiskClassification{}
}

// Criteria returns a copy of the configured criteria.
func (e *CreditScoringEngine) Criteria() []ScoreCriterion {
	return append([]ScoreCriterion(nil), e.criteria...)
}

func validateCriteria(criteria []ScoreCriterion) error {
	if len(criteria) == 0 {
		return model.NewValidationError("criteria", model.ErrInvalidCriteria, "at least one criterion is required")
	}
	seen := make(map[string]struct{}, len(criteria))
	sum := decimal.Zero
	for i, c := range criteria {
		if c.Name == "" {
			return model.NewValidationError(fmt.Sprintf("criteria[%d].name", i), model.ErrInvalidCriteria, "name is required")
		}
		if _, dup := seen[c.Name]; dup {
			return model.NewValidationError(c.Name, model.ErrInvalidCriteria, "duplicate criterion name")
		}
		seen[c.Name] = struct{}{}
		if !c.MaxWeight.IsPositive() {
			return model.NewValidationError(c.Name, model.ErrInvalidCriteria, "max weight must be positive")
		}
		if c.Evaluator == nil {
			return model.NewValidationError(c.Name, model.ErrInvalidCriteria, "evaluator is required")
		}
		sum = sum.Add(c.MaxWeight)
	}
	if !sum.Equal(TotalWeight) {
		return model.NewValidationError("criteria", model.ErrInvalidCriteria,
			fmt.Sprintf("max weights sum to %s, want %s", sum, TotalWeight))
	}
	return nil
}

func validatePolicy(policy ScoringPolicy) ([]RiskBand, error) {
	if len(policy.Bands) == 0 {
		return nil, model.NewValidationError("bands", model.ErrInvalidPolicy, "at least one band is required")
	}

	bands := append([]RiskBand(nil), policy.Bands...)
	sort.SliceStable(bands, func(i, j int) bool {
		return bands[i].MinScore.GreaterThan(bands[j].MinScore)
	})

	seen := make(map[valueobject.RiskClassification]struct{}, len(bands))
	for i, b := range bands {
		field := "bands." + b.Classification.String()
		if b.Classification.IsZero() {
			return nil, model.NewValidationError("bands", model.ErrInvalidPolicy, "band classification is required")
		}
		if _, dup := seen[b.Classification]; dup {
			return nil, model.NewValidationError(field, model.ErrInvalidPolicy, "classification appears in more than one band")
		}
		seen[b.Classification] = struct{}{}
		if b.MinScore.IsNegative() || b.MinScore.GreaterThan(TotalWeight) {
			return nil, model.NewValidationError(field, model.ErrInvalidPolicy, "min score must be within [0, 100]")
		}
		if i > 0 && b.MinScore.Equal(bands[i-1].MinScore) {
			return nil, model.NewValidationError(field, model.ErrInvalidPolicy, "bands overlap")
		}

		if _, ok := policy.Decisions[b.Classification]; !ok {
			return nil, model.NewValidationError("decisions."+b.Classification.String(), model.ErrInvalidPolicy, "no decision configured")
		}
		cond, ok := policy.Conditions[b.Classification]
		if !ok {
			return nil, model.NewValidationError("conditions."+b.Classification.String(), model.ErrInvalidPolicy, "no conditions configured")
		}
		if err := validateConditions(b.Classification, cond); err != nil {
			return nil, err
		}
	}
	if lowest := bands[len(bands)-1]; !lowest.MinScore.IsZero() {
		return nil, model.NewValidationError("bands."+lowest.Classification.String(), model.ErrInvalidPolicy,
			"lowest band must start at 0")
	}
	if err := validateConditionOrder(bands, policy); err != nil {
		return nil, err
	}
	return bands, nil
}

// validateConditionOrder walks bands from lowest to highest risk and requires
// terms to get no more generous: rates and down payments never fall and max
// terms never grow. Rejecting bands grant nothing and are skipped.
func validateConditionOrder(bands []RiskBand, policy ScoringPolicy) error {
	var (
		prev    model.ApprovalConditions
		prevSet bool
	)
	for _, b := range bands {
		if policy.Decisions[b.Classification].Equal(valueobject.DecisionReject) {
			continue
		}
		cond := policy.Conditions[b.Classification]
		field := "conditions." + b.Classification.String()
		if prevSet {
			switch {
			case cond.InterestRate.LessThan(prev.InterestRate):
				return model.NewValidationError(field, model.ErrInvalidPolicy, "interest rate is lower than a less risky band")
			case cond.MaxTerm > prev.MaxTerm:
				return model.NewValidationError(field, model.ErrInvalidPolicy, "max term is longer than a less risky band")
			case cond.MinDownPaymentPct.LessThan(prev.MinDownPaymentPct):
				return model.NewValidationError(field, model.ErrInvalidPolicy, "min down payment is lower than a less risky band")
			}
		}
		prev, prevSet = cond, true
	}
	return nil
}

func validateConditions(rc valueobject.RiskClassification, c model.ApprovalConditions) error {
	field := "conditions." + rc.String()
	switch {
	case c.InterestRate.IsNegative():
		return model.NewValidationError(field, model.ErrInvalidPolicy, "interest rate must not be negative")
	case c.MaxTerm < 0:
		return model.NewValidationError(field, model.ErrInvalidPolicy, "max term must not be negative")
	case c.MinDownPaymentPct.IsNegative() || c.MinDownPaymentPct.GreaterThan(money.Hundred):
		return model.NewValidationError(field, model.ErrInvalidPolicy, "min down payment must be within [0, 100]")
	}
	return nil
}

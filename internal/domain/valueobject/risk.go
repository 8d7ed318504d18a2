package valueobject

import "fmt"

// RiskClassification is the risk band an applicant's total score falls into.
type RiskClassification struct {
	value string
}

const (
	riskLow      = "LOW_RISK"
	riskMedium   = "MEDIUM_RISK"
	riskHigh     = "HIGH_RISK"
	riskRejected = "REJECTED"
)

var (
	RiskLow      = RiskClassification{value: riskLow}
	RiskMedium   = RiskClassification{value: riskMedium}
	RiskHigh     = RiskClassification{value: riskHigh}
	RiskRejected = RiskClassification{value: riskRejected}
)

var validRiskClassifications = map[string]RiskClassification{
	riskLow:      RiskLow,
	riskMedium:   RiskMedium,
	riskHigh:     RiskHigh,
	riskRejected: RiskRejected,
}

// NewRiskClassification reconstructs a RiskClassification from its string form.
func NewRiskClassification(s string) (RiskClassification, error) {
	v, ok := validRiskClassifications[s]
	if !ok {
		return RiskClassification{}, fmt.Errorf("invalid risk classification: %q", s)
	}
	return v, nil
}

// String returns the string representation.
func (r RiskClassification) String() string { return r.value }

// IsZero returns true if the classification has not been set.
func (r RiskClassification) IsZero() bool { return r.value == "" }

// Equal checks equality with another RiskClassification.
func (r RiskClassification) Equal(other RiskClassification) bool { return r.value == other.value }

// Decision is the credit decision derived from a classification.
type Decision struct {
	value string
}

const (
	decisionApprove               = "APPROVE"
	decisionApproveWithConditions = "APPROVE_WITH_CONDITIONS"
	decisionManualReview          = "MANUAL_REVIEW"
	decisionReject                = "REJECT"
)

var (
	DecisionApprove               = Decision{value: decisionApprove}
	DecisionApproveWithConditions = Decision{value: decisionApproveWithConditions}
	DecisionManualReview          = Decision{value: decisionManualReview}
	DecisionReject                = Decision{value: decisionReject}
)

var validDecisions = map[string]Decision{
	decisionApprove:               DecisionApprove,
	decisionApproveWithConditions: DecisionApproveWithConditions,
	decisionManualReview:          DecisionManualReview,
	decisionReject:                DecisionReject,
}

// NewDecision reconstructs a Decision from its string form.
func NewDecision(s string) (Decision, error) {
	v, ok := validDecisions[s]
	if !ok {
		return Decision{}, fmt.Errorf("invalid decision: %q", s)
	}
	return v, nil
}

// AllowsDisbursement reports whether a loan may be approved automatically.
func (d Decision) AllowsDisbursement() bool {
	return d.value == decisionApprove || d.value == decisionApproveWithConditions
}

// String returns the string representation.
func (d Decision) String() string { return d.value }

// IsZero returns true if the decision has not been set.
func (d Decision) IsZero() bool { return d.value == "" }

// Equal checks equality with another Decision.
func (d Decision) Equal(other Decision) bool { return d.value == other.value }

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/bibbank/loanengine/internal/domain/model"
	"github.com/bibbank/loanengine/internal/domain/port"
	"github.com/bibbank/loanengine/internal/domain/valueobject"
)

// EvaluationRepo implements port.EvaluationPersistenceGateway.
type EvaluationRepo struct {
	db DB
}

// NewEvaluationRepo creates a PostgreSQL-backed evaluation repository.
func NewEvaluationRepo(db DB) *EvaluationRepo {
	return &EvaluationRepo{db: db}
}

// UpsertEvaluation stores result as the loan's current evaluation.
func (r *EvaluationRepo) UpsertEvaluation(ctx context.Context, loanID string, result model.CreditScoreResult) error {
	criteria, err := json.Marshal(result.Criteria())
	if err != nil {
		return port.NewStorageError("upsert evaluation", loanID, fmt.Errorf("encode criteria: %w", err))
	}

	query := `
		INSERT INTO credit_evaluations (
			loan_id, total_score, classification, decision,
			interest_rate, min_down_payment_pct, max_term, criteria, evaluated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now())
		ON CONFLICT (loan_id) DO UPDATE SET
			total_score          = EXCLUDED.total_score,
			classification       = EXCLUDED.classification,
			decision             = EXCLUDED.decision,
			interest_rate        = EXCLUDED.interest_rate,
			min_down_payment_pct = EXCLUDED.min_down_payment_pct,
			max_term             = EXCLUDED.max_term,
			criteria             = EXCLUDED.criteria,
			evaluated_at         = EXCLUDED.evaluated_at
	`
	conditions := result.Conditions()
	_, err = r.db.Exec(ctx, query,
		loanID, result.TotalScore(), result.Classification().String(), result.Decision().String(),
		conditions.InterestRate, conditions.MinDownPaymentPct, conditions.MaxTerm, string(criteria),
	)
	if err != nil {
		return port.NewStorageError("upsert evaluation", loanID, err)
	}
	return nil
}

// FindEvaluation loads the loan's current evaluation. It wraps
// port.ErrNotFound when the loan was never evaluated.
func (r *EvaluationRepo) FindEvaluation(ctx context.Context, loanID string) (model.CreditScoreResult, error) {
	query := `
		SELECT total_score, classification, decision,
		       interest_rate, min_down_payment_pct, max_term, criteria
		FROM credit_evaluations
		WHERE loan_id = $1
	`
	var (
		total, rate, minDown           decimal.Decimal
		classificationStr, decisionStr string
		maxTerm                        int
		rawCriteria                    []byte
	)
	err := r.db.QueryRow(ctx, query, loanID).Scan(
		&total, &classificationStr, &decisionStr,
		&rate, &minDown, &maxTerm, &rawCriteria,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.CreditScoreResult{}, fmt.Errorf("evaluation for loan %s: %w", loanID, port.ErrNotFound)
	}
	if err != nil {
		return model.CreditScoreResult{}, port.NewStorageError("find evaluation", loanID, err)
	}

	result, err := reconstructEvaluation(total, classificationStr, decisionStr, rate, minDown, maxTerm, rawCriteria)
	if err != nil {
		return model.CreditScoreResult{}, port.NewStorageError("find evaluation", loanID, err)
	}
	return result, nil
}

func reconstructEvaluation(
	total decimal.Decimal,
	classificationStr, decisionStr string,
	rate, minDown decimal.Decimal,
	maxTerm int,
	rawCriteria []byte,
) (model.CreditScoreResult, error) {
	classification, err := valueobject.NewRiskClassification(classificationStr)
	if err != nil {
		return model.CreditScoreResult{}, fmt.Errorf("parse classification: %w", err)
	}
	decision, err := valueobject.NewDecision(decisionStr)
	if err != nil {
		return model.CreditScoreResult{}, fmt.Errorf("parse decision: %w", err)
	}
	var criteria []model.CriterionScore
	if err := json.Unmarshal(rawCriteria, &criteria); err != nil {
		return model.CreditScoreResult{}, fmt.Errorf("decode criteria: %w", err)
	}
	return model.NewCreditScoreResult(criteria, total, classification, decision, model.ApprovalConditions{
		InterestRate:      rate,
		MinDownPaymentPct: minDown,
		MaxTerm:           maxTerm,
	}), nil
}

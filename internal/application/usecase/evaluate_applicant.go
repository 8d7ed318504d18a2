package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/loanengine/internal/application/dto"
	"github.com/bibbank/loanengine/internal/domain/event"
	"github.com/bibbank/loanengine/internal/domain/port"
	"github.com/bibbank/loanengine/internal/domain/service"
)

// EvaluateApplicantUseCase scores an applicant and stores the evaluation.
type EvaluateApplicantUseCase struct {
	evaluations port.EvaluationPersistenceGateway
	publisher   port.EventPublisher
	scoring     *service.CreditScoringEngine
	metrics     Metrics
	logger      *slog.Logger
}

// NewEvaluateApplicantUseCase wires dependencies.
func NewEvaluateApplicantUseCase(
	evaluations port.EvaluationPersistenceGateway,
	publisher port.EventPublisher,
	scoring *service.CreditScoringEngine,
	metrics Metrics,
	logger *slog.Logger,
) *EvaluateApplicantUseCase {
	return &EvaluateApplicantUseCase{
		evaluations: evaluations,
		publisher:   publisher,
		scoring:     scoring,
		metrics:     metricsOrNoop(metrics),
		logger:      logger,
	}
}

// Execute evaluates the applicant, upserts the result for the loan and
// publishes CreditEvaluated. A repeated evaluation replaces the previous one.
func (uc *EvaluateApplicantUseCase) Execute(ctx context.Context, req dto.EvaluateApplicantRequest) (dto.EvaluationResponse, error) {
	if err := requireLoanID(req.LoanID); err != nil {
		return dto.EvaluationResponse{}, err
	}

	// 1. Validate the profile.
	profile := toProfile(req)
	if err := profile.Validate(); err != nil {
		return dto.EvaluationResponse{}, fmt.Errorf("validate profile: %w", err)
	}

	// 2. Score.
	result := uc.scoring.Evaluate(profile)

	// 3. Persist.
	if err := uc.evaluations.UpsertEvaluation(ctx, req.LoanID, result); err != nil {
		return dto.EvaluationResponse{}, fmt.Errorf("save evaluation: %w", err)
	}

	// 4. Publish domain events.
	evt := event.NewCreditEvaluated(
		req.LoanID, result.Classification().String(), result.Decision().String(),
		result.TotalScore(), result.AppliedInterestRate(), result.MinDownPaymentPct(), result.MaxTerm(),
	)
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		return dto.EvaluationResponse{}, fmt.Errorf("publish events: %w", err)
	}

	uc.metrics.ApplicantEvaluated(ctx, result.Classification().String())
	uc.logger.InfoContext(ctx, "applicant evaluated",
		"loan_id", req.LoanID,
		"total_score", result.TotalScore().String(),
		"classification", result.Classification().String(),
		"decision", result.Decision().String(),
	)

	return toEvaluationResponse(req.LoanID, result), nil
}

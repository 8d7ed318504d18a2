package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bibbank/loanengine/internal/application/dto"
	"github.com/bibbank/loanengine/internal/domain/event"
	"github.com/bibbank/loanengine/internal/domain/port"
	"github.com/bibbank/loanengine/internal/domain/service"
)

// ErrApprovalRefused is returned when a stored evaluation does not allow the
// requested loan to be approved.
var ErrApprovalRefused = errors.New("approval refused")

// ApproveLoanUseCase turns an evaluated loan into a scheduled one, priced at
// the interest rate its classification grants.
type ApproveLoanUseCase struct {
	evaluations port.EvaluationPersistenceGateway
	schedules   port.SchedulePersistenceGateway
	publisher   port.EventPublisher
	engine      *service.AmortizationEngine
	metrics     Metrics
	logger      *slog.Logger
}

// NewApproveLoanUseCase wires dependencies.
func NewApproveLoanUseCase(
	evaluations port.EvaluationPersistenceGateway,
	schedules port.SchedulePersistenceGateway,
	publisher port.EventPublisher,
	engine *service.AmortizationEngine,
	metrics Metrics,
	logger *slog.Logger,
) *ApproveLoanUseCase {
	return &ApproveLoanUseCase{
		evaluations: evaluations,
		schedules:   schedules,
		publisher:   publisher,
		engine:      engine,
		metrics:     metricsOrNoop(metrics),
		logger:      logger,
	}
}

// Execute checks the request against the stored evaluation's decision and
// conditions, then generates and saves the schedule at the applied rate.
func (uc *ApproveLoanUseCase) Execute(ctx context.Context, req dto.ApproveLoanRequest) (dto.ApproveLoanResponse, error) {
	if err := requireLoanID(req.LoanID); err != nil {
		return dto.ApproveLoanResponse{}, err
	}

	// 1. Load the evaluation.
	result, err := uc.evaluations.FindEvaluation(ctx, req.LoanID)
	if err != nil {
		return dto.ApproveLoanResponse{}, fmt.Errorf("load evaluation: %w", err)
	}

	// 2. Enforce decision and conditions.
	if !result.Decision().AllowsDisbursement() {
		return dto.ApproveLoanResponse{}, fmt.Errorf("%w: decision is %s", ErrApprovalRefused, result.Decision())
	}
	if maxTerm := result.MaxTerm(); maxTerm > 0 && req.TermCount > maxTerm {
		return dto.ApproveLoanResponse{}, fmt.Errorf("%w: term %d exceeds max term %d", ErrApprovalRefused, req.TermCount, maxTerm)
	}
	if minDown := result.MinDownPaymentPct(); req.DownPaymentPct.LessThan(minDown) {
		return dto.ApproveLoanResponse{}, fmt.Errorf("%w: down payment %s%% below minimum %s%%",
			ErrApprovalRefused, req.DownPaymentPct, minDown)
	}

	// 3. Build terms at the applied rate.
	terms, err := buildTerms(req.Principal, result.AppliedInterestRate(), req.TermCount, req.Frequency, req.Method, req.FirstDueDate)
	if err != nil {
		return dto.ApproveLoanResponse{}, fmt.Errorf("build terms: %w", err)
	}

	approved := event.NewLoanApproved(
		req.LoanID, result.Classification().String(), terms.Principal(), terms.AnnualRate(), terms.TermCount(),
	)
	schedule, err := scheduleLoan(ctx, uc.engine, uc.schedules, uc.publisher, uc.metrics, uc.logger, req.LoanID, terms, approved)
	if err != nil {
		return dto.ApproveLoanResponse{}, err
	}

	uc.logger.InfoContext(ctx, "loan approved",
		"loan_id", req.LoanID,
		"classification", result.Classification().String(),
		"annual_rate", terms.AnnualRate().String(),
	)

	return dto.ApproveLoanResponse{
		Classification: result.Classification().String(),
		Decision:       result.Decision().String(),
		Schedule:       schedule,
	}, nil
}

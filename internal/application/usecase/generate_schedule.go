package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/loanengine/internal/application/dto"
	"github.com/bibbank/loanengine/internal/domain/event"
	"github.com/bibbank/loanengine/internal/domain/model"
	"github.com/bibbank/loanengine/internal/domain/port"
	"github.com/bibbank/loanengine/internal/domain/service"
)

// GenerateScheduleUseCase amortizes a loan and persists its schedule.
type GenerateScheduleUseCase struct {
	schedules port.SchedulePersistenceGateway
	publisher port.EventPublisher
	engine    *service.AmortizationEngine
	metrics   Metrics
	logger    *slog.Logger
}

// NewGenerateScheduleUseCase wires dependencies.
func NewGenerateScheduleUseCase(
	schedules port.SchedulePersistenceGateway,
	publisher port.EventPublisher,
	engine *service.AmortizationEngine,
	metrics Metrics,
	logger *slog.Logger,
) *GenerateScheduleUseCase {
	return &GenerateScheduleUseCase{
		schedules: schedules,
		publisher: publisher,
		engine:    engine,
		metrics:   metricsOrNoop(metrics),
		logger:    logger,
	}
}

// Execute validates the terms, generates the schedule, saves it atomically
// and publishes ScheduleGenerated.
func (uc *GenerateScheduleUseCase) Execute(ctx context.Context, req dto.GenerateScheduleRequest) (dto.ScheduleResponse, error) {
	if err := requireLoanID(req.LoanID); err != nil {
		return dto.ScheduleResponse{}, err
	}

	// 1. Build validated terms.
	terms, err := buildTerms(req.Principal, req.AnnualRate, req.TermCount, req.Frequency, req.Method, req.FirstDueDate)
	if err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("build terms: %w", err)
	}

	return scheduleLoan(ctx, uc.engine, uc.schedules, uc.publisher, uc.metrics, uc.logger, req.LoanID, terms)
}

// scheduleLoan is shared by schedule generation and approval. Extra events
// are published together with ScheduleGenerated.
func scheduleLoan(
	ctx context.Context,
	engine *service.AmortizationEngine,
	schedules port.SchedulePersistenceGateway,
	publisher port.EventPublisher,
	metrics Metrics,
	logger *slog.Logger,
	loanID string,
	terms model.LoanTerms,
	extra ...event.DomainEvent,
) (dto.ScheduleResponse, error) {
	// 2. Generate the schedule.
	installments, err := engine.Generate(terms)
	if err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("generate schedule: %w", err)
	}

	// 3. Persist atomically.
	if err := schedules.SaveInstallments(ctx, loanID, installments); err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("save installments: %w", err)
	}

	// 4. Publish domain events.
	totals := model.ScheduleTotals(installments)
	generated := event.NewScheduleGenerated(
		loanID, terms.Method().String(), terms.Frequency().String(),
		terms.Principal(), terms.AnnualRate(), totals.TotalInterest, totals.TotalPayable,
		totals.Installments, terms.FirstDueDate(),
	)
	evts := append([]event.DomainEvent{generated}, extra...)
	if err := publisher.Publish(ctx, evts...); err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("publish events: %w", err)
	}

	metrics.ScheduleGenerated(ctx, terms.Method().String(), len(installments))
	logger.InfoContext(ctx, "schedule generated",
		"loan_id", loanID,
		"method", terms.Method().String(),
		"frequency", terms.Frequency().String(),
		"installments", len(installments),
		"total_interest", totals.TotalInterest.String(),
	)

	return toScheduleResponse(loanID, terms, installments), nil
}

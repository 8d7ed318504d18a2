package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/bibbank/loanengine/internal/application/dto"
	"github.com/bibbank/loanengine/internal/domain/event"
	"github.com/bibbank/loanengine/internal/domain/model"
	"github.com/bibbank/loanengine/internal/domain/port"
	"github.com/bibbank/loanengine/internal/domain/service"
)

// DefaultMoraWorkers bounds concurrent loans when no worker count is given.
const DefaultMoraWorkers = 4

// RecalculateMoraUseCase is the batch driver around MoraCalculator. Each loan
// is loaded, recomputed and saved on its own, so a cancelled or failed run
// never leaves a loan half-updated and can simply be run again.
type RecalculateMoraUseCase struct {
	store      port.InstallmentStore
	publisher  port.EventPublisher
	calculator *service.MoraCalculator
	metrics    Metrics
	logger     *slog.Logger
	workers    int
}

// NewRecalculateMoraUseCase wires dependencies. workers <= 0 selects
// DefaultMoraWorkers.
func NewRecalculateMoraUseCase(
	store port.InstallmentStore,
	publisher port.EventPublisher,
	calculator *service.MoraCalculator,
	metrics Metrics,
	logger *slog.Logger,
	workers int,
) *RecalculateMoraUseCase {
	if workers <= 0 {
		workers = DefaultMoraWorkers
	}
	return &RecalculateMoraUseCase{
		store:      store,
		publisher:  publisher,
		calculator: calculator,
		metrics:    metricsOrNoop(metrics),
		logger:     logger,
		workers:    workers,
	}
}

// Execute runs one pass over every loan with open installments.
//
// Per-loan failures do not stop the batch; they are reported in the response
// and joined into the returned error. Cancellation is checked before each
// loan is started: loans already in flight complete, the rest are left for
// the next run and ctx.Err() is included in the returned error.
func (uc *RecalculateMoraUseCase) Execute(ctx context.Context, req dto.MoraBatchRequest) (dto.MoraBatchResponse, error) {
	if req.DailyRate.IsNegative() {
		return dto.MoraBatchResponse{}, model.NewValidationError("daily_mora_rate", model.ErrNegativeMoraRate, req.DailyRate.String())
	}
	if req.AsOf.IsZero() {
		req.AsOf = time.Now().UTC()
	}

	started := time.Now()
	loanIDs, err := uc.store.ListLoansWithOpenInstallments(ctx)
	if err != nil {
		return dto.MoraBatchResponse{}, fmt.Errorf("list loans: %w", err)
	}

	resp := dto.MoraBatchResponse{
		AsOf:       req.AsOf,
		TotalDelta: decimal.Zero,
		LoansSeen:  len(loanIDs),
	}
	var (
		mu   sync.Mutex
		errs []error
	)

	g := new(errgroup.Group)
	g.SetLimit(uc.workers)
	for _, loanID := range loanIDs {
		if ctx.Err() != nil {
			resp.Cancelled = true
			break
		}
		g.Go(func() error {
			summary, err := uc.processLoan(ctx, loanID, req)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("loan %s: %w", loanID, err))
				resp.Failures = append(resp.Failures, dto.MoraFailure{LoanID: loanID, Error: err.Error()})
				uc.metrics.MoraLoanProcessed(ctx, 0, true)
				return nil
			}
			if summary.Updated == 0 {
				resp.LoansUnchanged++
			} else {
				resp.LoansUpdated++
				resp.InstallmentsUpdated += summary.Updated
				resp.TotalDelta = resp.TotalDelta.Add(summary.Delta)
			}
			uc.metrics.MoraLoanProcessed(ctx, summary.Updated, false)
			return nil
		})
	}
	_ = g.Wait()

	if resp.Cancelled {
		errs = append(errs, ctx.Err())
	}
	elapsed := time.Since(started)
	uc.metrics.MoraBatchCompleted(ctx, elapsed)
	uc.logger.InfoContext(ctx, "mora batch finished",
		"as_of", req.AsOf.Format(time.DateOnly),
		"loans_seen", resp.LoansSeen,
		"loans_updated", resp.LoansUpdated,
		"loans_failed", len(resp.Failures),
		"installments_updated", resp.InstallmentsUpdated,
		"total_delta", resp.TotalDelta.String(),
		"cancelled", resp.Cancelled,
		"elapsed", elapsed,
	)

	return resp, errors.Join(errs...)
}

func (uc *RecalculateMoraUseCase) processLoan(ctx context.Context, loanID string, req dto.MoraBatchRequest) (model.MoraRecalcSummary, error) {
	// 1. Load the persisted installments.
	installments, err := uc.store.LoadInstallments(ctx, loanID)
	if err != nil {
		return model.MoraRecalcSummary{}, fmt.Errorf("load installments: %w", err)
	}

	// 2. Recompute.
	updated, summary, err := uc.calculator.Recompute(installments, req.DailyRate, req.AsOf)
	if err != nil {
		return model.MoraRecalcSummary{}, fmt.Errorf("recompute mora: %w", err)
	}
	if summary.Updated == 0 {
		return summary, nil
	}

	// 3. Persist installments and the audit row atomically.
	if err := uc.store.SaveMora(ctx, loanID, updated, summary); err != nil {
		return model.MoraRecalcSummary{}, fmt.Errorf("save mora: %w", err)
	}

	// 4. Publish domain events.
	evt := event.NewMoraRecalculated(loanID, summary.AsOf, summary.TotalMoraBefore, summary.TotalMoraAfter, summary.Delta, summary.Updated)
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		return model.MoraRecalcSummary{}, fmt.Errorf("publish events: %w", err)
	}

	uc.logger.DebugContext(ctx, "mora recalculated",
		"loan_id", loanID,
		"installments_updated", summary.Updated,
		"delta", summary.Delta.String(),
	)
	return summary, nil
}

package grpc

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/loanengine/internal/application/dto"
	"github.com/bibbank/loanengine/internal/application/usecase"
	"github.com/bibbank/loanengine/internal/domain/model"
	"github.com/bibbank/loanengine/internal/domain/port"
)

// Use-case surfaces the handler depends on. Satisfied by the usecase types.
type (
	ScheduleGenerator interface {
		Execute(ctx context.Context, req dto.GenerateScheduleRequest) (dto.ScheduleResponse, error)
	}
	ApplicantEvaluator interface {
		Execute(ctx context.Context, req dto.EvaluateApplicantRequest) (dto.EvaluationResponse, error)
	}
	LoanApprover interface {
		Execute(ctx context.Context, req dto.ApproveLoanRequest) (dto.ApproveLoanResponse, error)
	}
	MoraRecalculator interface {
		Execute(ctx context.Context, req dto.MoraBatchRequest) (dto.MoraBatchResponse, error)
	}
)

// LoanEngineHandler implements LoanEngineServiceServer on top of the use cases.
type LoanEngineHandler struct {
	UnimplementedLoanEngineServiceServer

	generate ScheduleGenerator
	evaluate ApplicantEvaluator
	approve  LoanApprover
	mora     MoraRecalculator
	logger   *slog.Logger

	defaultMoraRate decimal.Decimal
}

// NewLoanEngineHandler creates a handler with all use-case dependencies.
func NewLoanEngineHandler(
	generate ScheduleGenerator,
	evaluate ApplicantEvaluator,
	approve LoanApprover,
	mora MoraRecalculator,
	logger *slog.Logger,
) *LoanEngineHandler {
	return &LoanEngineHandler{
		generate: generate,
		evaluate: evaluate,
		approve:  approve,
		mora:     mora,
		logger:   logger,
	}
}

// WithDefaultMoraRate sets the daily rate used when a RecalculateMora
// request leaves daily_rate unset.
func (h *LoanEngineHandler) WithDefaultMoraRate(rate decimal.Decimal) *LoanEngineHandler {
	h.defaultMoraRate = rate
	return h
}

// GenerateSchedule amortizes the requested terms and stores the schedule.
func (h *LoanEngineHandler) GenerateSchedule(ctx context.Context, req *dto.GenerateScheduleRequest) (*dto.ScheduleResponse, error) {
	resp, err := h.generate.Execute(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

// EvaluateApplicant scores the applicant and stores the evaluation.
func (h *LoanEngineHandler) EvaluateApplicant(ctx context.Context, req *dto.EvaluateApplicantRequest) (*dto.EvaluationResponse, error) {
	resp, err := h.evaluate.Execute(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

// ApproveLoan approves an evaluated loan and schedules it at the granted rate.
func (h *LoanEngineHandler) ApproveLoan(ctx context.Context, req *dto.ApproveLoanRequest) (*dto.ApproveLoanResponse, error) {
	resp, err := h.approve.Execute(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

// RecalculateMora runs one mora batch. Partial failures and cancellation are
// reported in the response body. The call fails when no loan was processed
// successfully and the batch was not cancelled.
func (h *LoanEngineHandler) RecalculateMora(ctx context.Context, req *dto.MoraBatchRequest) (*dto.MoraBatchResponse, error) {
	batch := *req
	if batch.DailyRate.IsZero() {
		batch.DailyRate = h.defaultMoraRate
	}
	resp, err := h.mora.Execute(ctx, batch)
	if err != nil {
		if resp.LoansUpdated+resp.LoansUnchanged == 0 && !resp.Cancelled {
			return nil, toStatus(err)
		}
		h.logger.WarnContext(ctx, "mora batch finished with errors",
			"failures", len(resp.Failures),
			"cancelled", resp.Cancelled,
			"error", err,
		)
	}
	return &resp, nil
}

// toStatus maps application errors onto gRPC status codes.
func toStatus(err error) error {
	var (
		validation *model.ValidationError
		storage    *port.StorageError
	)
	switch {
	case errors.As(err, &validation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, port.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, usecase.ErrApprovalRefused):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.As(err, &storage):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

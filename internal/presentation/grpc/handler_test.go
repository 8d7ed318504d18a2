package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/bibbank/loanengine/internal/application/dto"
	"github.com/bibbank/loanengine/internal/application/usecase"
	"github.com/bibbank/loanengine/internal/domain/model"
	"github.com/bibbank/loanengine/internal/domain/port"
)

type generateFunc func(context.Context, dto.GenerateScheduleRequest) (dto.ScheduleResponse, error)

func (f generateFunc) Execute(ctx context.Context, req dto.GenerateScheduleRequest) (dto.ScheduleResponse, error) {
	return f(ctx, req)
}

type evaluateFunc func(context.Context, dto.EvaluateApplicantRequest) (dto.EvaluationResponse, error)

func (f evaluateFunc) Execute(ctx context.Context, req dto.EvaluateApplicantRequest) (dto.EvaluationResponse, error) {
	return f(ctx, req)
}

type approveFunc func(context.Context, dto.ApproveLoanRequest) (dto.ApproveLoanResponse, error)

func (f approveFunc) Execute(ctx context.Context, req dto.ApproveLoanRequest) (dto.ApproveLoanResponse, error) {
	return f(ctx, req)
}

type moraFunc func(context.Context, dto.MoraBatchRequest) (dto.MoraBatchResponse, error)

func (f moraFunc) Execute(ctx context.Context, req dto.MoraBatchRequest) (dto.MoraBatchResponse, error) {
	return f(ctx, req)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// dial starts h on an in-memory listener and returns a client connection
// that speaks the JSON codec.
func dial(t *testing.T, h *LoanEngineHandler) *grpclib.ClientConn {
	t.Helper()

	srv, err := NewServer(h, discardLogger(), ServerOptions{})
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.ServeListener(lis) }()
	t.Cleanup(srv.GracefulStop)

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
		grpclib.WithDefaultCallOptions(grpclib.CallContentSubtype("json")),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func method(name string) string { return "/" + ServiceName + "/" + name }

func TestGenerateScheduleOverGRPC(t *testing.T) {
	var got dto.GenerateScheduleRequest
	h := NewLoanEngineHandler(
		generateFunc(func(_ context.Context, req dto.GenerateScheduleRequest) (dto.ScheduleResponse, error) {
			got = req
			return dto.ScheduleResponse{LoanID: req.LoanID, Method: req.Method, TotalPayable: decimal.RequireFromString("10661.85")}, nil
		}),
		nil, nil, nil, discardLogger(),
	)
	conn := dial(t, h)

	req := &dto.GenerateScheduleRequest{
		LoanID:     "L-1",
		Method:     "FRENCH",
		Frequency:  "MONTHLY",
		Principal:  decimal.NewFromInt(10000),
		AnnualRate: decimal.NewFromInt(12),
		TermCount:  12,
	}
	var resp dto.ScheduleResponse
	require.NoError(t, conn.Invoke(context.Background(), method("GenerateSchedule"), req, &resp))

	assert.Equal(t, "L-1", resp.LoanID)
	assert.True(t, resp.TotalPayable.Equal(decimal.RequireFromString("10661.85")))
	assert.True(t, got.Principal.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, 12, got.TermCount)
}

func TestApproveLoanRefusalMapsToFailedPrecondition(t *testing.T) {
	h := NewLoanEngineHandler(nil, nil,
		approveFunc(func(context.Context, dto.ApproveLoanRequest) (dto.ApproveLoanResponse, error) {
			return dto.ApproveLoanResponse{}, fmt.Errorf("%w: decision is REJECT", usecase.ErrApprovalRefused)
		}),
		nil, discardLogger(),
	)
	conn := dial(t, h)

	var resp dto.ApproveLoanResponse
	err := conn.Invoke(context.Background(), method("ApproveLoan"), &dto.ApproveLoanRequest{LoanID: "L-1"}, &resp)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestPanicMapsToInternal(t *testing.T) {
	h := NewLoanEngineHandler(nil,
		evaluateFunc(func(context.Context, dto.EvaluateApplicantRequest) (dto.EvaluationResponse, error) {
			panic("invariant broken")
		}),
		nil, nil, discardLogger(),
	)
	conn := dial(t, h)

	var resp dto.EvaluationResponse
	err := conn.Invoke(context.Background(), method("EvaluateApplicant"), &dto.EvaluateApplicantRequest{LoanID: "L-1"}, &resp)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestRecalculateMora(t *testing.T) {
	t.Run("per-loan failures are reported in the body", func(t *testing.T) {
		h := NewLoanEngineHandler(nil, nil, nil,
			moraFunc(func(context.Context, dto.MoraBatchRequest) (dto.MoraBatchResponse, error) {
				return dto.MoraBatchResponse{
					LoansSeen:    2,
					LoansUpdated: 1,
					Failures:     []dto.MoraFailure{{LoanID: "L-2", Error: "boom"}},
				}, errors.New("loan L-2: boom")
			}),
			discardLogger(),
		)
		resp, err := h.RecalculateMora(context.Background(), &dto.MoraBatchRequest{})
		require.NoError(t, err)
		assert.Equal(t, 1, resp.LoansUpdated)
		require.Len(t, resp.Failures, 1)
	})

	t.Run("unset daily rate falls back to the configured default", func(t *testing.T) {
		var got dto.MoraBatchRequest
		h := NewLoanEngineHandler(nil, nil, nil,
			moraFunc(func(_ context.Context, req dto.MoraBatchRequest) (dto.MoraBatchResponse, error) {
				got = req
				return dto.MoraBatchResponse{}, nil
			}),
			discardLogger(),
		).WithDefaultMoraRate(decimal.RequireFromString("0.001"))

		_, err := h.RecalculateMora(context.Background(), &dto.MoraBatchRequest{})
		require.NoError(t, err)
		assert.True(t, got.DailyRate.Equal(decimal.RequireFromString("0.001")))

		_, err = h.RecalculateMora(context.Background(), &dto.MoraBatchRequest{DailyRate: decimal.RequireFromString("0.002")})
		require.NoError(t, err)
		assert.True(t, got.DailyRate.Equal(decimal.RequireFromString("0.002")))
	})

	t.Run("batch that never starts fails the call", func(t *testing.T) {
		h := NewLoanEngineHandler(nil, nil, nil,
			moraFunc(func(context.Context, dto.MoraBatchRequest) (dto.MoraBatchResponse, error) {
				return dto.MoraBatchResponse{}, fmt.Errorf("list loans: %w", port.NewStorageError("list open loans", "", errors.New("conn refused")))
			}),
			discardLogger(),
		)
		_, err := h.RecalculateMora(context.Background(), &dto.MoraBatchRequest{})
		assert.Equal(t, codes.Unavailable, status.Code(err))
	})

	t.Run("batch where every loan fails fails the call", func(t *testing.T) {
		h := NewLoanEngineHandler(nil, nil, nil,
			moraFunc(func(context.Context, dto.MoraBatchRequest) (dto.MoraBatchResponse, error) {
				return dto.MoraBatchResponse{
					LoansSeen: 2,
					Failures:  []dto.MoraFailure{{LoanID: "L-1", Error: "save mora"}, {LoanID: "L-2", Error: "save mora"}},
				}, errors.Join(
					fmt.Errorf("loan L-1: %w", port.NewStorageError("save mora", "L-1", errors.New("deadlock detected"))),
					fmt.Errorf("loan L-2: %w", port.NewStorageError("save mora", "L-2", errors.New("deadlock detected"))),
				)
			}),
			discardLogger(),
		)
		resp, err := h.RecalculateMora(context.Background(), &dto.MoraBatchRequest{})
		assert.Nil(t, resp)
		assert.Equal(t, codes.Unavailable, status.Code(err))
	})
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"validation", fmt.Errorf("build terms: %w", model.NewValidationError("principal", model.ErrNonPositivePrincipal, "0")), codes.InvalidArgument},
		{"not found", fmt.Errorf("load evaluation: %w", port.ErrNotFound), codes.NotFound},
		{"refused", fmt.Errorf("%w: term too long", usecase.ErrApprovalRefused), codes.FailedPrecondition},
		{"storage", port.NewStorageError("save installments", "L-1", errors.New("timeout")), codes.Unavailable},
		{"cancelled", fmt.Errorf("publish events: %w", context.Canceled), codes.Canceled},
		{"deadline", context.DeadlineExceeded, codes.DeadlineExceeded},
		{"other", errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status.Code(toStatus(tt.err)))
		})
	}
}

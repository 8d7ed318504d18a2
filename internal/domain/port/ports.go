package port

import (
	"context"
	"errors"
	"fmt"

	"github.com/bibbank/loanengine/internal/domain/event"
	"github.com/bibbank/loanengine/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Persistence ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// SchedulePersistenceGateway stores a generated schedule. SaveInstallments is
// atomic per loan: either the whole schedule replaces the previous one or
// nothing changes.
type SchedulePersistenceGateway interface {
	SaveInstallments(ctx context.Context, loanID string, installments []model.Installment) error
}

// EvaluationPersistenceGateway stores credit evaluations, one per loan.
type EvaluationPersistenceGateway interface {
	UpsertEvaluation(ctx context.Context, loanID string, result model.CreditScoreResult) error
	FindEvaluation(ctx context.Context, loanID string) (model.CreditScoreResult, error)
}

// InstallmentStore is what the mora batch reads from and writes back to.
// SaveMora persists recomputed installments and the audit summary in one
// transaction.
type InstallmentStore interface {
	ListLoansWithOpenInstallments(ctx context.Context) ([]string, error)
	LoadInstallments(ctx context.Context, loanID string) ([]model.Installment, error)
	SaveMora(ctx context.Context, loanID string, installments []model.Installment, summary model.MoraRecalcSummary) error
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}

// ---------------------------------------------------------------------------
// Storage errors
// ---------------------------------------------------------------------------

// ErrNotFound is wrapped by gateways when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConcurrentUpdate is wrapped by gateways when a conditional write finds
// the stored record changed since it was read.
var ErrConcurrentUpdate = errors.New("record changed concurrently")

// StorageError is returned by gateways for any persistence failure. Use cases
// propagate it unchanged.
type StorageError struct {
	Err    error
	Op     string
	LoanID string
}

// NewStorageError wraps err for operation op on loanID.
func NewStorageError(op, loanID string, err error) *StorageError {
	return &StorageError{Op: op, LoanID: loanID, Err: err}
}

func (e *StorageError) Error() string {
	if e.LoanID == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s loan %s: %v", e.Op, e.LoanID, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

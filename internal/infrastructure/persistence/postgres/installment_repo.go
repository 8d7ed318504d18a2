package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bibbank/loanengine/internal/domain/model"
	"github.com/bibbank/loanengine/internal/domain/port"
	"github.com/bibbank/loanengine/internal/domain/valueobject"
	pgutil "github.com/bibbank/loanengine/pkg/postgres"
)

// InstallmentRepo implements port.InstallmentStore for the mora batch.
type InstallmentRepo struct {
	db DB
}

// NewInstallmentRepo creates a PostgreSQL-backed installment store.
func NewInstallmentRepo(db DB) *InstallmentRepo {
	return &InstallmentRepo{db: db}
}

// ListLoansWithOpenInstallments returns every loan with at least one
// installment not yet PAID, ordered by loan ID.
func (r *InstallmentRepo) ListLoansWithOpenInstallments(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT loan_id
		FROM loan_installments
		WHERE status <> 'PAID'
		ORDER BY loan_id
	`)
	if err != nil {
		return nil, port.NewStorageError("list open loans", "", err)
	}
	loanIDs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, port.NewStorageError("list open loans", "", err)
	}
	return loanIDs, nil
}

// LoadInstallments returns the loan's schedule ordered by sequence number.
func (r *InstallmentRepo) LoadInstallments(ctx context.Context, loanID string) ([]model.Installment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT sequence_number, due_date,
		       principal_component, interest_component, scheduled_total,
		       remaining_balance_after, paid_amount, status,
		       accrued_mora, applied_daily_rate, days_overdue
		FROM loan_installments
		WHERE loan_id = $1
		ORDER BY sequence_number
	`, loanID)
	if err != nil {
		return nil, port.NewStorageError("load installments", loanID, err)
	}
	defer rows.Close()

	var installments []model.Installment
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return nil, port.NewStorageError("load installments", loanID, err)
		}
		installments = append(installments, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, port.NewStorageError("load installments", loanID, err)
	}
	return installments, nil
}

// SaveMora writes back the mora state and status of every installment and
// appends the run summary to mora_runs, all in one transaction.
//
// Each row is only updated while its paid amount and status still match what
// the calculator saw. If a payment landed after LoadInstallments, nothing is
// written and the error wraps port.ErrConcurrentUpdate.
func (r *InstallmentRepo) SaveMora(ctx context.Context, loanID string, installments []model.Installment, summary model.MoraRecalcSummary) error {
	err := pgutil.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, inst := range installments {
			batch.Queue(`
				UPDATE loan_installments SET
					status             = $3,
					accrued_mora       = $4,
					applied_daily_rate = $5,
					days_overdue       = $6,
					updated_at         = now()
				WHERE loan_id = $1 AND sequence_number = $2
				  AND paid_amount = $7::numeric
				  AND status = ANY($8::text[])`,
				loanID, inst.SequenceNumber, inst.Status.String(),
				inst.Mora.AccruedMora, inst.Mora.AppliedDailyRate, inst.Mora.DaysOverdue,
				inst.PaidAmount, priorStatuses(inst.Status),
			)
		}
		batch.Queue(`
			INSERT INTO mora_runs (loan_id, as_of, total_mora_before, total_mora_after, delta, updated_count)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			loanID, summary.AsOf, summary.TotalMoraBefore, summary.TotalMoraAfter, summary.Delta, summary.Updated,
		)

		results := tx.SendBatch(ctx, batch)
		for _, inst := range installments {
			tag, err := results.Exec()
			if err != nil {
				_ = results.Close()
				return fmt.Errorf("update installment %d: %w", inst.SequenceNumber, err)
			}
			if tag.RowsAffected() != 1 {
				_ = results.Close()
				return fmt.Errorf("installment %d: %w", inst.SequenceNumber, port.ErrConcurrentUpdate)
			}
		}
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("insert mora run: %w", err)
		}
		return results.Close()
	})
	if err != nil {
		return port.NewStorageError("save mora", loanID, err)
	}
	return nil
}

// priorStatuses lists the stored statuses a recomputed status may replace.
// The calculator only ever promotes PENDING to LATE.
func priorStatuses(next valueobject.InstallmentStatus) []string {
	if next.Equal(valueobject.InstallmentStatusLate) {
		return []string{next.String(), valueobject.InstallmentStatusPending.String()}
	}
	return []string{next.String()}
}

type scannable interface {
	Scan(dest ...any) error
}

func scanInstallment(s scannable) (model.Installment, error) {
	var (
		inst      model.Installment
		statusStr string
	)
	err := s.Scan(
		&inst.SequenceNumber, &inst.DueDate,
		&inst.PrincipalComponent, &inst.InterestComponent, &inst.ScheduledTotal,
		&inst.RemainingBalanceAfter, &inst.PaidAmount, &statusStr,
		&inst.Mora.AccruedMora, &inst.Mora.AppliedDailyRate, &inst.Mora.DaysOverdue,
	)
	if err != nil {
		return model.Installment{}, fmt.Errorf("scan installment: %w", err)
	}
	status, err := valueobject.NewInstallmentStatus(statusStr)
	if err != nil {
		return model.Installment{}, fmt.Errorf("parse installment status: %w", err)
	}
	inst.Status = status
	return inst, nil
}

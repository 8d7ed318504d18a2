package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bibbank/loanengine/internal/domain/model"
	"github.com/bibbank/loanengine/internal/domain/port"
	pgutil "github.com/bibbank/loanengine/pkg/postgres"
)

// ScheduleRepo implements port.SchedulePersistenceGateway.
type ScheduleRepo struct {
	db DB
}

// NewScheduleRepo creates a PostgreSQL-backed schedule repository.
func NewScheduleRepo(db DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

// SaveInstallments replaces the loan's schedule in a single transaction.
func (r *ScheduleRepo) SaveInstallments(ctx context.Context, loanID string, installments []model.Installment) error {
	err := pgutil.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM loan_installments WHERE loan_id = $1`, loanID); err != nil {
			return fmt.Errorf("delete previous schedule: %w", err)
		}

		batch := &pgx.Batch{}
		for _, inst := range installments {
			batch.Queue(`
				INSERT INTO loan_installments (
					loan_id, sequence_number, due_date,
					principal_component, interest_component, scheduled_total,
					remaining_balance_after, paid_amount, status,
					accrued_mora, applied_daily_rate, days_overdue
				) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
				loanID, inst.SequenceNumber, inst.DueDate,
				inst.PrincipalComponent, inst.InterestComponent, inst.ScheduledTotal,
				inst.RemainingBalanceAfter, inst.PaidAmount, inst.Status.String(),
				inst.Mora.AccruedMora, inst.Mora.AppliedDailyRate, inst.Mora.DaysOverdue,
			)
		}
		return execBatch(ctx, tx, batch, "insert installment")
	})
	if err != nil {
		return port.NewStorageError("save installments", loanID, err)
	}
	return nil
}

// execBatch sends batch on q and checks every queued statement.
func execBatch(ctx context.Context, q pgutil.Querier, batch *pgx.Batch, what string) error {
	results := q.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("%s %d: %w", what, i+1, err)
		}
	}
	return results.Close()
}

//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/loanengine/internal/domain/model"
	"github.com/bibbank/loanengine/internal/domain/port"
	"github.com/bibbank/loanengine/internal/domain/service"
	"github.com/bibbank/loanengine/internal/domain/valueobject"
	pgutil "github.com/bibbank/loanengine/pkg/postgres"
	"github.com/bibbank/loanengine/pkg/testutil"
)

func setupDB(t *testing.T) *testutil.PostgresContainer {
	t.Helper()
	pc := testutil.NewPostgresContainer(context.Background(), t)
	pc.Migrate(t, Migrations, MigrationsDir)
	return pc
}

func generated(t *testing.T) []model.Installment {
	t.Helper()
	terms, err := model.NewLoanTerms(
		decimal.NewFromInt(10000), decimal.NewFromInt(12), 12,
		valueobject.FrequencyMonthly, valueobject.MethodFrench,
		time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	installments, err := service.NewAmortizationEngine().Generate(terms)
	require.NoError(t, err)
	return installments
}

func TestRepositoriesIntegration(t *testing.T) {
	pc := setupDB(t)
	ctx := context.Background()

	schedules := NewScheduleRepo(pc.Pool)
	installments := NewInstallmentRepo(pc.Pool)
	evaluations := NewEvaluationRepo(pc.Pool)

	t.Run("schedule round trip and replace", func(t *testing.T) {
		pc.Truncate(t, "loan_installments", "mora_runs")
		schedule := generated(t)

		require.NoError(t, schedules.SaveInstallments(ctx, "L-1", schedule))
		require.NoError(t, schedules.SaveInstallments(ctx, "L-1", schedule))

		loaded, err := installments.LoadInstallments(ctx, "L-1")
		require.NoError(t, err)
		require.Len(t, loaded, 12)
		for i := range schedule {
			assert.Equal(t, schedule[i].SequenceNumber, loaded[i].SequenceNumber)
			assert.True(t, schedule[i].DueDate.Equal(loaded[i].DueDate), "due date %d", i+1)
			testutil.AssertDecimal(t, schedule[i].ScheduledTotal.String(), loaded[i].ScheduledTotal)
			testutil.AssertDecimal(t, schedule[i].RemainingBalanceAfter.String(), loaded[i].RemainingBalanceAfter)
			assert.True(t, loaded[i].Status.Equal(valueobject.InstallmentStatusPending))
		}
	})

	t.Run("open loans and mora write back", func(t *testing.T) {
		pc.Truncate(t, "loan_installments", "mora_runs")
		schedule := generated(t)
		require.NoError(t, schedules.SaveInstallments(ctx, "L-2", schedule))

		paid := generated(t)
		for i := range paid {
			paid[i].Status = valueobject.InstallmentStatusPaid
			paid[i].PaidAmount = paid[i].ScheduledTotal
		}
		require.NoError(t, schedules.SaveInstallments(ctx, "L-3", paid))

		open, err := installments.ListLoansWithOpenInstallments(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"L-2"}, open)

		schedule[0].Status = valueobject.InstallmentStatusLate
		schedule[0].Mora = model.MoraState{
			AccruedMora:      decimal.RequireFromString("15.69"),
			AppliedDailyRate: decimal.RequireFromString("0.001"),
			DaysOverdue:      17,
		}
		summary := model.MoraRecalcSummary{
			AsOf:            time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			TotalMoraBefore: decimal.Zero,
			TotalMoraAfter:  decimal.RequireFromString("15.69"),
			Delta:           decimal.RequireFromString("15.69"),
			Updated:         1,
		}
		require.NoError(t, installments.SaveMora(ctx, "L-2", schedule, summary))

		loaded, err := installments.LoadInstallments(ctx, "L-2")
		require.NoError(t, err)
		assert.True(t, loaded[0].Status.Equal(valueobject.InstallmentStatusLate))
		assert.Equal(t, 17, loaded[0].Mora.DaysOverdue)
		testutil.AssertDecimal(t, "15.69", loaded[0].Mora.AccruedMora)
		testutil.AssertDecimal(t, "0.001", loaded[0].Mora.AppliedDailyRate)

		var runs int
		require.NoError(t, pc.Pool.QueryRow(ctx, `SELECT count(*) FROM mora_runs WHERE loan_id = 'L-2'`).Scan(&runs))
		assert.Equal(t, 1, runs)
	})

	t.Run("mora write back loses to a concurrent payment", func(t *testing.T) {
		pc.Truncate(t, "loan_installments", "mora_runs")
		require.NoError(t, schedules.SaveInstallments(ctx, "L-4", generated(t)))

		loaded, err := installments.LoadInstallments(ctx, "L-4")
		require.NoError(t, err)

		// A payment settles installment 1 after the batch read it.
		_, err = pc.Pool.Exec(ctx, `
			UPDATE loan_installments SET status = 'PAID', paid_amount = scheduled_total
			WHERE loan_id = 'L-4' AND sequence_number = 1`)
		require.NoError(t, err)

		loaded[0].Status = valueobject.InstallmentStatusLate
		loaded[0].Mora = model.MoraState{
			AccruedMora:      decimal.RequireFromString("8.88"),
			AppliedDailyRate: decimal.RequireFromString("0.001"),
			DaysOverdue:      10,
		}
		err = installments.SaveMora(ctx, "L-4", loaded, model.MoraRecalcSummary{
			AsOf:            time.Date(2025, 1, 25, 0, 0, 0, 0, time.UTC),
			TotalMoraBefore: decimal.Zero,
			TotalMoraAfter:  decimal.RequireFromString("8.88"),
			Delta:           decimal.RequireFromString("8.88"),
			Updated:         1,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, port.ErrConcurrentUpdate)

		after, err := installments.LoadInstallments(ctx, "L-4")
		require.NoError(t, err)
		assert.True(t, after[0].Status.Equal(valueobject.InstallmentStatusPaid))
		assert.True(t, after[0].Mora.AccruedMora.IsZero())

		var runs int
		require.NoError(t, pc.Pool.QueryRow(ctx, `SELECT count(*) FROM mora_runs WHERE loan_id = 'L-4'`).Scan(&runs))
		assert.Zero(t, runs)
	})

	t.Run("evaluation upsert and lookup", func(t *testing.T) {
		pc.Truncate(t, "credit_evaluations")

		_, err := evaluations.FindEvaluation(ctx, "L-9")
		assert.ErrorIs(t, err, port.ErrNotFound)

		criteria := []model.CriterionScore{
			{Name: "capacity_to_pay", Descriptor: "debt burden 0.35", Points: decimal.RequireFromString("18.75"), MaxWeight: decimal.NewFromInt(25)},
		}
		first := model.NewCreditScoreResult(criteria, decimal.NewFromInt(45), valueobject.RiskHigh, valueobject.DecisionManualReview,
			model.ApprovalConditions{InterestRate: decimal.NewFromInt(28), MinDownPaymentPct: decimal.NewFromInt(25), MaxTerm: 24})
		second := model.NewCreditScoreResult(criteria, decimal.NewFromInt(85), valueobject.RiskLow, valueobject.DecisionApprove,
			model.ApprovalConditions{InterestRate: decimal.NewFromInt(14), MaxTerm: 60})

		require.NoError(t, evaluations.UpsertEvaluation(ctx, "L-9", first))
		require.NoError(t, evaluations.UpsertEvaluation(ctx, "L-9", second))

		got, err := evaluations.FindEvaluation(ctx, "L-9")
		require.NoError(t, err)
		assert.True(t, got.Classification().Equal(valueobject.RiskLow))
		assert.True(t, got.Decision().Equal(valueobject.DecisionApprove))
		testutil.AssertDecimal(t, "85", got.TotalScore())
		testutil.AssertDecimal(t, "14", got.AppliedInterestRate())
		assert.Equal(t, 60, got.MaxTerm())
		require.Len(t, got.Criteria(), 1)
		testutil.AssertDecimal(t, "18.75", got.Criteria()[0].Points)
	})

	t.Run("migrations roll back and reapply", func(t *testing.T) {
		require.NoError(t, pgutil.RunMigrationsDown(pc.DSN, Migrations, MigrationsDir))

		var exists bool
		require.NoError(t, pc.Pool.QueryRow(ctx, `SELECT to_regclass('loan_installments') IS NOT NULL`).Scan(&exists))
		assert.False(t, exists)

		require.NoError(t, Migrate(pc.DSN))
		require.NoError(t, pc.Pool.QueryRow(ctx, `SELECT to_regclass('loan_installments') IS NOT NULL`).Scan(&exists))
		assert.True(t, exists)
	})
}

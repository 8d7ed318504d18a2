package valueobject_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/loanengine/internal/domain/valueobject"
)

func TestFrequency_PeriodsPerYear(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"WEEKLY", 52},
		{"BIWEEKLY", 24},
		{"MONTHLY", 12},
		{"BIMONTHLY", 6},
		{"QUARTERLY", 4},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			f, err := valueobject.NewFrequency(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.PeriodsPerYear())
			assert.Equal(t, tt.raw, f.String())
		})
	}

	_, err := valueobject.NewFrequency("DAILY")
	assert.Error(t, err)
	assert.True(t, valueobject.Frequency{}.IsZero())
}

func TestFrequency_DueDate(t *testing.T) {
	first := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, first, valueobject.FrequencyMonthly.DueDate(first, 1))
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), valueobject.FrequencyMonthly.DueDate(first, 2))
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), valueobject.FrequencyMonthly.DueDate(first, 3))
	assert.Equal(t, time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), valueobject.FrequencyMonthly.DueDate(first, 4))
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), valueobject.FrequencyBimonthly.DueDate(first, 2))
	assert.Equal(t, time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), valueobject.FrequencyQuarterly.DueDate(first, 2))
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), valueobject.FrequencyQuarterly.DueDate(first, 5))
	assert.Equal(t, time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC), valueobject.FrequencyWeekly.DueDate(first, 3))
	assert.Equal(t, time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC), valueobject.FrequencyBiweekly.DueDate(first, 2))
}

func TestAmortizationMethod(t *testing.T) {
	for _, raw := range []string{"FRENCH", "GERMAN", "AMERICAN"} {
		m, err := valueobject.NewAmortizationMethod(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, m.String())
	}
	_, err := valueobject.NewAmortizationMethod("BULLET")
	assert.Error(t, err)
	assert.True(t, valueobject.MethodFrench.Equal(valueobject.MethodFrench))
	assert.False(t, valueobject.MethodFrench.Equal(valueobject.MethodGerman))
}

func TestInstallmentStatus_AccruesMora(t *testing.T) {
	assert.True(t, valueobject.InstallmentStatusLate.AccruesMora())
	assert.True(t, valueobject.InstallmentStatusPartial.AccruesMora())
	assert.False(t, valueobject.InstallmentStatusPending.AccruesMora())
	assert.False(t, valueobject.InstallmentStatusPaid.AccruesMora())

	s, err := valueobject.NewInstallmentStatus("PARTIAL")
	require.NoError(t, err)
	assert.True(t, s.Equal(valueobject.InstallmentStatusPartial))
	_, err = valueobject.NewInstallmentStatus("OVERDUE")
	assert.Error(t, err)
}

func TestRiskClassificationAndDecision(t *testing.T) {
	c, err := valueobject.NewRiskClassification("HIGH_RISK")
	require.NoError(t, err)
	assert.True(t, c.Equal(valueobject.RiskHigh))
	_, err = valueobject.NewRiskClassification("CRITICAL")
	assert.Error(t, err)

	d, err := valueobject.NewDecision("MANUAL_REVIEW")
	require.NoError(t, err)
	assert.False(t, d.AllowsDisbursement())
	assert.True(t, valueobject.DecisionApprove.AllowsDisbursement())
	assert.True(t, valueobject.DecisionApproveWithConditions.AllowsDisbursement())
	assert.False(t, valueobject.DecisionReject.AllowsDisbursement())
}

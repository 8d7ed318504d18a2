package usecase

import (
	"context"
	"time"
)

// Metrics receives engine measurements from the use cases. A nil Metrics
// passed to a constructor disables recording.
type Metrics interface {
	ScheduleGenerated(ctx context.Context, method string, installments int)
	ApplicantEvaluated(ctx context.Context, classification string)
	MoraLoanProcessed(ctx context.Context, installmentsUpdated int, failed bool)
	MoraBatchCompleted(ctx context.Context, elapsed time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) ScheduleGenerated(context.Context, string, int) {}
func (noopMetrics) ApplicantEvaluated(context.Context, string) {}
func (noopMetrics) MoraLoanProcessed(context.Context, int, bool) {}
func (noopMetrics) MoraBatchCompleted(context.Context, time.Duration) {}

func metricsOrNoop(m Metrics) Metrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}

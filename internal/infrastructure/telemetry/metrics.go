// Package telemetry records engine measurements as OpenTelemetry instruments.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of every engine instrument.
const MeterName = "github.com/bibbank/loanengine"

// EngineMetrics implements usecase.Metrics.
type EngineMetrics struct {
	schedules        metric.Int64Counter
	installments     metric.Int64Histogram
	evaluations      metric.Int64Counter
	moraLoans        metric.Int64Counter
	moraInstallments metric.Int64Counter
	moraBatch        metric.Float64Histogram
}

// NewEngineMetrics creates the engine instruments on provider.
func NewEngineMetrics(provider metric.MeterProvider) (*EngineMetrics, error) {
	meter := provider.Meter(MeterName)
	m := &EngineMetrics{}
	var err error

	if m.schedules, err = meter.Int64Counter(
		"loanengine.schedules.generated",
		metric.WithDescription("Amortization schedules generated"),
	); err != nil {
		return nil, fmt.Errorf("telemetry: schedules counter: %w", err)
	}
	if m.installments, err = meter.Int64Histogram(
		"loanengine.schedule.installments",
		metric.WithDescription("Installments per generated schedule"),
	); err != nil {
		return nil, fmt.Errorf("telemetry: installments histogram: %w", err)
	}
	if m.evaluations, err = meter.Int64Counter(
		"loanengine.applicants.evaluated",
		metric.WithDescription("Credit evaluations by resulting classification"),
	); err != nil {
		return nil, fmt.Errorf("telemetry: evaluations counter: %w", err)
	}
	if m.moraLoans, err = meter.Int64Counter(
		"loanengine.mora.loans",
		metric.WithDescription("Loans processed by the mora batch"),
	); err != nil {
		return nil, fmt.Errorf("telemetry: mora loans counter: %w", err)
	}
	if m.moraInstallments, err = meter.Int64Counter(
		"loanengine.mora.installments.updated",
		metric.WithDescription("Installments whose mora was recomputed or cleared"),
	); err != nil {
		return nil, fmt.Errorf("telemetry: mora installments counter: %w", err)
	}
	if m.moraBatch, err = meter.Float64Histogram(
		"loanengine.mora.batch.duration",
		metric.WithDescription("Wall time of one mora batch run"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("telemetry: mora batch histogram: %w", err)
	}

	return m, nil
}

func (m *EngineMetrics) ScheduleGenerated(ctx context.Context, method string, installments int) {
	attrs := metric.WithAttributes(attribute.String("method", method))
	m.schedules.Add(ctx, 1, attrs)
	m.installments.Record(ctx, int64(installments), attrs)
}

func (m *EngineMetrics) ApplicantEvaluated(ctx context.Context, classification string) {
	m.evaluations.Add(ctx, 1, metric.WithAttributes(attribute.String("classification", classification)))
}

func (m *EngineMetrics) MoraLoanProcessed(ctx context.Context, installmentsUpdated int, failed bool) {
	outcome := "ok"
	if failed {
		outcome = "failed"
	}
	m.moraLoans.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	if installmentsUpdated > 0 {
		m.moraInstallments.Add(ctx, int64(installmentsUpdated))
	}
}

func (m *EngineMetrics) MoraBatchCompleted(ctx context.Context, elapsed time.Duration) {
	m.moraBatch.Record(ctx, elapsed.Seconds())
}

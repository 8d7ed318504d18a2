package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bibbank/loanengine/internal/domain/event"
	"github.com/bibbank/loanengine/internal/domain/model"
	"github.com/bibbank/loanengine/internal/domain/port"
)

// --- Mock implementations ---

type mockScheduleGateway struct {
	saveFunc func(ctx context.Context, loanID string, installments []model.Installment) error
	saved    map[string][]model.Installment
}

func (m *mockScheduleGateway) SaveInstallments(ctx context.Context, loanID string, installments []model.Installment) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, loanID, installments)
	}
	if m.saved == nil {
		m.saved = make(map[string][]model.Installment)
	}
	m.saved[loanID] = installments
	return nil
}

type mockEvaluationGateway struct {
	upsertFunc func(ctx context.Context, loanID string, result model.CreditScoreResult) error
	findFunc   func(ctx context.Context, loanID string) (model.CreditScoreResult, error)
	upserted   map[string]model.CreditScoreResult
}

func (m *mockEvaluationGateway) UpsertEvaluation(ctx context.Context, loanID string, result model.CreditScoreResult) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, loanID, result)
	}
	if m.upserted == nil {
		m.upserted = make(map[string]model.CreditScoreResult)
	}
	m.upserted[loanID] = result
	return nil
}

func (m *mockEvaluationGateway) FindEvaluation(ctx context.Context, loanID string) (model.CreditScoreResult, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, loanID)
	}
	if r, ok := m.upserted[loanID]; ok {
		return r, nil
	}
	return model.CreditScoreResult{}, port.NewStorageError("find evaluation", loanID, port.ErrNotFound)
}

type mockInstallmentStore struct {
	mu        sync.Mutex
	listFunc  func(ctx context.Context) ([]string, error)
	loadFunc  func(ctx context.Context, loanID string) ([]model.Installment, error)
	saveFunc  func(ctx context.Context, loanID string, installments []model.Installment, summary model.MoraRecalcSummary) error
	loans     map[string][]model.Installment
	summaries map[string]model.MoraRecalcSummary
}

func (m *mockInstallmentStore) ListLoansWithOpenInstallments(ctx context.Context) ([]string, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.loans))
	for id := range m.loans {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *mockInstallmentStore) LoadInstallments(ctx context.Context, loanID string) ([]model.Installment, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx, loanID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Installment(nil), m.loans[loanID]...), nil
}

func (m *mockInstallmentStore) SaveMora(ctx context.Context, loanID string, installments []model.Installment, summary model.MoraRecalcSummary) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, loanID, installments, summary)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.summaries == nil {
		m.summaries = make(map[string]model.MoraRecalcSummary)
	}
	m.loans[loanID] = installments
	m.summaries[loanID] = summary
	return nil
}

type mockEventPublisher struct {
	mu              sync.Mutex
	publishFunc     func(ctx context.Context, events ...event.DomainEvent) error
	publishedEvents []event.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

func (m *mockEventPublisher) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.publishedEvents))
	for _, e := range m.publishedEvents {
		out = append(out, e.EventType())
	}
	return out
}

type recordingMetrics struct {
	mu             sync.Mutex
	schedules      map[string]int
	classification []string
	moraLoans      int
	moraFailures   int
	batches        int
}

func (m *recordingMetrics) ScheduleGenerated(_ context.Context, method string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.schedules == nil {
		m.schedules = make(map[string]int)
	}
	m.schedules[method]++
}

func (m *recordingMetrics) ApplicantEvaluated(_ context.Context, classification string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classification = append(m.classification, classification)
}

func (m *recordingMetrics) MoraLoanProcessed(_ context.Context, _ int, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moraLoans++
	if failed {
		m.moraFailures++
	}
}

func (m *recordingMetrics) MoraBatchCompleted(context.Context, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches++
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

package mocks

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

var _ driven.ContextStore = (*MockContextStore)(nil)

// MockContextStore is an in-memory ContextStore for testing.
// Tables named in missing behave as if not provisioned.
type MockContextStore struct {
	mu         sync.RWMutex
	funds      map[string]*domain.Fund
	metrics    map[string][]domain.FundMetric
	benchmarks map[string]domain.BenchmarkSeries
	cashFlows  map[string][]domain.CashFlow
	catalog    map[string][]domain.CatalogEntry
	missing    map[string]bool
}

// NewMockContextStore creates a new MockContextStore
func NewMockContextStore() *MockContextStore {
	return &MockContextStore{
		funds:      make(map[string]*domain.Fund),
		metrics:    make(map[string][]domain.FundMetric),
		benchmarks: make(map[string]domain.BenchmarkSeries),
		cashFlows:  make(map[string][]domain.CashFlow),
		catalog:    make(map[string][]domain.CatalogEntry),
		missing:    make(map[string]bool),
	}
}

func (m *MockContextStore) GetFund(ctx context.Context, id string) (*domain.Fund, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.missing["funds"] {
		return nil, domain.ErrNotFound
	}
	f, ok := m.funds[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return f, nil
}

func (m *MockContextStore) ListFundMetrics(ctx context.Context, q domain.RangeQuery) (domain.Availability[domain.FundMetric], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.missing["fund_metrics"] {
		return domain.Unavailable[domain.FundMetric]("fund_metrics is not provisioned"), nil
	}
	rows := filterByDate(m.metrics[q.Key], q, func(r domain.FundMetric) time.Time { return r.AsOfDate })
	return domain.Available(rows), nil
}

func (m *MockContextStore) GetBenchmark(ctx context.Context, q domain.RangeQuery) (domain.Availability[domain.BenchmarkSeries], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.missing["benchmarks"] {
		return domain.Unavailable[domain.BenchmarkSeries]("benchmarks is not provisioned"), nil
	}
	b, ok := m.benchmarks[q.Key]
	if !ok {
		return domain.Availability[domain.BenchmarkSeries]{}, domain.ErrNotFound
	}
	b.Points = filterByDate(b.Points, q, func(p domain.BenchmarkPoint) time.Time { return p.AsOfDate })
	return domain.Available([]domain.BenchmarkSeries{b}), nil
}

func (m *MockContextStore) ListCashFlows(ctx context.Context, q domain.RangeQuery) (domain.Availability[domain.CashFlow], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.missing["fund_cash_flows"] {
		return domain.Unavailable[domain.CashFlow]("fund_cash_flows is not provisioned"), nil
	}
	rows := filterByDate(m.cashFlows[q.Key], q, func(r domain.CashFlow) time.Time { return r.FlowDate })
	return domain.Available(rows), nil
}

func (m *MockContextStore) ListCatalog(ctx context.Context, q domain.RangeQuery) (domain.Availability[domain.CatalogEntry], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.missing["documents"] {
		return domain.Unavailable[domain.CatalogEntry]("documents is not provisioned"), nil
	}
	rows := filterByDate(m.catalog[q.Key], q, func(r domain.CatalogEntry) time.Time { return r.UploadedAt })
	return domain.Available(rows), nil
}

func filterByDate[T any](rows []T, q domain.RangeQuery, date func(T) time.Time) []T {
	q = q.Normalize()
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		d := date(r)
		if q.From != nil && d.Before(*q.From) {
			continue
		}
		if q.To != nil && d.After(*q.To) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.Order == domain.SortDescending {
			return date(out[i]).After(date(out[j]))
		}
		return date(out[i]).Before(date(out[j]))
	})
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// Helper methods for testing

func (m *MockContextStore) AddFund(f *domain.Fund) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funds[f.ID] = f
}

func (m *MockContextStore) AddMetrics(rows ...domain.FundMetric) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		m.metrics[r.FundID] = append(m.metrics[r.FundID], r)
	}
}

func (m *MockContextStore) AddBenchmark(b domain.BenchmarkSeries) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.Points = slices.Clone(b.Points)
	m.benchmarks[b.Code] = b
}

func (m *MockContextStore) AddCashFlows(rows ...domain.CashFlow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		m.cashFlows[r.FundID] = append(m.cashFlows[r.FundID], r)
	}
}

func (m *MockContextStore) AddCatalog(fundID string, rows ...domain.CatalogEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalog[fundID] = append(m.catalog[fundID], rows...)
}

// SetMissing marks a table as not provisioned
func (m *MockContextStore) SetMissing(table string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.missing[strings.ToLower(table)] = true
}

package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ensure contextService implements ContextService
var _ driving.ContextService = (*contextService)(nil)

// contextService validates and clamps context reads before they reach the store
type contextService struct {
	store  driven.ContextStore
	logger *slog.Logger
}

// NewContextService creates a new ContextService
func NewContextService(store driven.ContextStore, logger *slog.Logger) driving.ContextService {
	if logger == nil {
		logger = slog.Default()
	}
	return &contextService{store: store, logger: logger}
}

// Fund retrieves a fund record
func (s *contextService) Fund(ctx context.Context, id string) (*domain.Fund, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError("fundId", "is required")
	}
	return s.store.GetFund(ctx, id)
}

// FundMetrics returns metric snapshots of a fund
func (s *contextService) FundMetrics(ctx context.Context, q domain.RangeQuery) (domain.Availability[domain.FundMetric], error) {
	q, err := prepareRange(q)
	if err != nil {
		return domain.Availability[domain.FundMetric]{}, err
	}
	return s.store.ListFundMetrics(ctx, q)
}

// Benchmark returns a single benchmark series
func (s *contextService) Benchmark(ctx context.Context, q domain.RangeQuery) (domain.Availability[domain.BenchmarkSeries], error) {
	q, err := prepareRange(q)
	if err != nil {
		return domain.Availability[domain.BenchmarkSeries]{}, err
	}
	return s.store.GetBenchmark(ctx, q)
}

// Benchmarks returns the series of several codes in the requested order.
// Unknown codes are skipped; duplicate codes are read once.
func (s *contextService) Benchmarks(ctx context.Context, codes []string, q domain.RangeQuery) (domain.Availability[domain.BenchmarkSeries], error) {
	series := []domain.BenchmarkSeries{}
	seen := make(map[string]bool, len(codes))

	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true

		cq := q
		cq.Key = code
		result, err := s.Benchmark(ctx, cq)
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debug("benchmark not found", "code", code)
			continue
		}
		if err != nil {
			return domain.Availability[domain.BenchmarkSeries]{}, err
		}
		if !result.Available {
			return result, nil
		}
		series = append(series, result.Rows...)
	}
	return domain.Available(series), nil
}

// CashFlows returns cash-flow events of a fund
func (s *contextService) CashFlows(ctx context.Context, q domain.RangeQuery) (domain.Availability[domain.CashFlow], error) {
	q, err := prepareRange(q)
	if err != nil {
		return domain.Availability[domain.CashFlow]{}, err
	}
	return s.store.ListCashFlows(ctx, q)
}

// Catalog returns the document catalog of a fund
func (s *contextService) Catalog(ctx context.Context, q domain.RangeQuery) (domain.Availability[domain.CatalogEntry], error) {
	q, err := prepareRange(q)
	if err != nil {
		return domain.Availability[domain.CatalogEntry]{}, err
	}
	return s.store.ListCatalog(ctx, q)
}

func prepareRange(q domain.RangeQuery) (domain.RangeQuery, error) {
	q.Key = strings.TrimSpace(q.Key)
	if err := q.Validate(); err != nil {
		return q, err
	}
	return q.Normalize(), nil
}

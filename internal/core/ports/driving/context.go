package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// ContextService exposes the externally owned fund context
type ContextService interface {
	// Fund retrieves a fund record
	Fund(ctx context.Context, id string) (*domain.Fund, error)

	// FundMetrics returns metric snapshots of a fund
	FundMetrics(ctx context.Context, q domain.RangeQuery) (domain.Availability[domain.FundMetric], error)

	// Benchmark returns a single benchmark series
	Benchmark(ctx context.Context, q domain.RangeQuery) (domain.Availability[domain.BenchmarkSeries], error)

	// Benchmarks returns the series of several benchmark codes. Unknown codes are skipped.
	Benchmarks(ctx context.Context, codes []string, q domain.RangeQuery) (domain.Availability[domain.BenchmarkSeries], error)

	// CashFlows returns cash-flow events of a fund
	CashFlows(ctx context.Context, q domain.RangeQuery) (domain.Availability[domain.CashFlow], error)

	// Catalog returns the document catalog of a fund
	Catalog(ctx context.Context, q domain.RangeQuery) (domain.Availability[domain.CatalogEntry], error)
}

package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// ContextStore reads externally owned fund context.
// Tables that are not provisioned yield an Unavailable result, never an error.
type ContextStore interface {
	// GetFund retrieves a fund record. Returns domain.ErrNotFound when absent.
	GetFund(ctx context.Context, id string) (*domain.Fund, error)

	// ListFundMetrics returns metric snapshots of a fund
	ListFundMetrics(ctx context.Context, q domain.RangeQuery) (domain.Availability[domain.FundMetric], error)

	// GetBenchmark returns a benchmark with its points. Returns domain.ErrNotFound
	// when the benchmark table exists but the code is unknown.
	GetBenchmark(ctx context.Context, q domain.RangeQuery) (domain.Availability[domain.BenchmarkSeries], error)

	// ListCashFlows returns cash-flow events of a fund
	ListCashFlows(ctx context.Context, q domain.RangeQuery) (domain.Availability[domain.CashFlow], error)

	// ListCatalog returns the document catalog of a fund
	ListCatalog(ctx context.Context, q domain.RangeQuery) (domain.Availability[domain.CatalogEntry], error)
}

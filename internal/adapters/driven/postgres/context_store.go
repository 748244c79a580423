package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/metrics"
)

// Verify interface compliance
var _ driven.ContextStore = (*ContextStore)(nil)

// ContextStore implements driven.ContextStore over tables owned by other
// services. A table that does not exist in this deployment yields an
// Unavailable result instead of an error.
type ContextStore struct {
	db     *DB
	logger *slog.Logger
}

// NewContextStore creates a new ContextStore
func NewContextStore(db *DB, logger *slog.Logger) *ContextStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContextStore{db: db, logger: logger}
}

// orderBy renders a whitelisted ORDER BY direction
func orderBy(column string, order domain.SortOrder) string {
	if order == domain.SortDescending {
		return column + " DESC"
	}
	return column + " ASC"
}

func (s *ContextStore) unavailable(table string, err error) string {
	metrics.ContextUnavailableTotal.WithLabelValues(table).Inc()
	s.logger.Warn("context table is not provisioned", "table", table, "error", err)
	return table + " is not provisioned"
}

// GetFund retrieves a fund record
func (s *ContextStore) GetFund(ctx context.Context, id string) (*domain.Fund, error) {
	query := `
		SELECT id, name, strategy_id, vintage_year, currency, status
		FROM funds
		WHERE id = $1
	`

	var f domain.Fund
	var strategyID, currency, status sql.NullString
	var vintage sql.NullInt64

	err := s.db.QueryRowContext(ctx, query, id).Scan(&f.ID, &f.Name, &strategyID, &vintage, &currency, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if isUndefinedTable(err) {
		s.unavailable("funds", err)
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get fund: %w", err)
	}

	f.StrategyID = StringPtr(strategyID)
	f.VintageYear = IntPtr(vintage)
	f.Currency = StringPtr(currency)
	f.Status = StringPtr(status)
	return &f, nil
}

// ListFundMetrics returns metric snapshots of a fund
func (s *ContextStore) ListFundMetrics(ctx context.Context, q domain.RangeQuery) (domain.Availability[domain.FundMetric], error) {
	q = q.Normalize()
	query := `
		SELECT fund_id, as_of_date, nav, irr, tvpi, dpi, rvpi, called_capital, distributed_capital
		FROM fund_metrics
		WHERE fund_id = $1
		  AND ($2::date IS NULL OR as_of_date >= $2::date)
		  AND ($3::date IS NULL OR as_of_date <= $3::date)
		ORDER BY ` + orderBy("as_of_date", q.Order) + `
		LIMIT $4
	`

	rows, err := s.db.QueryContext(ctx, query, q.Key, NullTime(q.From), NullTime(q.To), q.Limit)
	if isUndefinedTable(err) {
		return domain.Unavailable[domain.FundMetric](s.unavailable("fund_metrics", err)), nil
	}
	if err != nil {
		return domain.Availability[domain.FundMetric]{}, fmt.Errorf("list fund metrics: %w", err)
	}
	defer rows.Close()

	var out []domain.FundMetric
	for rows.Next() {
		var m domain.FundMetric
		var nav, irr, tvpi, dpi, rvpi, called, distributed sql.NullFloat64
		if err := rows.Scan(&m.FundID, &m.AsOfDate, &nav, &irr, &tvpi, &dpi, &rvpi, &called, &distributed); err != nil {
			return domain.Availability[domain.FundMetric]{}, fmt.Errorf("scan fund metric: %w", err)
		}
		m.NAV = FloatPtr(nav)
		m.IRR = FloatPtr(irr)
		m.TVPI = FloatPtr(tvpi)
		m.DPI = FloatPtr(dpi)
		m.RVPI = FloatPtr(rvpi)
		m.CalledCapital = FloatPtr(called)
		m.DistributedCapital = FloatPtr(distributed)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return domain.Availability[domain.FundMetric]{}, err
	}
	return domain.Available(out), nil
}

// GetBenchmark returns a benchmark with its points
func (s *ContextStore) GetBenchmark(ctx context.Context, q domain.RangeQuery) (domain.Availability[domain.BenchmarkSeries], error) {
	q = q.Normalize()

	var b domain.BenchmarkSeries
	var provider sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT code, name, provider FROM benchmarks WHERE code = $1", q.Key,
	).Scan(&b.Code, &b.Name, &provider)
	if isUndefinedTable(err) {
		return domain.Unavailable[domain.BenchmarkSeries](s.unavailable("benchmarks", err)), nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Availability[domain.BenchmarkSeries]{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Availability[domain.BenchmarkSeries]{}, fmt.Errorf("get benchmark: %w", err)
	}
	b.Provider = StringPtr(provider)

	query := `
		SELECT as_of_date, value
		FROM benchmark_points
		WHERE benchmark_code = $1
		  AND ($2::date IS NULL OR as_of_date >= $2::date)
		  AND ($3::date IS NULL OR as_of_date <= $3::date)
		ORDER BY ` + orderBy("as_of_date", q.Order) + `
		LIMIT $4
	`
	rows, err := s.db.QueryContext(ctx, query, q.Key, NullTime(q.From), NullTime(q.To), q.Limit)
	if isUndefinedTable(err) {
		return domain.Unavailable[domain.BenchmarkSeries](s.unavailable("benchmark_points", err)), nil
	}
	if err != nil {
		return domain.Availability[domain.BenchmarkSeries]{}, fmt.Errorf("list benchmark points: %w", err)
	}
	defer rows.Close()

	b.Points = []domain.BenchmarkPoint{}
	for rows.Next() {
		var p domain.BenchmarkPoint
		if err := rows.Scan(&p.AsOfDate, &p.Value); err != nil {
			return domain.Availability[domain.BenchmarkSeries]{}, fmt.Errorf("scan benchmark point: %w", err)
		}
		b.Points = append(b.Points, p)
	}
	if err := rows.Err(); err != nil {
		return domain.Availability[domain.BenchmarkSeries]{}, err
	}
	return domain.Available([]domain.BenchmarkSeries{b}), nil
}

// ListCashFlows returns cash-flow events of a fund
func (s *ContextStore) ListCashFlows(ctx context.Context, q domain.RangeQuery) (domain.Availability[domain.CashFlow], error) {
	q = q.Normalize()
	query := `
		SELECT fund_id, flow_date, amount, flow_type, description
		FROM fund_cash_flows
		WHERE fund_id = $1
		  AND ($2::date IS NULL OR flow_date >= $2::date)
		  AND ($3::date IS NULL OR flow_date <= $3::date)
		ORDER BY ` + orderBy("flow_date", q.Order) + `
		LIMIT $4
	`

	rows, err := s.db.QueryContext(ctx, query, q.Key, NullTime(q.From), NullTime(q.To), q.Limit)
	if isUndefinedTable(err) {
		return domain.Unavailable[domain.CashFlow](s.unavailable("fund_cash_flows", err)), nil
	}
	if err != nil {
		return domain.Availability[domain.CashFlow]{}, fmt.Errorf("list cash flows: %w", err)
	}
	defer rows.Close()

	var out []domain.CashFlow
	for rows.Next() {
		var cf domain.CashFlow
		var description sql.NullString
		if err := rows.Scan(&cf.FundID, &cf.FlowDate, &cf.Amount, &cf.FlowType, &description); err != nil {
			return domain.Availability[domain.CashFlow]{}, fmt.Errorf("scan cash flow: %w", err)
		}
		cf.Description = StringPtr(description)
		out = append(out, cf)
	}
	if err := rows.Err(); err != nil {
		return domain.Availability[domain.CashFlow]{}, err
	}
	return domain.Available(out), nil
}

// ListCatalog returns the documents of a fund with their chunk counts
func (s *ContextStore) ListCatalog(ctx context.Context, q domain.RangeQuery) (domain.Availability[domain.CatalogEntry], error) {
	q = q.Normalize()
	query := `
		SELECT d.id, d.title, d.doc_type, d.as_of_date, d.uploaded_at, d.source_system, d.page_count,
		       (SELECT COUNT(*) FROM document_chunks c WHERE c.document_id = d.id)
		FROM documents d
		WHERE d.fund_id = $1
		  AND ($2::timestamptz IS NULL OR d.uploaded_at >= $2::timestamptz)
		  AND ($3::timestamptz IS NULL OR d.uploaded_at <= $3::timestamptz)
		ORDER BY ` + orderBy("d.uploaded_at", q.Order) + `, d.id
		LIMIT $4
	`

	rows, err := s.db.QueryContext(ctx, query, q.Key, NullTime(q.From), NullTime(q.To), q.Limit)
	if isUndefinedTable(err) {
		return domain.Unavailable[domain.CatalogEntry](s.unavailable("documents", err)), nil
	}
	if err != nil {
		return domain.Availability[domain.CatalogEntry]{}, fmt.Errorf("list catalog: %w", err)
	}
	defer rows.Close()

	var out []domain.CatalogEntry
	for rows.Next() {
		var e domain.CatalogEntry
		var asOf sql.NullTime
		var pageCount sql.NullInt64
		if err := rows.Scan(&e.DocumentID, &e.Title, &e.DocType, &asOf, &e.UploadedAt, &e.SourceSystem, &pageCount, &e.ChunkCount); err != nil {
			return domain.Availability[domain.CatalogEntry]{}, fmt.Errorf("scan catalog entry: %w", err)
		}
		e.AsOfDate = TimePtr(asOf)
		e.PageCount = IntPtr(pageCount)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return domain.Availability[domain.CatalogEntry]{}, err
	}
	return domain.Available(out), nil
}

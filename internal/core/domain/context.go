package domain

import (
	"strings"
	"time"
)

// Fund is the externally owned fund record
type Fund struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	StrategyID  *string `json:"strategyId,omitempty"`
	VintageYear *int    `json:"vintageYear,omitempty"`
	Currency    *string `json:"currency,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// FundMetric is one as-of snapshot of a fund's performance figures
type FundMetric struct {
	FundID             string    `json:"fundId"`
	AsOfDate           time.Time `json:"asOfDate"`
	NAV                *float64  `json:"nav,omitempty"`
	IRR                *float64  `json:"irr,omitempty"`
	TVPI               *float64  `json:"tvpi,omitempty"`
	DPI                *float64  `json:"dpi,omitempty"`
	RVPI               *float64  `json:"rvpi,omitempty"`
	CalledCapital      *float64  `json:"calledCapital,omitempty"`
	DistributedCapital *float64  `json:"distributedCapital,omitempty"`
}

// BenchmarkPoint is a single benchmark observation
type BenchmarkPoint struct {
	AsOfDate time.Time `json:"asOfDate"`
	Value    float64   `json:"value"`
}

// BenchmarkSeries is a benchmark with its points in the requested order
type BenchmarkSeries struct {
	Code     string           `json:"code"`
	Name     string           `json:"name"`
	Provider *string          `json:"provider,omitempty"`
	Points   []BenchmarkPoint `json:"points"`
}

// CashFlow is a capital call, distribution or fee event
type CashFlow struct {
	FundID      string    `json:"fundId"`
	FlowDate    time.Time `json:"flowDate"`
	Amount      float64   `json:"amount"`
	FlowType    string    `json:"flowType"`
	Description *string   `json:"description,omitempty"`
}

// CatalogEntry is a document catalog row
type CatalogEntry struct {
	DocumentID   string     `json:"documentId"`
	Title        string     `json:"title"`
	DocType      string     `json:"docType"`
	AsOfDate     *time.Time `json:"asOfDate,omitempty"`
	UploadedAt   time.Time  `json:"uploadedAt"`
	SourceSystem string     `json:"sourceSystem"`
	PageCount    *int       `json:"pageCount,omitempty"`
	ChunkCount   int        `json:"chunkCount"`
}

// SortOrder selects date ordering of context rows
type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

// Context query limits
const (
	DefaultContextLimit = 24
	MaxContextLimit     = 500
)

// RangeQuery selects context rows for a fund or benchmark code.
type RangeQuery struct {
	Key   string
	From  *time.Time
	To    *time.Time
	Order SortOrder
	Limit int
}

// Normalize clamps the limit and defaults the ordering
func (q RangeQuery) Normalize() RangeQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultContextLimit
	}
	if q.Limit > MaxContextLimit {
		q.Limit = MaxContextLimit
	}
	switch SortOrder(strings.ToLower(string(q.Order))) {
	case SortDescending:
		q.Order = SortDescending
	default:
		q.Order = SortAscending
	}
	return q
}

// Validate rejects queries without a key or with an inverted range
func (q RangeQuery) Validate() error {
	if strings.TrimSpace(q.Key) == "" {
		return NewValidationError("key", "is required")
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return NewValidationError("to", "must not be before from")
	}
	return nil
}

// Availability distinguishes "no rows" from "data source not provisioned".
type Availability[T any] struct {
	Rows      []T    `json:"rows"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// Available wraps rows from a provisioned source
func Available[T any](rows []T) Availability[T] {
	if rows == nil {
		rows = []T{}
	}
	return Availability[T]{Rows: rows, Available: true}
}

// Unavailable marks a source that is not provisioned in this deployment
func Unavailable[T any](reason string) Availability[T] {
	return Availability[T]{Rows: []T{}, Available: false, Reason: reason}
}

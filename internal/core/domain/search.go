package domain

import (
	"strings"
	"time"
)

// Search limits. Caller-supplied limits are always clamped into [1, MaxSearchLimit].
const (
	DefaultSearchLimit = 8
	MaxSearchLimit     = 50
)

// ClampSearchLimit bounds a requested result count
func ClampSearchLimit(limit int) int {
	if limit <= 0 {
		return DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		return MaxSearchLimit
	}
	return limit
}

// SearchRequest is a similarity search. Exactly one of Query or Embedding
// has to resolve to a vector; a query is embedded when no vector is given.
type SearchRequest struct {
	Query         string     `json:"query,omitempty"`
	Embedding     []float32  `json:"embedding,omitempty"`
	FundID        *string    `json:"fundId,omitempty"`
	StrategyID    *string    `json:"strategyId,omitempty"`
	DocTypes      []string   `json:"docTypes,omitempty"`
	MinUploadedAt *time.Time `json:"minUploadedAt,omitempty"`
	Limit         int        `json:"limit,omitempty"`
}

// Validate checks that the request can resolve to a vector
func (r *SearchRequest) Validate() error {
	if len(r.Embedding) == 0 && strings.TrimSpace(r.Query) == "" {
		return NewValidationError("", "query or embedding is required")
	}
	return nil
}

// SearchQuery is the store-level search with a resolved vector.
type SearchQuery struct {
	Embedding     []float32
	FundID        *string
	StrategyID    *string
	DocTypes      []string
	MinUploadedAt *time.Time
	Limit         int
}

// Validate rejects empty vectors
func (q *SearchQuery) Validate() error {
	if len(q.Embedding) == 0 {
		return NewValidationError("embedding", "is required")
	}
	return nil
}

// SearchHit is a ranked chunk joined with its parent document's catalog fields.
type SearchHit struct {
	ChunkID     string     `json:"chunkId"`
	DocumentID  string     `json:"documentId"`
	FundID      *string    `json:"fundId,omitempty"`
	StrategyID  *string    `json:"strategyId,omitempty"`
	ChunkIndex  int        `json:"chunkIndex"`
	SlideNumber *int       `json:"slideNumber,omitempty"`
	StartOffset int        `json:"startOffset"`
	EndOffset   int        `json:"endOffset"`
	Content     string     `json:"content"`
	Title       string     `json:"title"`
	DocType     string     `json:"docType"`
	AsOfDate    *time.Time `json:"asOfDate,omitempty"`
	UploadedAt  time.Time  `json:"uploadedAt"`
	Distance    float64    `json:"distance"`
	Similarity  float64    `json:"similarity"`
}

// SearchResponse is the ranked result list
type SearchResponse struct {
	Results []*SearchHit  `json:"results"`
	Limit   int           `json:"limit"`
	Took    time.Duration `json:"took" swaggertype:"integer" example:"1500000"`
}

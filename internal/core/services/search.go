package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/metrics"
)

// Ensure searchService implements SearchService
var _ driving.SearchService = (*searchService)(nil)

// searchService implements the SearchService interface
type searchService struct {
	store    driven.DocumentStore
	embedder driven.EmbeddingService
	logger   *slog.Logger
}

// NewSearchService creates a new SearchService.
// embedder embeds text queries; it is usually wrapped in a query cache.
func NewSearchService(store driven.DocumentStore, embedder driven.EmbeddingService, logger *slog.Logger) driving.SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &searchService{
		store:    store,
		embedder: embedder,
		logger:   logger,
	}
}

// Search resolves the query vector and returns the nearest chunks
func (s *searchService) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	vec := req.Embedding
	if len(vec) == 0 {
		embedded, err := s.embedder.Embed(ctx, req.Query)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		vec = embedded
	}
	if err := s.checkVector(vec); err != nil {
		return nil, err
	}

	limit := domain.ClampSearchLimit(req.Limit)
	hits, err := s.store.SearchChunks(ctx, &domain.SearchQuery{
		Embedding:     vec,
		FundID:        nonBlank(req.FundID),
		StrategyID:    nonBlank(req.StrategyID),
		DocTypes:      cleanDocTypes(req.DocTypes),
		MinUploadedAt: req.MinUploadedAt,
		Limit:         limit,
	})
	if err != nil {
		return nil, err
	}
	if hits == nil {
		hits = []*domain.SearchHit{}
	}

	took := time.Since(start)
	metrics.SearchDuration.Observe(took.Seconds())
	s.logger.Debug("search completed", "results", len(hits), "limit", limit, "duration_ms", took.Milliseconds())

	return &domain.SearchResponse{
		Results: hits,
		Limit:   limit,
		Took:    took,
	}, nil
}

// checkVector rejects vectors the similarity operator cannot compare
func (s *searchService) checkVector(vec []float32) error {
	if want := s.embedder.Dimensions(); len(vec) != want {
		return domain.NewValidationError("embedding", fmt.Sprintf("must have %d dimensions, got %d", want, len(vec)))
	}
	var norm float64
	for _, v := range vec {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return domain.NewValidationError("embedding", "must contain finite values")
		}
		norm += float64(v) * float64(v)
	}
	// cosine distance to a zero vector is NaN
	if norm == 0 {
		return domain.NewValidationError("embedding", "must not be the zero vector")
	}
	return nil
}

func nonBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func cleanDocTypes(in []string) []string {
	var out []string
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

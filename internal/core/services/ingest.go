package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/chunker"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/metrics"
)

// Ensure ingestService implements IngestService
var _ driving.IngestService = (*ingestService)(nil)

// ingestService chunks, embeds and stores documents.
//
// Pipeline (one transaction per call):
//  1. Validate the request (no I/O)
//  2. Lock the document identity
//  3. Upsert the document row
//  4. For each chunk, in order: embed, then upsert
//  5. Prune chunks left over from a longer previous version
//  6. Commit
//
// Embedding happens inside the transaction, so a provider failure on any
// chunk rolls back the document and every chunk written before it.
type ingestService struct {
	store    driven.DocumentStore
	embedder driven.EmbeddingService
	now      func() time.Time
	logger   *slog.Logger
}

// IngestServiceConfig holds dependencies for the ingest service.
type IngestServiceConfig struct {
	Store    driven.DocumentStore
	Embedder driven.EmbeddingService
	Now      func() time.Time
	Logger   *slog.Logger
}

// NewIngestService creates a new IngestService
func NewIngestService(cfg IngestServiceConfig) driving.IngestService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &ingestService{
		store:    cfg.Store,
		embedder: cfg.Embedder,
		now:      now,
		logger:   logger,
	}
}

// Ingest stores a document and its embedded chunks atomically
func (s *ingestService) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	if err := req.Validate(); err != nil {
		metrics.IngestionsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	doc := s.prepareDocument(req.Document)
	var spans []domain.Span
	if strings.TrimSpace(req.Text) != "" {
		spans = generatedSpans(req.Text, req.ChunkConfig())
	} else {
		spans = req.SuppliedSpans()
	}
	if len(spans) == 0 {
		metrics.IngestionsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.NewValidationError("text", "contains no chunkable content")
	}

	start := time.Now()
	var pruned int64
	err := s.store.WithinTx(ctx, func(tx driven.IngestTx) error {
		if err := tx.LockDocument(ctx, doc.ID); err != nil {
			return err
		}
		if err := tx.UpsertDocument(ctx, doc); err != nil {
			return err
		}

		// Serial on purpose: providers rate-limit per key and the
		// transaction must see chunks in index order.
		for _, span := range spans {
			vec, err := s.embedder.Embed(ctx, span.Text)
			if err != nil {
				return fmt.Errorf("embed chunk %d: %w", span.Index, err)
			}

			chunk := &domain.Chunk{
				ID:          domain.ChunkID(doc.ID, span.Index),
				DocumentID:  doc.ID,
				FundID:      doc.FundID,
				StrategyID:  doc.StrategyID,
				ChunkIndex:  span.Index,
				SlideNumber: span.SlideNumber,
				StartOffset: span.Start,
				EndOffset:   span.End,
				Content:     span.Text,
				Embedding:   vec,
			}
			if err := tx.UpsertChunk(ctx, chunk); err != nil {
				return err
			}
		}

		n, err := tx.PruneChunks(ctx, doc.ID, len(spans))
		if err != nil {
			return err
		}
		pruned = n
		return nil
	})
	if err != nil {
		metrics.IngestionsTotal.WithLabelValues("rolled_back").Inc()
		s.logger.Error("ingestion rolled back",
			"document_id", doc.ID,
			"chunks", len(spans),
			"error", err)
		return nil, classifyIngestError(err)
	}

	metrics.IngestionsTotal.WithLabelValues("committed").Inc()
	metrics.IngestedChunksTotal.Add(float64(len(spans)))
	s.logger.Info("document ingested",
		"document_id", doc.ID,
		"chunks", len(spans),
		"pruned", pruned,
		"duration_ms", time.Since(start).Milliseconds())

	return &domain.IngestResult{
		DocumentID:     doc.ID,
		ChunksInserted: len(spans),
	}, nil
}

// Get retrieves a document with its chunks
func (s *ingestService) Get(ctx context.Context, id string) (*domain.DocumentWithChunks, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError("id", "is required")
	}

	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	chunks, err := s.store.GetChunks(ctx, id)
	if err != nil {
		return nil, err
	}
	if chunks == nil {
		chunks = []*domain.Chunk{}
	}
	return &domain.DocumentWithChunks{Document: doc, Chunks: chunks}, nil
}

// Delete removes a document and its chunks
func (s *ingestService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.NewValidationError("id", "is required")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("document deleted", "document_id", id)
	return nil
}

// prepareDocument fills identity and defaults
func (s *ingestService) prepareDocument(in domain.Document) *domain.Document {
	doc := in
	doc.Title = strings.TrimSpace(doc.Title)
	if strings.TrimSpace(doc.ID) == "" {
		doc.ID = uuid.NewString()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = s.now().UTC()
	}
	if strings.TrimSpace(doc.DocType) == "" {
		doc.DocType = domain.DefaultDocType
	}
	if strings.TrimSpace(doc.SourceSystem) == "" {
		doc.SourceSystem = domain.DefaultSourceSystem
	}
	return &doc
}

// generatedSpans chunks text, dropping whitespace-only windows and keeping indices dense
func generatedSpans(text string, cfg domain.ChunkConfig) []domain.Span {
	var spans []domain.Span
	for span := range chunker.Chunks(text, cfg) {
		if strings.TrimSpace(span.Text) == "" {
			continue
		}
		span.Index = len(spans)
		spans = append(spans, span)
	}
	return spans
}

// classifyIngestError reports uncategorized storage failures as transaction errors
func classifyIngestError(err error) error {
	switch {
	case errors.Is(err, domain.ErrEmbeddingProvider),
		errors.Is(err, domain.ErrTransaction),
		errors.Is(err, domain.ErrInvalidInput):
		return err
	default:
		return fmt.Errorf("%w: %v", domain.ErrTransaction, err)
	}
}

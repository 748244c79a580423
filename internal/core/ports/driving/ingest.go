package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// IngestService turns documents into embedded, searchable chunks
type IngestService interface {
	// Ingest chunks, embeds and stores a document in one transaction.
	// On any failure nothing is persisted.
	Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error)

	// Get retrieves a document with its chunks
	Get(ctx context.Context, id string) (*domain.DocumentWithChunks, error)

	// Delete removes a document and all of its chunks
	Delete(ctx context.Context, id string) error
}

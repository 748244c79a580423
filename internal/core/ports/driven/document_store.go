package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// DocumentStore handles document and chunk persistence (PostgreSQL + pgvector)
type DocumentStore interface {
	// WithinTx runs fn inside a single transaction.
	// The transaction commits only if fn returns nil; otherwise every write is rolled back.
	WithinTx(ctx context.Context, fn func(tx IngestTx) error) error

	// Get retrieves a document by ID
	Get(ctx context.Context, id string) (*domain.Document, error)

	// GetChunks retrieves all chunks of a document ordered by chunk index
	GetChunks(ctx context.Context, documentID string) ([]*domain.Chunk, error)

	// Delete deletes a document and its chunks
	Delete(ctx context.Context, id string) error

	// SearchChunks ranks chunks by cosine distance to the query embedding
	SearchChunks(ctx context.Context, query *domain.SearchQuery) ([]*domain.SearchHit, error)

	// Ping checks if the store is reachable
	Ping(ctx context.Context) error
}

// IngestTx is the write surface available inside an ingestion transaction
type IngestTx interface {
	// LockDocument serializes concurrent ingestions of the same document.
	// The lock is released when the transaction ends.
	LockDocument(ctx context.Context, documentID string) error

	// UpsertDocument creates or replaces the document row
	UpsertDocument(ctx context.Context, doc *domain.Document) error

	// UpsertChunk creates or replaces the chunk at (document, index)
	UpsertChunk(ctx context.Context, chunk *domain.Chunk) error

	// PruneChunks deletes chunks of the document whose index is >= keep
	PruneChunks(ctx context.Context, documentID string, keep int) (int64, error)
}

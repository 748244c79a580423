package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// SearchService ranks stored chunks by similarity to a query
type SearchService interface {
	// Search embeds the query when no vector is given and returns the nearest chunks
	Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error)
}

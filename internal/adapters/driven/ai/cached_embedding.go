package ai

import (
	"context"
	"encoding/hex"
	"log/slog"

	"golang.org/x/crypto/blake2b"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/metrics"
)

// Ensure CachedEmbedding implements EmbeddingService
var _ driven.EmbeddingService = (*CachedEmbedding)(nil)

// CachedEmbedding decorates an EmbeddingService with a query-embedding cache.
// Cache failures are logged and fall through to the provider.
type CachedEmbedding struct {
	inner  driven.EmbeddingService
	cache  driven.EmbeddingCache
	logger *slog.Logger
}

// NewCachedEmbedding creates a caching decorator
func NewCachedEmbedding(inner driven.EmbeddingService, cache driven.EmbeddingCache, logger *slog.Logger) *CachedEmbedding {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedEmbedding{inner: inner, cache: cache, logger: logger}
}

// Embed returns a cached embedding or calls the inner service
func (c *CachedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	key := CacheKey(c.inner.Model(), text)

	vec, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.EmbeddingCacheTotal.WithLabelValues("error").Inc()
		c.logger.Warn("failed to get cached embedding", "key", key, "error", err)
	case ok && len(vec) == c.inner.Dimensions():
		metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
		return vec, nil
	default:
		metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()
	}

	vec, err = c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, vec); err != nil {
		c.logger.Warn("failed to cache embedding", "key", key, "error", err)
	}
	return vec, nil
}

func (c *CachedEmbedding) Dimensions() int { return c.inner.Dimensions() }

func (c *CachedEmbedding) Model() string { return c.inner.Model() }

func (c *CachedEmbedding) HealthCheck(ctx context.Context) error {
	return c.inner.HealthCheck(ctx)
}

func (c *CachedEmbedding) Close() error {
	return c.inner.Close()
}

// CacheKey derives the cache key of a text under a model
func CacheKey(model, text string) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

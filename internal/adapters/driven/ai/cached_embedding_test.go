package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven/mocks"
)

func TestCachedEmbedding_HitSkipsProvider(t *testing.T) {
	inner := mocks.NewMockEmbeddingService()
	cache := mocks.NewMockEmbeddingCache()
	svc := NewCachedEmbedding(inner, cache, nil)
	ctx := context.Background()

	first, err := svc.Embed(ctx, "latest IRR")
	require.NoError(t, err)
	second, err := svc.Embed(ctx, "latest IRR")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.Calls())
	assert.Equal(t, 1, cache.Len())
}

func TestCachedEmbedding_CacheErrorFallsThrough(t *testing.T) {
	inner := mocks.NewMockEmbeddingService()
	cache := mocks.NewMockEmbeddingCache()
	cache.SetError(errors.New("connection refused"))
	svc := NewCachedEmbedding(inner, cache, nil)

	vec, err := svc.Embed(context.Background(), "latest IRR")

	require.NoError(t, err)
	assert.Len(t, vec, inner.Dimensions())
	assert.Equal(t, 1, inner.Calls())
}

func TestCachedEmbedding_ProviderErrorNotCached(t *testing.T) {
	inner := mocks.NewMockEmbeddingService()
	inner.SetFailNext(true)
	cache := mocks.NewMockEmbeddingCache()
	svc := NewCachedEmbedding(inner, cache, nil)

	_, err := svc.Embed(context.Background(), "latest IRR")

	assert.Error(t, err)
	assert.Zero(t, cache.Len())
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, CacheKey("m", "text"), CacheKey("m", "text"))
	assert.NotEqual(t, CacheKey("m1", "text"), CacheKey("m2", "text"))
	assert.NotEqual(t, CacheKey("ab", "c"), CacheKey("a", "bc"))
	assert.Len(t, CacheKey("m", "text"), 64)
}

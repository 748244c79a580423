package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

func TestFactory_ImplementsInterface(t *testing.T) {
	var _ driven.AIServiceFactory = NewFactory(nil)
}

func TestFactory_CreateEmbeddingService_NilSettings(t *testing.T) {
	_, err := NewFactory(nil).CreateEmbeddingService(nil)
	assert.ErrorIs(t, err, domain.ErrProviderConfig)
}

func TestFactory_CreateEmbeddingService_MissingCredential(t *testing.T) {
	_, err := NewFactory(nil).CreateEmbeddingService(&domain.EmbeddingSettings{Provider: domain.AIProviderTogether})
	require.ErrorIs(t, err, domain.ErrProviderConfig)
	assert.Contains(t, err.Error(), "TOGETHER_API_KEY")
}

func TestFactory_CreateChatService_UnknownProvider(t *testing.T) {
	_, err := NewFactory(nil).CreateChatService(&domain.LLMSettings{Provider: "anthropic", APIKey: "k"})
	assert.ErrorIs(t, err, domain.ErrProviderConfig)
}

func TestFactory_SharesLimiterPerKey(t *testing.T) {
	f := NewFactory(nil)

	emb, err := f.CreateEmbeddingService(&domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, APIKey: "same"})
	require.NoError(t, err)
	chat, err := f.CreateChatService(&domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "same"})
	require.NoError(t, err)
	other, err := f.CreateChatService(&domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "different"})
	require.NoError(t, err)

	embLimiter := emb.(*OpenAIEmbedding).client.limiter
	assert.Same(t, embLimiter, chat.(*OpenAIChat).client.limiter)
	assert.NotSame(t, embLimiter, other.(*OpenAIChat).client.limiter)
}

func TestFactory_DefaultBaseURLs(t *testing.T) {
	f := NewFactory(nil)
	for _, p := range []domain.AIProvider{domain.AIProviderOpenAI, domain.AIProviderOpenRouter, domain.AIProviderTogether, domain.AIProviderNebius} {
		svc, err := f.CreateChatService(&domain.LLMSettings{Provider: p, APIKey: "k"})
		require.NoError(t, err, p)
		assert.Equal(t, p, svc.(*OpenAIChat).client.provider)
	}
}

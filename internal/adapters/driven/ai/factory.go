package ai

import (
	"log/slog"
	"sync"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Factory implements AIServiceFactory
var _ driven.AIServiceFactory = (*Factory)(nil)

// Factory creates AI services based on configuration.
// Services created with the same API key share one rate limiter, since
// providers enforce limits per key.
type Factory struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	logger   *slog.Logger
}

// NewFactory creates a new AI service factory
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{
		limiters: make(map[string]*rate.Limiter),
		logger:   logger,
	}
}

// CreateEmbeddingService creates an embedding service from settings
func (f *Factory) CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, domain.ErrProviderConfig
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	limiter := f.limiterFor(settings.Provider, settings.APIKey, settings.Client)
	svc, err := NewOpenAIEmbedding(settings, limiter, f.logger.With("component", "embedding"))
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// CreateChatService creates a chat-completion service from settings
func (f *Factory) CreateChatService(settings *domain.LLMSettings) (driven.ChatService, error) {
	if settings == nil {
		return nil, domain.ErrProviderConfig
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	limiter := f.limiterFor(settings.Provider, settings.APIKey, settings.Client)
	svc, err := NewOpenAIChat(settings, limiter, f.logger.With("component", "chat"))
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func (f *Factory) limiterFor(provider domain.AIProvider, apiKey string, cs domain.ClientSettings) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := string(provider) + "\x00" + CacheKey("limiter", apiKey)
	if l, ok := f.limiters[key]; ok {
		return l
	}
	l := newLimiter(cs.WithDefaults().RequestsPerSecond)
	f.limiters[key] = l
	return l
}

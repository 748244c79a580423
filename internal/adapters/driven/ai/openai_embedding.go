package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/metrics"
)

// Ensure OpenAIEmbedding implements EmbeddingService
var _ driven.EmbeddingService = (*OpenAIEmbedding)(nil)

// DefaultEmbeddingModel is used when no model is configured
const DefaultEmbeddingModel = "text-embedding-3-small"

// Model dimensions for OpenAI embedding models
var openAIModelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// OpenAIEmbedding implements EmbeddingService against any OpenAI-compatible
// embeddings endpoint.
type OpenAIEmbedding struct {
	client     *providerClient
	model      string
	dimensions int

	// requestDimensions asks the API to shorten vectors. Only the
	// text-embedding-3 family supports it.
	requestDimensions bool
}

// NewOpenAIEmbedding creates a new embedding service. limiter may be nil.
func NewOpenAIEmbedding(settings *domain.EmbeddingSettings, limiter *rate.Limiter, logger *slog.Logger) (*OpenAIEmbedding, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	model := settings.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	native, known := openAIModelDimensions[model]
	dimensions := settings.Dimensions
	if dimensions <= 0 {
		if !known {
			return nil, fmt.Errorf("%w: dimensions must be set for model %q", domain.ErrProviderConfig, model)
		}
		dimensions = native
	}

	return &OpenAIEmbedding{
		client:            newProviderClient(settings.Provider, settings.APIKey, settings.BaseURL, settings.Client, limiter, logger),
		model:             model,
		dimensions:        dimensions,
		requestDimensions: settings.Dimensions > 0 && strings.HasPrefix(model, "text-embedding-3") && dimensions != native,
	}, nil
}

// Embed generates the embedding of text
func (e *OpenAIEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.NewValidationError("text", "must not be blank")
	}

	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          openai.EmbeddingModel(e.model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.requestDimensions {
		req.Dimensions = e.dimensions
	}

	provider := string(e.client.provider)
	start := time.Now()

	var vec []float32
	err := e.client.call(ctx, "embedding", func(ctx context.Context) error {
		resp, err := e.client.api.CreateEmbeddings(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			return errEmptyResponse
		}
		vec = resp.Data[0].Embedding
		return nil
	})
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
		return nil, wrapProviderError("embedding", err, domain.ErrEmbeddingProvider)
	}

	if len(vec) != e.dimensions {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
		return nil, fmt.Errorf("embedding has %d dimensions, expected %d: %w", len(vec), e.dimensions, domain.ErrEmbeddingProvider)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(provider, e.model).Observe(time.Since(start).Seconds())
	return vec, nil
}

// Dimensions returns the embedding dimension size
func (e *OpenAIEmbedding) Dimensions() int {
	return e.dimensions
}

// Model returns the model name being used
func (e *OpenAIEmbedding) Model() string {
	return e.model
}

// HealthCheck verifies API availability via ListModels, which consumes no tokens.
func (e *OpenAIEmbedding) HealthCheck(ctx context.Context) error {
	err := e.client.call(ctx, "list_models", func(ctx context.Context) error {
		_, err := e.client.api.ListModels(ctx)
		return err
	})
	if err != nil {
		return wrapProviderError("embedding", err, domain.ErrEmbeddingProvider)
	}
	return nil
}

// Close releases resources held by the embedding service
func (e *OpenAIEmbedding) Close() error {
	e.client.close()
	return nil
}

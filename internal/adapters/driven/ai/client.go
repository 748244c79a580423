package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/metrics"
)

// providerClient is the OpenAI-compatible transport shared by the embedding
// and chat services: provider base URL, per-key pacing, per-attempt timeout
// and bounded retries.
type providerClient struct {
	provider   domain.AIProvider
	api        *openai.Client
	httpClient *http.Client
	limiter    *rate.Limiter
	policy     retryPolicy
	timeout    time.Duration
	logger     *slog.Logger
}

func newProviderClient(provider domain.AIProvider, apiKey, baseURL string, cs domain.ClientSettings, limiter *rate.Limiter, logger *slog.Logger) *providerClient {
	cs = cs.WithDefaults()
	if baseURL == "" {
		baseURL = provider.DefaultBaseURL()
	}
	if limiter == nil {
		limiter = newLimiter(cs.RequestsPerSecond)
	}
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := &http.Client{}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	cfg.HTTPClient = httpClient

	return &providerClient{
		provider:   provider,
		api:        openai.NewClientWithConfig(cfg),
		httpClient: httpClient,
		limiter:    limiter,
		policy:     defaultRetryPolicy(cs.MaxRetries),
		timeout:    cs.Timeout,
		logger:     logger,
	}
}

func newLimiter(rps float64) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
}

// call runs op with pacing, a per-attempt timeout and bounded retries
func (c *providerClient) call(ctx context.Context, operation string, op func(ctx context.Context) error) error {
	return c.policy.do(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return op(attemptCtx)
	}, func(retry int, err error) {
		metrics.ProviderRetriesTotal.WithLabelValues(string(c.provider), operation).Inc()
		c.logger.Warn("retrying provider call",
			"provider", c.provider,
			"operation", operation,
			"retry", retry,
			"status", statusCode(err),
			"error", err)
	})
}

func (c *providerClient) close() {
	c.httpClient.CloseIdleConnections()
}

// wrapProviderError extracts a human-readable message from a go-openai error
// and wraps it with the domain sentinel.
func wrapProviderError(operation string, err error, sentinel error) error {
	if errors.Is(err, errEmptyResponse) {
		return fmt.Errorf("%s API returned no usable result: %w", operation, sentinel)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("%s API error %d: %s: %w", operation, reqErr.HTTPStatusCode, detail, sentinel)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s API error %d: %s: %w", operation, apiErr.HTTPStatusCode, apiErr.Message, sentinel)
	}

	return fmt.Errorf("%s request failed: %v: %w", operation, err, sentinel)
}

// extractDetail extracts the "detail" field from a JSON error body (Nebius error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}

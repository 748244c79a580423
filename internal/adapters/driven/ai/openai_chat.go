package ai

import (
	"context"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/metrics"
)

// Ensure OpenAIChat implements ChatService
var _ driven.ChatService = (*OpenAIChat)(nil)

// Chat defaults
const (
	DefaultChatModel   = "gpt-4o-mini"
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 1200
)

// OpenAIChat implements ChatService against any OpenAI-compatible
// chat-completions endpoint.
type OpenAIChat struct {
	client      *providerClient
	model       string
	temperature float32
	maxTokens   int
}

// NewOpenAIChat creates a new chat-completion service. limiter may be nil.
func NewOpenAIChat(settings *domain.LLMSettings, limiter *rate.Limiter, logger *slog.Logger) (*OpenAIChat, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	model := settings.Model
	if model == "" {
		model = DefaultChatModel
	}
	temperature := settings.Temperature
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	maxTokens := settings.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	return &OpenAIChat{
		client:      newProviderClient(settings.Provider, settings.APIKey, settings.BaseURL, settings.Client, limiter, logger),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}, nil
}

// Complete sends the messages and returns the content of the first choice.
// Request temperature and token limits override the configured defaults when set.
func (c *OpenAIChat) Complete(ctx context.Context, req domain.ChatRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	creq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	if req.Temperature > 0 {
		creq.Temperature = req.Temperature
	}
	if req.MaxTokens > 0 {
		creq.MaxTokens = req.MaxTokens
	}
	if req.JSONMode {
		creq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	provider := string(c.client.provider)
	start := time.Now()

	var content string
	err := c.client.call(ctx, "chat", func(ctx context.Context) error {
		resp, err := c.client.api.CreateChatCompletion(ctx, creq)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
			return errEmptyResponse
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues(provider, c.model, "error").Inc()
		return "", wrapProviderError("chat", err, domain.ErrChatProvider)
	}

	metrics.ChatRequestsTotal.WithLabelValues(provider, c.model, "success").Inc()
	metrics.ChatRequestDuration.WithLabelValues(provider, c.model).Observe(time.Since(start).Seconds())
	return content, nil
}

// Model returns the model name being used
func (c *OpenAIChat) Model() string {
	return c.model
}

// Close releases resources held by the chat service
func (c *OpenAIChat) Close() error {
	c.client.close()
	return nil
}

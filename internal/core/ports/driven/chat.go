package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// ChatService provides chat completions for answer and panel generation
type ChatService interface {
	// Complete sends the messages and returns the text of the first choice
	Complete(ctx context.Context, req domain.ChatRequest) (string, error)

	// Model returns the model name being used
	Model() string

	// Close releases resources held by the chat service
	Close() error
}

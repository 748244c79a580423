package domain

import (
	"errors"
	"fmt"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested document or fund was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates a malformed or incomplete request
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingProvider indicates the upstream embedding call failed
	ErrEmbeddingProvider = errors.New("embedding provider error")

	// ErrChatProvider indicates the upstream chat-completion call failed
	ErrChatProvider = errors.New("chat provider error")

	// ErrGrounding indicates the model output did not cite the supplied evidence
	ErrGrounding = errors.New("answer is not grounded in the supplied context")

	// ErrTransaction indicates a storage write failed mid-ingestion and was rolled back
	ErrTransaction = errors.New("transaction failed")

	// ErrProviderConfig indicates an AI provider is unknown or missing its credential
	ErrProviderConfig = errors.New("invalid provider configuration")
)

// ValidationError describes a single rejected request field.
// It unwraps to ErrInvalidInput.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidInput.Error(), e.Message)
	}
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput.Error(), e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError creates a validation error for the given field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Error codes reported to API callers
const (
	CodeValidation        = "validation_error"
	CodeNotFound          = "not_found"
	CodeEmbeddingProvider = "embedding_provider_error"
	CodeChatProvider      = "chat_provider_error"
	CodeGrounding         = "grounding_error"
	CodeTransaction       = "transaction_error"
	CodeInternal          = "internal_error"
)

// ErrorCode maps an error to its API error code.
// Validation and not-found take precedence over provider errors so a wrapped
// rejection is never reported as an upstream failure.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return CodeValidation
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrGrounding):
		return CodeGrounding
	case errors.Is(err, ErrEmbeddingProvider):
		return CodeEmbeddingProvider
	case errors.Is(err, ErrChatProvider):
		return CodeChatProvider
	case errors.Is(err, ErrTransaction):
		return CodeTransaction
	default:
		return CodeInternal
	}
}

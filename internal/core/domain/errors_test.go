package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrNotFound", ErrNotFound, "not found"},
		{"ErrInvalidInput", ErrInvalidInput, "invalid input"},
		{"ErrEmbeddingProvider", ErrEmbeddingProvider, "embedding provider error"},
		{"ErrChatProvider", ErrChatProvider, "chat provider error"},
		{"ErrTransaction", ErrTransaction, "transaction failed"},
		{"ErrProviderConfig", ErrProviderConfig, "invalid provider configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, tt.err.Error())
			}
		})
	}
}

func TestValidationError_UnwrapsToInvalidInput(t *testing.T) {
	err := NewValidationError("document.title", "is required")

	if !errors.Is(err, ErrInvalidInput) {
		t.Fatal("expected validation error to unwrap to ErrInvalidInput")
	}
	if err.Error() != "invalid input: document.title is required" {
		t.Errorf("unexpected message %q", err.Error())
	}

	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "document.title" {
		t.Errorf("expected field document.title, got %+v", ve)
	}
}

func TestValidationError_NoField(t *testing.T) {
	err := NewValidationError("", "text or chunks is required")
	if err.Error() != "invalid input: text or chunks is required" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{nil, ""},
		{NewValidationError("x", "bad"), CodeValidation},
		{fmt.Errorf("get fund: %w", ErrNotFound), CodeNotFound},
		{fmt.Errorf("embed chunk 2: %w", ErrEmbeddingProvider), CodeEmbeddingProvider},
		{fmt.Errorf("complete: %w", ErrChatProvider), CodeChatProvider},
		{ErrGrounding, CodeGrounding},
		{fmt.Errorf("upsert chunk: %w", ErrTransaction), CodeTransaction},
		{errors.New("boom"), CodeInternal},
	}

	for _, tt := range tests {
		if got := ErrorCode(tt.err); got != tt.code {
			t.Errorf("ErrorCode(%v) = %q, want %q", tt.err, got, tt.code)
		}
	}
}

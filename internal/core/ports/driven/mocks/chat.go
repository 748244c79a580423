package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

var _ driven.ChatService = (*MockChatService)(nil)

// MockChatService returns scripted replies and records requests
type MockChatService struct {
	mu       sync.Mutex
	replies  []string
	err      error
	requests []domain.ChatRequest
}

// NewMockChatService creates a MockChatService that answers with replies in order.
// The last reply is repeated once the list is exhausted.
func NewMockChatService(replies ...string) *MockChatService {
	return &MockChatService{replies: replies}
}

func (m *MockChatService) Complete(ctx context.Context, req domain.ChatRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	if m.err != nil {
		return "", fmt.Errorf("chat completion failed: %w", m.err)
	}
	if len(m.replies) == 0 {
		return "", fmt.Errorf("no scripted reply: %w", domain.ErrChatProvider)
	}
	reply := m.replies[0]
	if len(m.replies) > 1 {
		m.replies = m.replies[1:]
	}
	return reply, nil
}

func (m *MockChatService) Model() string {
	return "mock-chat-model"
}

func (m *MockChatService) Close() error {
	return nil
}

// SetError makes every call fail with err
func (m *MockChatService) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the number of Complete calls
func (m *MockChatService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// LastRequest returns the most recent request
func (m *MockChatService) LastRequest() domain.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return domain.ChatRequest{}
	}
	return m.requests[len(m.requests)-1]
}

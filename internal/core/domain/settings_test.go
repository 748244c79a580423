package domain

import (
	"errors"
	"testing"
	"time"
)

func TestAIProvider_IsValid(t *testing.T) {
	for _, p := range []AIProvider{AIProviderOpenAI, AIProviderOpenRouter, AIProviderTogether, AIProviderNebius} {
		if !p.IsValid() {
			t.Errorf("expected %s to be valid", p)
		}
		if p.DefaultBaseURL() == "" {
			t.Errorf("expected default base URL for %s", p)
		}
		if p.CredentialEnv() == "" {
			t.Errorf("expected credential env for %s", p)
		}
	}
	if AIProvider("anthropic").IsValid() {
		t.Error("expected unknown provider to be invalid")
	}
}

func TestProvidersUseDistinctCredentials(t *testing.T) {
	seen := map[string]AIProvider{}
	for _, p := range []AIProvider{AIProviderOpenAI, AIProviderOpenRouter, AIProviderTogether, AIProviderNebius} {
		if other, ok := seen[p.CredentialEnv()]; ok {
			t.Errorf("%s and %s share credential %s", p, other, p.CredentialEnv())
		}
		seen[p.CredentialEnv()] = p
	}
}

func TestEmbeddingSettings_Validate(t *testing.T) {
	ok := EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk-test"}
	if err := ok.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	missingKey := EmbeddingSettings{Provider: AIProviderTogether}
	if err := missingKey.Validate(); !errors.Is(err, ErrProviderConfig) {
		t.Errorf("expected ErrProviderConfig, got %v", err)
	}

	unknown := LLMSettings{Provider: "mystery", APIKey: "k"}
	if err := unknown.Validate(); !errors.Is(err, ErrProviderConfig) {
		t.Errorf("expected ErrProviderConfig, got %v", err)
	}
}

func TestClientSettings_WithDefaults(t *testing.T) {
	c := ClientSettings{MaxRetries: -2}.WithDefaults()
	if c.Timeout != DefaultRequestTimeout {
		t.Errorf("expected default timeout, got %v", c.Timeout)
	}
	if c.MaxRetries != 0 {
		t.Errorf("expected negative retries clamped to 0, got %d", c.MaxRetries)
	}
	if c.RequestsPerSecond != DefaultRequestsPerSecond {
		t.Errorf("expected default rate, got %v", c.RequestsPerSecond)
	}

	custom := ClientSettings{Timeout: time.Second, MaxRetries: 5, RequestsPerSecond: 1}.WithDefaults()
	if custom.Timeout != time.Second || custom.MaxRetries != 5 || custom.RequestsPerSecond != 1 {
		t.Errorf("expected custom values kept, got %+v", custom)
	}
}

package domain

import (
	"fmt"
	"time"
)

// AIProvider identifies an OpenAI-compatible embedding/chat backend
type AIProvider string

const (
	AIProviderOpenAI     AIProvider = "openai"
	AIProviderOpenRouter AIProvider = "openrouter"
	AIProviderTogether   AIProvider = "together"
	AIProviderNebius     AIProvider = "nebius"
)

// providerDefaults holds the base URL and credential variable of each provider
var providerDefaults = map[AIProvider]struct {
	baseURL string
	keyEnv  string
}{
	AIProviderOpenAI:     {baseURL: "https://api.openai.com/v1", keyEnv: "OPENAI_API_KEY"},
	AIProviderOpenRouter: {baseURL: "https://openrouter.ai/api/v1", keyEnv: "OPENROUTER_API_KEY"},
	AIProviderTogether:   {baseURL: "https://api.together.xyz/v1", keyEnv: "TOGETHER_API_KEY"},
	AIProviderNebius:     {baseURL: "https://api.studio.nebius.ai/v1", keyEnv: "NEBIUS_API_KEY"},
}

// IsValid returns true if this is a known provider
func (p AIProvider) IsValid() bool {
	_, ok := providerDefaults[p]
	return ok
}

// DefaultBaseURL returns the provider's public API endpoint
func (p AIProvider) DefaultBaseURL() string {
	return providerDefaults[p].baseURL
}

// CredentialEnv returns the environment variable holding the provider's API key
func (p AIProvider) CredentialEnv() string {
	return providerDefaults[p].keyEnv
}

// Client hardening defaults
const (
	DefaultRequestTimeout    = 30 * time.Second
	DefaultMaxRetries        = 3
	DefaultRequestsPerSecond = 5.0
)

// ClientSettings configures timeouts, retries and pacing of provider calls
type ClientSettings struct {
	Timeout           time.Duration `json:"timeout"`
	MaxRetries        int           `json:"max_retries"`
	RequestsPerSecond float64       `json:"requests_per_second"`
}

// WithDefaults fills unset fields
func (c ClientSettings) WithDefaults() ClientSettings {
	if c.Timeout <= 0 {
		c.Timeout = DefaultRequestTimeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = DefaultRequestsPerSecond
	}
	return c
}

// EmbeddingSettings configures the embedding service
type EmbeddingSettings struct {
	Provider   AIProvider     `json:"provider"`
	Model      string         `json:"model"`
	Dimensions int            `json:"dimensions"`
	APIKey     string         `json:"-"` // Never serialize to JSON
	BaseURL    string         `json:"base_url,omitempty"`
	Client     ClientSettings `json:"client"`
}

// Validate checks the provider and its credential
func (e *EmbeddingSettings) Validate() error {
	return validateProvider(e.Provider, e.APIKey)
}

// LLMSettings configures the chat-completion service
type LLMSettings struct {
	Provider    AIProvider     `json:"provider"`
	Model       string         `json:"model"`
	APIKey      string         `json:"-"` // Never serialize to JSON
	BaseURL     string         `json:"base_url,omitempty"`
	Temperature float32        `json:"temperature"`
	MaxTokens   int            `json:"max_tokens"`
	Client      ClientSettings `json:"client"`
}

// Validate checks the provider and its credential
func (l *LLMSettings) Validate() error {
	return validateProvider(l.Provider, l.APIKey)
}

func validateProvider(p AIProvider, apiKey string) error {
	if !p.IsValid() {
		return fmt.Errorf("%w: unknown provider %q", ErrProviderConfig, p)
	}
	if apiKey == "" {
		return fmt.Errorf("%w: %s is not set for provider %s", ErrProviderConfig, p.CredentialEnv(), p)
	}
	return nil
}

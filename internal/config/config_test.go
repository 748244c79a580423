package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "DATABASE_URL", "REDIS_URL", "PORT", "EMBEDDING_PROVIDER",
		"EMBEDDING_MODEL", "EMBEDDING_BASE_URL", "EMBEDDING_DIMENSIONS", "LLM_PROVIDER",
		"LLM_MODEL", "LLM_BASE_URL", "LLM_MAX_TOKENS", "LLM_TEMPERATURE", "AUTH_JWT_SECRET",
		"LOG_LEVEL", "AI_REQUEST_TIMEOUT_SEC", "AI_MAX_RETRIES", "AI_REQUESTS_PER_SECOND",
		"EMBEDDING_CACHE_TTL_SEC", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
		"DB_CONN_MAX_LIFETIME_SEC", "DB_CONN_MAX_IDLE_TIME_SEC", "CORS_ORIGINS",
		"OPENAI_API_KEY", "OPENROUTER_API_KEY", "TOGETHER_API_KEY", "NEBIUS_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_EnvironmentOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/rag")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PORT", "9090")

	cfg, err := Load("does-not-exist")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "postgres://localhost/rag", cfg.Database.URL)
	assert.Equal(t, DefaultEmbeddingModel, cfg.Embedding.Model)
	assert.Equal(t, DefaultEmbeddingDims, cfg.Embedding.Dimensions)
	assert.Equal(t, "sk-test", cfg.Embedding.APIKey)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, 24*time.Hour, cfg.Redis.CacheTTL())
}

func TestLoad_YAMLWithExpansion(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEST_DB_URL", "postgres://db/expanded")
	t.Setenv("CONFIG_FILE", writeConfig(t, `
http:
  port: ${TEST_PORT:-8181}
  cors_origins: ["https://app.example.com"]
database:
  url: ${TEST_DB_URL}
embedding:
  provider: together
  model: BAAI/bge-base-en-v1.5
  dimensions: 768
  api_key: tk-embed
llm:
  provider: openrouter
  model: meta-llama/llama-3.1-70b-instruct
  api_key: or-chat
  max_tokens: 1200
ai:
  request_timeout_sec: 10
  max_retries: 5
  requests_per_second: 2.5
retrieval:
  metric_snapshots: 4
`))

	cfg, err := Load("local")
	require.NoError(t, err)

	assert.Equal(t, 8181, cfg.HTTP.Port)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "postgres://db/expanded", cfg.Database.URL)
	assert.Equal(t, 4, cfg.Retrieval.MetricSnapshots)

	emb := cfg.EmbeddingSettings()
	assert.Equal(t, domain.AIProviderTogether, emb.Provider)
	assert.Equal(t, 768, emb.Dimensions)
	assert.Equal(t, 10*time.Second, emb.Client.Timeout)
	assert.Equal(t, 5, emb.Client.MaxRetries)
	assert.InDelta(t, 2.5, emb.Client.RequestsPerSecond, 1e-9)

	llm := cfg.LLMSettings()
	assert.Equal(t, domain.AIProviderOpenRouter, llm.Provider)
	assert.Equal(t, "or-chat", llm.APIKey)
	assert.Equal(t, 1200, llm.MaxTokens)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", writeConfig(t, `
database:
  url: postgres://from-file
embedding:
  api_key: a
llm:
  api_key: b
logging:
  level: info
`))
	t.Setenv("DATABASE_URL", "postgres://from-env")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("local")
	require.NoError(t, err)
	assert.Equal(t, "postgres://from-env", cfg.Database.URL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing database url",
			env:  map[string]string{"OPENAI_API_KEY": "k"},
		},
		{
			name: "missing provider credential",
			env:  map[string]string{"DATABASE_URL": "postgres://x"},
		},
		{
			name: "unknown provider",
			env:  map[string]string{"DATABASE_URL": "postgres://x", "OPENAI_API_KEY": "k", "LLM_PROVIDER": "acme"},
		},
		{
			name: "malformed integer",
			env:  map[string]string{"DATABASE_URL": "postgres://x", "OPENAI_API_KEY": "k", "PORT": "eighty"},
		},
		{
			name: "port out of range",
			env:  map[string]string{"DATABASE_URL": "postgres://x", "OPENAI_API_KEY": "k", "PORT": "70000"},
		},
		{
			name: "bad log level",
			env:  map[string]string{"DATABASE_URL": "postgres://x", "OPENAI_API_KEY": "k", "LOG_LEVEL": "loud"},
		},
		{
			name: "too many dimensions",
			env:  map[string]string{"DATABASE_URL": "postgres://x", "OPENAI_API_KEY": "k", "EMBEDDING_DIMENSIONS": "20000"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("does-not-exist")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingCredentialIsProviderConfigError(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://x")

	_, err := Load("does-not-exist")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderConfig)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestLoad_UnreadableFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load("local")
	assert.Error(t, err)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SET_VAR", "value")
	t.Setenv("EMPTY_VAR", "")

	tests := []struct {
		in   string
		want string
	}{
		{"a: ${SET_VAR}", "a: value"},
		{"a: ${SET_VAR:-fallback}", "a: value"},
		{"a: ${EMPTY_VAR:-fallback}", "a: fallback"},
		{"a: ${EMPTY_VAR}", "a: "},
		{"a: plain", "a: plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(expandEnvVars([]byte(tt.in))))
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	assert.Equal(t, "local", GetEnv())

	t.Setenv("ENV", "prod")
	assert.Equal(t, "prod", GetEnv())
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Config is the service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	AI        AIClientConfig  `yaml:"ai"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	CORSOrigins     []string `yaml:"cors_origins"`
}

// DatabaseConfig configures the Postgres pool.
type DatabaseConfig struct {
	URL                string `yaml:"url"`
	MaxOpenConns       int    `yaml:"max_open_conns"`
	MaxIdleConns       int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeSec int    `yaml:"conn_max_lifetime_sec"`
	ConnMaxIdleTimeSec int    `yaml:"conn_max_idle_time_sec"`
}

// RedisConfig configures the optional query-embedding cache.
// An empty URL disables the cache.
type RedisConfig struct {
	URL         string `yaml:"url"`
	CacheTTLSec int    `yaml:"cache_ttl_sec"`
}

// EmbeddingConfig selects the embedding provider and model.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
}

// LLMConfig selects the chat-completion provider and model.
type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// AIClientConfig hardens every provider call.
type AIClientConfig struct {
	RequestTimeoutSec int     `yaml:"request_timeout_sec"`
	MaxRetries        int     `yaml:"max_retries"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// AuthConfig configures API token verification.
// An empty secret leaves the API unauthenticated.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// RetrievalConfig bounds the structured context handed to the generators.
type RetrievalConfig struct {
	MetricSnapshots int `yaml:"metric_snapshots"`
	BenchmarkPoints int `yaml:"benchmark_points"`
}

// Defaults
const (
	DefaultPort           = 8080
	DefaultEmbeddingModel = "text-embedding-3-small"
	DefaultEmbeddingDims  = 1536
	DefaultLLMModel       = "gpt-4o-mini"
	DefaultTemperature    = 0.1
	DefaultMaxTokens      = 800
	DefaultCacheTTLSec    = 24 * 60 * 60
	DefaultLogLevel       = "info"

	// maxDimensions is the widest vector a pgvector column accepts
	maxDimensions = 16000
)

// Load reads the optional YAML file for env, overlays environment variables,
// applies defaults and validates the result.
func Load(env string) (Config, error) {
	var cfg Config

	path := findConfigPath(env)
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}

		// Substitute env variables of the form ${VAR}
		data = expandEnvVars(data)

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, fmt.Errorf("invalid environment: %w", err)
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Host == "" {
		c.HTTP.Host = "0.0.0.0"
	}
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = DefaultPort
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 30
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetimeSec <= 0 {
		c.Database.ConnMaxLifetimeSec = 300
	}
	if c.Database.ConnMaxIdleTimeSec <= 0 {
		c.Database.ConnMaxIdleTimeSec = 60
	}
	if c.Redis.CacheTTLSec <= 0 {
		c.Redis.CacheTTLSec = DefaultCacheTTLSec
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = string(domain.AIProviderOpenAI)
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = DefaultEmbeddingModel
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = DefaultEmbeddingDims
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = string(domain.AIProviderOpenAI)
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultLLMModel
	}
	if c.LLM.Temperature <= 0 {
		c.LLM.Temperature = DefaultTemperature
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = DefaultMaxTokens
	}
	if c.Embedding.APIKey == "" {
		c.Embedding.APIKey = os.Getenv(domain.AIProvider(c.Embedding.Provider).CredentialEnv())
	}
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv(domain.AIProvider(c.LLM.Provider).CredentialEnv())
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if c.Embedding.Dimensions > maxDimensions {
		return fmt.Errorf("embedding.dimensions must not exceed %d, got %d",
			maxDimensions, c.Embedding.Dimensions)
	}
	if c.AI.MaxRetries < 0 {
		return fmt.Errorf("ai.max_retries must not be negative, got %d", c.AI.MaxRetries)
	}
	if c.Retrieval.MetricSnapshots < 0 || c.Retrieval.BenchmarkPoints < 0 {
		return errors.New("retrieval limits must not be negative")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}

	embedding := c.EmbeddingSettings()
	if err := embedding.Validate(); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	llm := c.LLMSettings()
	if err := llm.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	return nil
}

// EmbeddingSettings converts the embedding section to provider settings.
func (c *Config) EmbeddingSettings() domain.EmbeddingSettings {
	return domain.EmbeddingSettings{
		Provider:   domain.AIProvider(c.Embedding.Provider),
		Model:      c.Embedding.Model,
		Dimensions: c.Embedding.Dimensions,
		APIKey:     c.Embedding.APIKey,
		BaseURL:    c.Embedding.BaseURL,
		Client:     c.clientSettings(),
	}
}

// LLMSettings converts the llm section to provider settings.
func (c *Config) LLMSettings() domain.LLMSettings {
	return domain.LLMSettings{
		Provider:    domain.AIProvider(c.LLM.Provider),
		Model:       c.LLM.Model,
		APIKey:      c.LLM.APIKey,
		BaseURL:     c.LLM.BaseURL,
		Temperature: c.LLM.Temperature,
		MaxTokens:   c.LLM.MaxTokens,
		Client:      c.clientSettings(),
	}
}

func (c *Config) clientSettings() domain.ClientSettings {
	return domain.ClientSettings{
		Timeout:           time.Duration(c.AI.RequestTimeoutSec) * time.Second,
		MaxRetries:        c.AI.MaxRetries,
		RequestsPerSecond: c.AI.RequestsPerSecond,
	}.WithDefaults()
}

// ReadTimeout returns the server read timeout
func (c *HTTPConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSec) * time.Second
}

// WriteTimeout returns the server write timeout
func (c *HTTPConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSec) * time.Second
}

// CacheTTL returns the embedding cache entry lifetime
func (c *RedisConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

// applyEnv overlays the environment variables documented in the README.
func (c *Config) applyEnv() error {
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Redis.URL, "REDIS_URL")
	setString(&c.Embedding.Provider, "EMBEDDING_PROVIDER")
	setString(&c.Embedding.Model, "EMBEDDING_MODEL")
	setString(&c.Embedding.BaseURL, "EMBEDDING_BASE_URL")
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	setString(&c.Auth.JWTSecret, "AUTH_JWT_SECRET")
	setString(&c.Logging.Level, "LOG_LEVEL")

	ints := []struct {
		dst *int
		key string
	}{
		{&c.HTTP.Port, "PORT"},
		{&c.Embedding.Dimensions, "EMBEDDING_DIMENSIONS"},
		{&c.LLM.MaxTokens, "LLM_MAX_TOKENS"},
		{&c.AI.RequestTimeoutSec, "AI_REQUEST_TIMEOUT_SEC"},
		{&c.AI.MaxRetries, "AI_MAX_RETRIES"},
		{&c.Redis.CacheTTLSec, "EMBEDDING_CACHE_TTL_SEC"},
		{&c.Database.MaxOpenConns, "DB_MAX_OPEN_CONNS"},
		{&c.Database.MaxIdleConns, "DB_MAX_IDLE_CONNS"},
		{&c.Database.ConnMaxLifetimeSec, "DB_CONN_MAX_LIFETIME_SEC"},
		{&c.Database.ConnMaxIdleTimeSec, "DB_CONN_MAX_IDLE_TIME_SEC"},
	}
	for _, v := range ints {
		if err := setInt(v.dst, v.key); err != nil {
			return err
		}
	}

	if raw := os.Getenv("AI_REQUESTS_PER_SECOND"); raw != "" {
		rps, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("AI_REQUESTS_PER_SECOND: %w", err)
		}
		c.AI.RequestsPerSecond = rps
	}
	if raw := os.Getenv("LLM_TEMPERATURE"); raw != "" {
		t, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return fmt.Errorf("LLM_TEMPERATURE: %w", err)
		}
		c.LLM.Temperature = float32(t)
	}
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		c.HTTP.CORSOrigins = strings.Split(raw, ",")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = v
	return nil
}

// findConfigPath locates the config file. CONFIG_FILE wins over config/<env>.yaml.
// An empty result means no file is present and only the environment is used.
func findConfigPath(env string) string {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return path
	}
	if path := filepath.Join("config", env+".yaml"); fileExists(path) {
		return path
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

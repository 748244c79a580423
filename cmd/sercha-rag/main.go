package main

// @title           Sercha RAG API
// @version         1.0
// @description     Grounded retrieval context pipeline. Ingests fund documents into pgvector, serves similarity search and structured fund context, and generates cited answers and summary panels.

// @contact.name   Sercha OSS
// @contact.url    https://github.com/custodia-labs/sercha-rag/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/auth"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/sercha-rag/internal/adapters/driven/redis"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/http"
	"github.com/custodia-labs/sercha-rag/internal/config"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/metrics"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := runToken(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "token:", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(config.GetEnv())
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging.Level)
	slog.SetDefault(logger)
	logger.Info("sercha-rag starting", "version", version, "env", config.GetEnv())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("sercha-rag stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("sercha-rag stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	metrics.Register()

	// Connect to PostgreSQL
	db, err := postgres.Connect(ctx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetimeSec) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Database.ConnMaxIdleTimeSec) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.InitSchema(ctx, cfg.Embedding.Dimensions); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	logger.Info("connected to postgres", "dimensions", cfg.Embedding.Dimensions)

	// AI services
	var factory driven.AIServiceFactory = ai.NewFactory(logger)
	embeddingSettings := cfg.EmbeddingSettings()
	embedder, err := factory.CreateEmbeddingService(&embeddingSettings)
	if err != nil {
		return fmt.Errorf("create embedding service: %w", err)
	}
	defer func() { _ = embedder.Close() }()

	llmSettings := cfg.LLMSettings()
	chat, err := factory.CreateChatService(&llmSettings)
	if err != nil {
		return fmt.Errorf("create chat service: %w", err)
	}
	defer func() { _ = chat.Close() }()

	// Redis is optional; without it query embeddings are not cached
	var cache http.Pinger
	queryEmbedder := embedder
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		defer func() { _ = client.Close() }()

		embeddingCache := redisadapter.NewEmbeddingCache(client, cfg.Redis.CacheTTL())
		if err := embeddingCache.Ping(ctx); err != nil {
			logger.Warn("redis unavailable, embedding cache disabled", "error", err)
		} else {
			cache = embeddingCache
			queryEmbedder = ai.NewCachedEmbedding(embedder, embeddingCache, logger)
			logger.Info("embedding cache enabled", "ttl", cfg.Redis.CacheTTL())
		}
	}

	// Stores and services
	documentStore := postgres.NewDocumentStore(db)
	contextStore := postgres.NewContextStore(db, logger)

	ingestService := services.NewIngestService(services.IngestServiceConfig{
		Store:    documentStore,
		Embedder: embedder,
		Logger:   logger,
	})
	searchService := services.NewSearchService(documentStore, queryEmbedder, logger)
	contextService := services.NewContextService(contextStore, logger)
	answerService := services.NewAnswerService(services.AnswerServiceConfig{
		Chat:        chat,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Logger:      logger,
	})
	questionService := services.NewQuestionService(services.QuestionServiceConfig{
		Search:          searchService,
		Context:         contextService,
		Answers:         answerService,
		MetricSnapshots: cfg.Retrieval.MetricSnapshots,
		BenchmarkPoints: cfg.Retrieval.BenchmarkPoints,
		Logger:          logger,
	})

	var tokens driven.TokenAdapter
	if cfg.Auth.JWTSecret != "" {
		tokens = auth.NewAdapter(cfg.Auth.JWTSecret)
	} else {
		logger.Warn("AUTH_JWT_SECRET is not set, API is unauthenticated")
	}

	server := http.NewServer(
		http.Config{
			Host:         cfg.HTTP.Host,
			Port:         cfg.HTTP.Port,
			Version:      version,
			ReadTimeout:  cfg.HTTP.ReadTimeout(),
			WriteTimeout: cfg.HTTP.WriteTimeout(),
			CORSOrigins:  cfg.HTTP.CORSOrigins,
		},
		ingestService,
		searchService,
		contextService,
		questionService,
		tokens,
		db,
		cache,
		logger,
	)

	return server.Start(ctx)
}

// runToken mints an API token: sercha-rag token <subject> [read,write]
func runToken(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: sercha-rag token <subject> [scopes]")
	}
	secret := os.Getenv("AUTH_JWT_SECRET")
	if secret == "" {
		return errors.New("AUTH_JWT_SECRET is not set")
	}

	scopes := []domain.Scope{domain.ScopeRead}
	if len(args) > 1 {
		scopes = scopes[:0]
		for _, s := range strings.Split(args[1], ",") {
			scopes = append(scopes, domain.Scope(strings.TrimSpace(s)))
		}
	}

	token, err := auth.NewAdapter(secret).GenerateToken(&domain.TokenClaims{
		Subject: args[0],
		Scopes:  scopes,
	})
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/metrics"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	logger     *slog.Logger

	// Services
	ingestService   driving.IngestService
	searchService   driving.SearchService
	contextService  driving.ContextService
	questionService driving.QuestionService

	// Infrastructure
	tokens driven.TokenAdapter // nil disables authentication
	db     Pinger              // PostgreSQL health check
	cache  Pinger              // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	Version      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

// DefaultConfig returns sensible defaults.
// The write timeout leaves room for embedding plus chat-completion round trips.
func DefaultConfig() Config {
	return Config{
		Host:         "0.0.0.0",
		Port:         8080,
		Version:      "dev",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	ingestService driving.IngestService,
	searchService driving.SearchService,
	contextService driving.ContextService,
	questionService driving.QuestionService,
	tokens driven.TokenAdapter, // can be nil
	db Pinger,
	cache Pinger, // can be nil
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		router:          http.NewServeMux(),
		version:         cfg.Version,
		logger:          logger,
		ingestService:   ingestService,
		searchService:   searchService,
		contextService:  contextService,
		questionService: questionService,
		tokens:          tokens,
		db:              db,
		cache:           cache,
	}

	s.setupRoutes()

	var handler http.Handler = s.router
	handler = metrics.Middleware(handler)
	handler = NewLoggingMiddleware(logger).Handler(handler)
	if len(cfg.CORSOrigins) > 0 {
		handler = NewCORSMiddleware(cfg.CORSOrigins).Handler(handler)
	}
	handler = NewRecoveryMiddleware(logger).Handler(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	auth := NewAuthMiddleware(s.tokens)
	read := func(h http.HandlerFunc) http.Handler {
		return auth.Authenticate(auth.RequireScope(domain.ScopeRead)(h))
	}
	write := func(h http.HandlerFunc) http.Handler {
		return auth.Authenticate(auth.RequireScope(domain.ScopeWrite)(h))
	}

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)
	s.router.Handle("GET /metrics", promhttp.Handler())
	s.router.HandleFunc("GET /api/v1/openapi.json", s.handleOpenAPI)

	// Ingestion
	s.router.Handle("POST /api/v1/ingest", write(s.handleIngest))
	s.router.Handle("GET /api/v1/documents/{id}", read(s.handleGetDocument))
	s.router.Handle("DELETE /api/v1/documents/{id}", write(s.handleDeleteDocument))

	// Search
	s.router.Handle("POST /api/v1/search", read(s.handleSearch))

	// Question answering
	s.router.Handle("GET /api/v1/funds/{fundId}/ask", read(s.handleAskQuery))
	s.router.Handle("POST /api/v1/funds/{fundId}/ask", read(s.handleAsk))
	s.router.Handle("POST /api/v1/funds/{fundId}/panel", read(s.handlePanel))

	// Context
	s.router.Handle("GET /api/v1/funds/{fundId}", read(s.handleGetFund))
	s.router.Handle("GET /api/v1/funds/{fundId}/metrics", read(s.handleFundMetrics))
	s.router.Handle("GET /api/v1/funds/{fundId}/cash-flows", read(s.handleCashFlows))
	s.router.Handle("GET /api/v1/funds/{fundId}/documents", read(s.handleCatalog))
	s.router.Handle("GET /api/v1/benchmarks/{code}", read(s.handleBenchmark))
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

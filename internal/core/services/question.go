package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ensure questionService implements QuestionService
var _ driving.QuestionService = (*questionService)(nil)

// Retrieval limits for question answering
const (
	DefaultMetricSnapshots = 8
	DefaultBenchmarkPoints = maxBenchmarkPoints
)

// questionService gathers fund context and hands it to the answer service.
// Fund, metrics, benchmarks and chunks are fetched concurrently.
type questionService struct {
	search          driving.SearchService
	context         driving.ContextService
	answers         driving.AnswerService
	metricSnapshots int
	benchmarkPoints int
	logger          *slog.Logger
}

// QuestionServiceConfig holds dependencies for the question service.
type QuestionServiceConfig struct {
	Search  driving.SearchService
	Context driving.ContextService
	Answers driving.AnswerService

	// MetricSnapshots is the number of most recent metric rows used as context
	MetricSnapshots int

	// BenchmarkPoints is the number of most recent points per benchmark
	BenchmarkPoints int

	Logger *slog.Logger
}

// NewQuestionService creates a new QuestionService
func NewQuestionService(cfg QuestionServiceConfig) driving.QuestionService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metricSnapshots := cfg.MetricSnapshots
	if metricSnapshots <= 0 {
		metricSnapshots = DefaultMetricSnapshots
	}
	benchmarkPoints := cfg.BenchmarkPoints
	if benchmarkPoints <= 0 {
		benchmarkPoints = DefaultBenchmarkPoints
	}

	return &questionService{
		search:          cfg.Search,
		context:         cfg.Context,
		answers:         cfg.Answers,
		metricSnapshots: metricSnapshots,
		benchmarkPoints: benchmarkPoints,
		logger:          logger,
	}
}

// Ask answers a question about a fund
func (s *questionService) Ask(ctx context.Context, req domain.AskRequest) (*domain.AskResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	in, status, err := s.gather(ctx, req, req.Question)
	if err != nil {
		return nil, err
	}

	answer, err := s.answers.Answer(ctx, *in)
	if err != nil {
		return nil, err
	}

	s.logger.Info("question answered",
		"fund_id", req.FundID,
		"chunks", len(in.Chunks),
		"metrics", len(in.Metrics),
		"benchmarks", len(in.Benchmarks),
		"sources", len(answer.Sources),
		"no_context", answer.NoContext,
	)

	return &domain.AskResponse{
		Answer:  answer.Text,
		Sources: answer.Sources,
		Context: status,
	}, nil
}

// Panel builds the summary cards of a fund. The question is optional.
func (s *questionService) Panel(ctx context.Context, req domain.AskRequest) (*domain.PanelResponse, error) {
	if strings.TrimSpace(req.FundID) == "" {
		return nil, domain.NewValidationError("fundId", "is required")
	}

	query := req.Question
	if strings.TrimSpace(query) == "" {
		query = defaultPanelQuestion
	}

	in, status, err := s.gather(ctx, req, query)
	if err != nil {
		return nil, err
	}

	panel, err := s.answers.Panel(ctx, *in)
	if err != nil {
		return nil, err
	}

	s.logger.Info("panel generated",
		"fund_id", req.FundID,
		"cards", len(panel.Cards),
		"degraded", panel.Degraded,
		"no_context", panel.NoContext,
	)

	return &domain.PanelResponse{Panel: panel, Context: status}, nil
}

// gather retrieves every kind of context for the fund concurrently.
// A missing fund or an unprovisioned table narrows the evidence; any other
// failure aborts the request.
func (s *questionService) gather(ctx context.Context, req domain.AskRequest, query string) (*domain.AnswerInput, domain.ContextStatus, error) {
	fundID := strings.TrimSpace(req.FundID)

	var (
		fund       *domain.Fund
		metrics    domain.Availability[domain.FundMetric]
		benchmarks domain.Availability[domain.BenchmarkSeries]
		hits       *domain.SearchResponse
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		f, err := s.context.Fund(gctx, fundID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		fund = f
		return err
	})

	g.Go(func() error {
		var err error
		metrics, err = s.context.FundMetrics(gctx, domain.RangeQuery{
			Key:   fundID,
			Order: domain.SortDescending,
			Limit: s.metricSnapshots,
		})
		return err
	})

	g.Go(func() error {
		var err error
		benchmarks, err = s.context.Benchmarks(gctx, req.BenchmarkCodes, domain.RangeQuery{
			Order: domain.SortDescending,
			Limit: s.benchmarkPoints,
		})
		return err
	})

	g.Go(func() error {
		var err error
		hits, err = s.search.Search(gctx, domain.SearchRequest{
			Query:     query,
			Embedding: req.Embedding,
			FundID:    &fundID,
			Limit:     req.Limit,
		})
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, domain.ContextStatus{}, err
	}

	status := domain.ContextStatus{FundFound: fund != nil}
	markUnavailable(&status, "metrics", metrics.Available, metrics.Reason)
	markUnavailable(&status, "benchmarks", benchmarks.Available, benchmarks.Reason)

	in := &domain.AnswerInput{
		Question:   req.Question,
		Fund:       fund,
		Chunks:     hits.Results,
		Metrics:    metrics.Rows,
		Benchmarks: benchmarks.Rows,
	}
	return in, status, nil
}

func markUnavailable(status *domain.ContextStatus, source string, available bool, reason string) {
	if available {
		return
	}
	if status.Unavailable == nil {
		status.Unavailable = make(map[string]string)
	}
	status.Unavailable[source] = reason
}

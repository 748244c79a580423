package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error { return m.err }

type testEnv struct {
	server   *Server
	docs     *mocks.MockDocumentStore
	ctxStore *mocks.MockContextStore
	embedder *mocks.MockEmbeddingService
	chat     *mocks.MockChatService
	db       *mockPinger
}

func newTestEnv(t *testing.T, tokens driven.TokenAdapter, replies ...string) *testEnv {
	t.Helper()
	env := &testEnv{
		docs:     mocks.NewMockDocumentStore(),
		ctxStore: mocks.NewMockContextStore(),
		embedder: mocks.NewMockEmbeddingService(),
		chat:     mocks.NewMockChatService(replies...),
		db:       &mockPinger{},
	}

	ingest := services.NewIngestService(services.IngestServiceConfig{Store: env.docs, Embedder: env.embedder})
	search := services.NewSearchService(env.docs, env.embedder, nil)
	contexts := services.NewContextService(env.ctxStore, nil)
	questions := services.NewQuestionService(services.QuestionServiceConfig{
		Search:  search,
		Context: contexts,
		Answers: services.NewAnswerService(services.AnswerServiceConfig{Chat: env.chat}),
	})

	cfg := DefaultConfig()
	cfg.Version = "1.2.3"
	env.server = NewServer(cfg, ingest, search, contexts, questions, tokens, env.db, nil, nil)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v))
	return v
}

func TestHealthHandler(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decodeBody[StatusResponse](t, rr).Status)
}

func TestReadyHandler(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, "GET", "/ready", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "healthy", decodeBody[ReadyResponse](t, rr).Services["postgres"])

	env.db.err = errors.New("connection refused")
	rr = env.do(t, "GET", "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestVersionHandler(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, "GET", "/version", nil)
	assert.Equal(t, "1.2.3", decodeBody[VersionResponse](t, rr).Version)
}

func TestOpenAPIHandler(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, "GET", "/api/v1/openapi.json", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc))
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/ingest")
	assert.Contains(t, paths, "/funds/{fundId}/ask")
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, "GET", "/metrics", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHandleIngest(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, "POST", "/api/v1/ingest", domain.IngestRequest{
		Document: domain.Document{ID: "letter", Title: "Q4 Letter"},
		Text:     strings.Repeat("abcdefghij", 300),
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	result := decodeBody[domain.IngestResult](t, rr)
	assert.Equal(t, "letter", result.DocumentID)
	assert.Equal(t, 3, result.ChunksInserted)
}

func TestHandleIngest_Errors(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, "POST", "/api/v1/ingest", "not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, "POST", "/api/v1/ingest", domain.IngestRequest{Text: "no title"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, domain.CodeValidation, decodeBody[ErrorResponse](t, rr).Code)

	env.embedder.SetFailNext(true)
	rr = env.do(t, "POST", "/api/v1/ingest", domain.IngestRequest{
		Document: domain.Document{Title: "t"},
		Text:     "body",
	})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, domain.CodeEmbeddingProvider, decodeBody[ErrorResponse](t, rr).Code)
	assert.Equal(t, 0, env.docs.DocumentCount())
}

func TestHandleGetAndDeleteDocument(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, "POST", "/api/v1/ingest", domain.IngestRequest{
		Document: domain.Document{ID: "letter", Title: "Q4 Letter"},
		Text:     "Net IRR reached 14.2%.",
	})

	rr := env.do(t, "GET", "/api/v1/documents/letter", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	doc := decodeBody[domain.DocumentWithChunks](t, rr)
	require.Len(t, doc.Chunks, 1)
	assert.Empty(t, doc.Chunks[0].Embedding)

	rr = env.do(t, "GET", "/api/v1/documents/letter?include=embeddings", nil)
	doc = decodeBody[domain.DocumentWithChunks](t, rr)
	assert.Len(t, doc.Chunks[0].Embedding, env.embedder.Dimensions())

	rr = env.do(t, "DELETE", "/api/v1/documents/letter", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(t, "GET", "/api/v1/documents/letter", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, domain.CodeNotFound, decodeBody[ErrorResponse](t, rr).Code)
}

func TestHandleSearch(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, "POST", "/api/v1/ingest", domain.IngestRequest{
		Document: domain.Document{ID: "letter", Title: "Q4 Letter"},
		Chunks:   []domain.ChunkInput{{Text: "Two exits closed"}, {Text: "Capital calls slowed"}},
	})

	rr := env.do(t, "POST", "/api/v1/search", domain.SearchRequest{Query: "Two exits closed", Limit: 10000})
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decodeBody[domain.SearchResponse](t, rr)
	assert.Equal(t, domain.MaxSearchLimit, resp.Limit)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "Two exits closed", resp.Results[0].Content)

	rr = env.do(t, "POST", "/api/v1/search", domain.SearchRequest{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, "POST", "/api/v1/search", domain.SearchRequest{Embedding: []float32{0.1}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleAsk(t *testing.T) {
	env := newTestEnv(t, nil, "Net IRR reached 14.2% [M1].")
	irr := 14.2
	env.ctxStore.AddFund(&domain.Fund{ID: "fund-1", Name: "Harbor Growth III"})
	env.ctxStore.AddMetrics(domain.FundMetric{FundID: "fund-1", AsOfDate: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), IRR: &irr})

	rr := env.do(t, "POST", "/api/v1/funds/fund-1/ask", askRequest{Question: "What is the IRR?"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decodeBody[domain.AskResponse](t, rr)
	assert.Equal(t, "Net IRR reached 14.2% [M1].", resp.Answer)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "M1", resp.Sources[0].ID)

	rr = env.do(t, "GET", "/api/v1/funds/fund-1/ask?question=IRR%3F&benchmark=PE-US,VC-US", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, "GET", "/api/v1/funds/fund-1/ask", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, "GET", "/api/v1/funds/fund-1/ask?question=x&limit=many", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleAsk_NoContext(t *testing.T) {
	env := newTestEnv(t, nil, "unused")

	rr := env.do(t, "POST", "/api/v1/funds/ghost/ask", askRequest{Question: "Anything?"})
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decodeBody[domain.AskResponse](t, rr)
	assert.Equal(t, domain.NoContextMessage, resp.Answer)
	assert.Equal(t, 0, env.chat.Calls())
}

func TestHandleAsk_Ungrounded(t *testing.T) {
	env := newTestEnv(t, nil, "It did well.")
	env.ctxStore.AddFund(&domain.Fund{ID: "fund-1", Name: "Harbor Growth III"})

	rr := env.do(t, "POST", "/api/v1/funds/fund-1/ask", askRequest{Question: "How?"})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, domain.CodeGrounding, decodeBody[ErrorResponse](t, rr).Code)
}

func TestHandlePanel(t *testing.T) {
	env := newTestEnv(t, nil, "Performance looks stable [F1] but the format is off")
	env.ctxStore.AddFund(&domain.Fund{ID: "fund-1", Name: "Harbor Growth III"})

	rr := env.do(t, "POST", "/api/v1/funds/fund-1/panel", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decodeBody[domain.PanelResponse](t, rr)
	assert.True(t, resp.Panel.Degraded)
	require.Len(t, resp.Panel.Cards, 1)
	assert.Equal(t, domain.CardSummary, resp.Panel.Cards[0].Kind)
}

func TestHandleContextEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)
	env.ctxStore.AddFund(&domain.Fund{ID: "fund-1", Name: "Harbor Growth III"})
	env.ctxStore.AddBenchmark(domain.BenchmarkSeries{
		Code: "PE-US",
		Name: "US Private Equity",
		Points: []domain.BenchmarkPoint{
			{AsOfDate: time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC), Value: 11},
			{AsOfDate: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), Value: 11.5},
		},
	})
	env.ctxStore.SetMissing("fund_cash_flows")

	rr := env.do(t, "GET", "/api/v1/funds/fund-1", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, "GET", "/api/v1/funds/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, "GET", "/api/v1/benchmarks/PE-US?from=2025-10-01", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	series := decodeBody[domain.Availability[domain.BenchmarkSeries]](t, rr)
	require.Len(t, series.Rows, 1)
	assert.Len(t, series.Rows[0].Points, 1)

	rr = env.do(t, "GET", "/api/v1/funds/fund-1/cash-flows", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	flows := decodeBody[domain.Availability[domain.CashFlow]](t, rr)
	assert.False(t, flows.Available)
	assert.NotNil(t, flows.Rows)

	rr = env.do(t, "GET", "/api/v1/funds/fund-1/metrics?from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, "GET", "/api/v1/funds/fund-1/metrics?from=2025-12-31&to=2025-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, "GET", "/api/v1/funds/fund-1/documents?order=desc&limit=5", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestStatusForCode(t *testing.T) {
	tests := map[string]int{
		domain.CodeValidation:        http.StatusBadRequest,
		domain.CodeNotFound:          http.StatusNotFound,
		domain.CodeGrounding:         http.StatusInternalServerError,
		domain.CodeEmbeddingProvider: http.StatusInternalServerError,
		domain.CodeChatProvider:      http.StatusInternalServerError,
		domain.CodeTransaction:       http.StatusInternalServerError,
		domain.CodeInternal:          http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, statusForCode(code), code)
	}
}

func TestSplitCodes(t *testing.T) {
	assert.Equal(t, []string{"A", "B", "C"}, splitCodes([]string{"A, B", "", "C"}))
	assert.Nil(t, splitCodes(nil))
}

func TestWriteJSON_UnencodableValue(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	s := &Server{logger: logger}

	req := httptest.NewRequest("POST", "/api/v1/search", nil)
	rr := httptest.NewRecorder()
	s.writeJSON(rr, req, http.StatusOK, domain.SearchHit{Distance: math.NaN(), Similarity: math.NaN()})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	body := decodeBody[ErrorResponse](t, rr)
	assert.Equal(t, domain.CodeInternal, body.Code)
	assert.Contains(t, logs.String(), "failed to encode response")
	assert.Contains(t, logs.String(), "/api/v1/search")
}

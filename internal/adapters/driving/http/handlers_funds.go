package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// askRequest is the body of the question-answering endpoints
type askRequest struct {
	Question       string    `json:"question" example:"How did net IRR develop over the last year?"`
	BenchmarkCodes []string  `json:"benchmarkCodes,omitempty"`
	Embedding      []float32 `json:"embedding,omitempty"`
	Limit          int       `json:"limit,omitempty" example:"8"`
}

func (a askRequest) toDomain(fundID string) domain.AskRequest {
	return domain.AskRequest{
		FundID:         fundID,
		Question:       a.Question,
		BenchmarkCodes: a.BenchmarkCodes,
		Embedding:      a.Embedding,
		Limit:          a.Limit,
	}
}

// Question answering endpoints

// handleAsk godoc
// @Summary      Ask a question about a fund
// @Description  Retrieves the fund record, recent metrics, benchmarks and relevant document chunks, then returns an answer that cites them. When no context exists a fixed message is returned without calling the model.
// @Tags         Questions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        fundId   path      string      true  "Fund ID"
// @Param        request  body      askRequest  true  "Question"
// @Success      200      {object}  domain.AskResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      500      {object}  ErrorResponse  "Provider failed or the answer did not cite its sources"
// @Router       /funds/{fundId}/ask [post]
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	s.ask(w, r, req.toDomain(r.PathValue("fundId")))
}

// handleAskQuery godoc
// @Summary      Ask a question about a fund
// @Description  Query-string variant of the question-answering endpoint
// @Tags         Questions
// @Produce      json
// @Security     BearerAuth
// @Param        fundId     path      string    true   "Fund ID"
// @Param        question   query     string    true   "Question"
// @Param        benchmark  query     []string  false  "Benchmark codes"  collectionFormat(multi)
// @Param        limit      query     int       false  "Maximum chunks"
// @Success      200        {object}  domain.AskResponse
// @Failure      400        {object}  ErrorResponse  "Invalid request"
// @Failure      401        {object}  ErrorResponse  "Unauthorized"
// @Failure      500        {object}  ErrorResponse  "Provider failed or the answer did not cite its sources"
// @Router       /funds/{fundId}/ask [get]
func (s *Server) handleAskQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, ok := parseLimit(w, q.Get("limit"))
	if !ok {
		return
	}
	req := askRequest{
		Question:       q.Get("question"),
		BenchmarkCodes: splitCodes(q["benchmark"]),
		Limit:          limit,
	}
	s.ask(w, r, req.toDomain(r.PathValue("fundId")))
}

func (s *Server) ask(w http.ResponseWriter, r *http.Request, req domain.AskRequest) {
	resp, err := s.questionService.Ask(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

// handlePanel godoc
// @Summary      Fund summary panel
// @Description  Generates performance, risk, liquidity and notable-changes cards citing the fund's context. Unparseable model output degrades to a single summary card.
// @Tags         Questions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        fundId   path      string      true   "Fund ID"
// @Param        request  body      askRequest  false  "Optional focus question and benchmarks"
// @Success      200      {object}  domain.PanelResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      500      {object}  ErrorResponse  "Provider failed or the cards did not cite their sources"
// @Router       /funds/{fundId}/panel [post]
func (s *Server) handlePanel(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	resp, err := s.questionService.Panel(r.Context(), req.toDomain(r.PathValue("fundId")))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

// Context endpoints

// handleGetFund godoc
// @Summary      Get fund
// @Tags         Context
// @Produce      json
// @Security     BearerAuth
// @Param        fundId  path      string  true  "Fund ID"
// @Success      200     {object}  domain.Fund
// @Failure      404     {object}  ErrorResponse  "Fund not found"
// @Router       /funds/{fundId} [get]
func (s *Server) handleGetFund(w http.ResponseWriter, r *http.Request) {
	fund, err := s.contextService.Fund(r.Context(), r.PathValue("fundId"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, fund)
}

// handleFundMetrics godoc
// @Summary      Fund metrics
// @Description  Metric snapshots of a fund. available is false when the metrics table is not provisioned.
// @Tags         Context
// @Produce      json
// @Security     BearerAuth
// @Param        fundId  path      string  true   "Fund ID"
// @Param        from    query     string  false  "Earliest date (YYYY-MM-DD)"
// @Param        to      query     string  false  "Latest date (YYYY-MM-DD)"
// @Param        order   query     string  false  "asc or desc"
// @Param        limit   query     int     false  "Maximum rows (1-500)"
// @Success      200     {object}  domain.Availability[domain.FundMetric]
// @Failure      400     {object}  ErrorResponse  "Invalid range"
// @Router       /funds/{fundId}/metrics [get]
func (s *Server) handleFundMetrics(w http.ResponseWriter, r *http.Request) {
	q, ok := parseRange(w, r, r.PathValue("fundId"))
	if !ok {
		return
	}
	rows, err := s.contextService.FundMetrics(r.Context(), q)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, rows)
}

// handleCashFlows godoc
// @Summary      Fund cash flows
// @Description  Capital calls, distributions and fees of a fund
// @Tags         Context
// @Produce      json
// @Security     BearerAuth
// @Param        fundId  path      string  true   "Fund ID"
// @Param        from    query     string  false  "Earliest date (YYYY-MM-DD)"
// @Param        to      query     string  false  "Latest date (YYYY-MM-DD)"
// @Param        order   query     string  false  "asc or desc"
// @Param        limit   query     int     false  "Maximum rows (1-500)"
// @Success      200     {object}  domain.Availability[domain.CashFlow]
// @Failure      400     {object}  ErrorResponse  "Invalid range"
// @Router       /funds/{fundId}/cash-flows [get]
func (s *Server) handleCashFlows(w http.ResponseWriter, r *http.Request) {
	q, ok := parseRange(w, r, r.PathValue("fundId"))
	if !ok {
		return
	}
	rows, err := s.contextService.CashFlows(r.Context(), q)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, rows)
}

// handleCatalog godoc
// @Summary      Fund document catalog
// @Tags         Context
// @Produce      json
// @Security     BearerAuth
// @Param        fundId  path      string  true   "Fund ID"
// @Param        from    query     string  false  "Earliest upload date (YYYY-MM-DD)"
// @Param        to      query     string  false  "Latest upload date (YYYY-MM-DD)"
// @Param        order   query     string  false  "asc or desc"
// @Param        limit   query     int     false  "Maximum rows (1-500)"
// @Success      200     {object}  domain.Availability[domain.CatalogEntry]
// @Failure      400     {object}  ErrorResponse  "Invalid range"
// @Router       /funds/{fundId}/documents [get]
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	q, ok := parseRange(w, r, r.PathValue("fundId"))
	if !ok {
		return
	}
	rows, err := s.contextService.Catalog(r.Context(), q)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, rows)
}

// handleBenchmark godoc
// @Summary      Benchmark series
// @Tags         Context
// @Produce      json
// @Security     BearerAuth
// @Param        code   path      string  true   "Benchmark code"
// @Param        from   query     string  false  "Earliest date (YYYY-MM-DD)"
// @Param        to     query     string  false  "Latest date (YYYY-MM-DD)"
// @Param        order  query     string  false  "asc or desc"
// @Param        limit  query     int     false  "Maximum points (1-500)"
// @Success      200    {object}  domain.Availability[domain.BenchmarkSeries]
// @Failure      404    {object}  ErrorResponse  "Benchmark not found"
// @Router       /benchmarks/{code} [get]
func (s *Server) handleBenchmark(w http.ResponseWriter, r *http.Request) {
	q, ok := parseRange(w, r, r.PathValue("code"))
	if !ok {
		return
	}
	series, err := s.contextService.Benchmark(r.Context(), q)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, series)
}

// parseRange reads from, to, order and limit query parameters
func parseRange(w http.ResponseWriter, r *http.Request, key string) (domain.RangeQuery, bool) {
	q := r.URL.Query()
	rq := domain.RangeQuery{Key: key, Order: domain.SortOrder(q.Get("order"))}

	for name, dst := range map[string]**time.Time{"from": &rq.From, "to": &rq.To} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		t, err := parseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, name+" must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
			return rq, false
		}
		*dst = &t
	}

	limit, ok := parseLimit(w, q.Get("limit"))
	if !ok {
		return rq, false
	}
	rq.Limit = limit
	return rq, true
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func parseLimit(w http.ResponseWriter, raw string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return 0, false
	}
	return limit, true
}

// splitCodes accepts both repeated and comma-separated benchmark parameters
func splitCodes(values []string) []string {
	var codes []string
	for _, v := range values {
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				codes = append(codes, c)
			}
		}
	}
	return codes
}

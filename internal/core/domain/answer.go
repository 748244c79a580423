package domain

import "strings"

// NoContextMessage is returned when no evidence of any kind exists
const NoContextMessage = "No context is available for this fund yet. Upload documents or load metrics to enable grounded answers."

// ChatRole identifies the author of a chat message
type ChatRole string

const (
	ChatRoleSystem ChatRole = "system"
	ChatRoleUser   ChatRole = "user"
)

// ChatMessage is a single prompt message
type ChatMessage struct {
	Role    ChatRole
	Content string
}

// ChatRequest is a chat-completion call
type ChatRequest struct {
	Messages    []ChatMessage
	Temperature float32
	MaxTokens   int
	JSONMode    bool
}

// SourceKind classifies citable evidence
type SourceKind string

const (
	SourceChunk     SourceKind = "chunk"
	SourceMetric    SourceKind = "metric"
	SourceBenchmark SourceKind = "benchmark"
	SourceFund      SourceKind = "fund"
)

// Source is a labelled piece of evidence that an answer may cite.
type Source struct {
	ID         string     `json:"id"` // e.g. S1, M2, B1, F1
	Kind       SourceKind `json:"kind"`
	Label      string     `json:"label"`
	DocumentID string     `json:"documentId,omitempty"`
	ChunkID    string     `json:"chunkId,omitempty"`
	Similarity float64    `json:"similarity,omitempty"`
}

// AnswerInput is the evidence handed to the answer and panel generators
type AnswerInput struct {
	Question   string
	Fund       *Fund
	Chunks     []*SearchHit
	Metrics    []FundMetric
	Benchmarks []BenchmarkSeries
}

// HasEvidence reports whether any context at all was retrieved
func (in *AnswerInput) HasEvidence() bool {
	return in.Fund != nil || len(in.Chunks) > 0 || len(in.Metrics) > 0 || len(in.Benchmarks) > 0
}

// Answer is a grounded answer with the sources it cites
type Answer struct {
	Text      string   `json:"answer"`
	Sources   []Source `json:"sources"`
	Grounded  bool     `json:"grounded"`
	NoContext bool     `json:"noContext,omitempty"`
}

// CardKind identifies a panel card
type CardKind string

const (
	CardPerformance    CardKind = "performance"
	CardRisk           CardKind = "risk"
	CardLiquidity      CardKind = "liquidity"
	CardNotableChanges CardKind = "notable_changes"
	CardSummary        CardKind = "summary"
)

// PanelCardKinds lists the cards requested from the model, in display order
var PanelCardKinds = []CardKind{CardPerformance, CardRisk, CardLiquidity, CardNotableChanges}

// IsPanelCard reports whether kind is one of the requested cards
func IsPanelCard(kind CardKind) bool {
	for _, k := range PanelCardKinds {
		if strings.EqualFold(string(k), string(kind)) {
			return true
		}
	}
	return false
}

// Card is one structured summary card
type Card struct {
	Kind      CardKind `json:"kind"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Citations []string `json:"citations,omitempty"`
}

// Panel is the set of summary cards for a fund
type Panel struct {
	Cards     []Card   `json:"cards"`
	Sources   []Source `json:"sources"`
	Degraded  bool     `json:"degraded"`
	NoContext bool     `json:"noContext,omitempty"`
}

// AskRequest is the question-answering request for a fund.
type AskRequest struct {
	FundID         string    `json:"fundId"`
	Question       string    `json:"question"`
	BenchmarkCodes []string  `json:"benchmarkCodes,omitempty"`
	Embedding      []float32 `json:"embedding,omitempty"`
	Limit          int       `json:"limit,omitempty"`
}

// Validate checks the ask request
func (r *AskRequest) Validate() error {
	if strings.TrimSpace(r.FundID) == "" {
		return NewValidationError("fundId", "is required")
	}
	if strings.TrimSpace(r.Question) == "" {
		return NewValidationError("question", "is required")
	}
	return nil
}

// ContextStatus reports which context sources were not provisioned
type ContextStatus struct {
	FundFound   bool              `json:"fundFound"`
	Unavailable map[string]string `json:"unavailable,omitempty"`
}

// AskResponse is returned by the question-answering endpoint
type AskResponse struct {
	Answer  string        `json:"answer"`
	Sources []Source      `json:"sources"`
	Context ContextStatus `json:"context"`
}

// PanelResponse is returned by the panel endpoint
type PanelResponse struct {
	Panel   *Panel        `json:"panel"`
	Context ContextStatus `json:"context"`
}

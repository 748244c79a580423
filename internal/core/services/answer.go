package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/metrics"
)

// Ensure answerService implements AnswerService
var _ driving.AnswerService = (*answerService)(nil)

// answerService turns labelled evidence into cited text.
// Output that does not cite the evidence is discarded with ErrGrounding.
type answerService struct {
	chat        driven.ChatService
	temperature float32
	maxTokens   int
	logger      *slog.Logger
}

// AnswerServiceConfig holds dependencies for the answer service.
type AnswerServiceConfig struct {
	Chat        driven.ChatService
	Temperature float32
	MaxTokens   int
	Logger      *slog.Logger
}

// NewAnswerService creates a new AnswerService
func NewAnswerService(cfg AnswerServiceConfig) driving.AnswerService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &answerService{
		chat:        cfg.Chat,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger,
	}
}

// Answer generates a prose answer citing the evidence
func (s *answerService) Answer(ctx context.Context, in domain.AnswerInput) (*domain.Answer, error) {
	if !in.HasEvidence() {
		return &domain.Answer{Text: domain.NoContextMessage, Sources: []domain.Source{}, NoContext: true}, nil
	}
	if strings.TrimSpace(in.Question) == "" {
		return nil, domain.NewValidationError("question", "is required")
	}

	ev := buildEvidence(&in)
	text, err := s.chat.Complete(ctx, domain.ChatRequest{
		Messages:    answerMessages(&in, ev),
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		return nil, err
	}

	cited := resolveCitations(text, ev)
	if len(cited) == 0 {
		return nil, s.rejectUngrounded("answer", len(ev.sources))
	}

	return &domain.Answer{
		Text:     strings.TrimSpace(text),
		Sources:  cited,
		Grounded: true,
	}, nil
}

// Panel generates the summary cards. Citations are checked on the raw
// model output before parsing; unparseable output degrades to a single
// summary card holding the raw text.
func (s *answerService) Panel(ctx context.Context, in domain.AnswerInput) (*domain.Panel, error) {
	if !in.HasEvidence() {
		return &domain.Panel{
			Cards:     []domain.Card{{Kind: domain.CardSummary, Title: "Summary", Body: domain.NoContextMessage}},
			Sources:   []domain.Source{},
			NoContext: true,
		}, nil
	}

	ev := buildEvidence(&in)
	raw, err := s.chat.Complete(ctx, domain.ChatRequest{
		Messages:    panelMessages(&in, ev),
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}

	cited := resolveCitations(raw, ev)
	if len(cited) == 0 {
		return nil, s.rejectUngrounded("panel", len(ev.sources))
	}

	cards, err := parseCards(raw, ev)
	if err != nil || len(cards) == 0 {
		metrics.PanelDegradedTotal.Inc()
		s.logger.Warn("panel response degraded to free text", "error", err, "response_chars", len(raw))
		return &domain.Panel{
			Cards: []domain.Card{{
				Kind:      domain.CardSummary,
				Title:     "Summary",
				Body:      strings.TrimSpace(raw),
				Citations: citedIDs(raw, ev),
			}},
			Sources:  cited,
			Degraded: true,
		}, nil
	}

	return &domain.Panel{Cards: cards, Sources: cited}, nil
}

func (s *answerService) rejectUngrounded(generator string, sources int) error {
	metrics.GroundingRejectionsTotal.WithLabelValues(generator).Inc()
	s.logger.Warn("discarding ungrounded model output", "generator", generator, "sources", sources)
	return fmt.Errorf("%s: %w", generator, domain.ErrGrounding)
}

// panelPayload is the JSON shape requested from the model
type panelPayload struct {
	Cards []domain.Card `json:"cards"`
}

// parseCards decodes the model's card JSON. Fenced output and a bare card
// array are tolerated. Cards of unknown kinds are dropped, duplicates keep
// the first occurrence, and the result follows display order.
func parseCards(raw string, ev *evidence) ([]domain.Card, error) {
	body := stripCodeFence(raw)

	var parsed []domain.Card
	if strings.HasPrefix(body, "[") {
		if err := json.Unmarshal([]byte(body), &parsed); err != nil {
			return nil, fmt.Errorf("decode card array: %w", err)
		}
	} else {
		var payload panelPayload
		if err := json.Unmarshal([]byte(body), &payload); err != nil {
			return nil, fmt.Errorf("decode card object: %w", err)
		}
		parsed = payload.Cards
	}

	byKind := make(map[domain.CardKind]domain.Card, len(parsed))
	for _, c := range parsed {
		kind := domain.CardKind(strings.ToLower(strings.TrimSpace(string(c.Kind))))
		if !domain.IsPanelCard(kind) || strings.TrimSpace(c.Body) == "" {
			continue
		}
		if _, dup := byKind[kind]; dup {
			continue
		}
		c.Kind = kind
		c.Body = strings.TrimSpace(c.Body)
		c.Title = strings.TrimSpace(c.Title)
		if c.Title == "" {
			c.Title = cardTitle(kind)
		}
		c.Citations = cardCitations(c, ev)
		byKind[kind] = c
	}

	cards := make([]domain.Card, 0, len(byKind))
	for _, kind := range domain.PanelCardKinds {
		if c, ok := byKind[kind]; ok {
			cards = append(cards, c)
		}
	}
	return cards, nil
}

// cardCitations keeps the card's declared citations that name known
// sources, falling back to the markers in its body.
func cardCitations(c domain.Card, ev *evidence) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, token := range c.Citations {
		idx, ok := ev.lookup(trimToken(strings.Trim(token, "[]")))
		if !ok {
			continue
		}
		id := ev.sources[idx].ID
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		ids = citedIDs(c.Body, ev)
	}
	return ids
}

func cardTitle(kind domain.CardKind) string {
	switch kind {
	case domain.CardPerformance:
		return "Performance"
	case domain.CardRisk:
		return "Risk"
	case domain.CardLiquidity:
		return "Liquidity"
	case domain.CardNotableChanges:
		return "Notable changes"
	default:
		return "Summary"
	}
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

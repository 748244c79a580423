package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// AnswerService generates grounded text from retrieved evidence
type AnswerService interface {
	// Answer produces a prose answer that cites the supplied evidence
	Answer(ctx context.Context, in domain.AnswerInput) (*domain.Answer, error)

	// Panel produces structured summary cards that cite the supplied evidence
	Panel(ctx context.Context, in domain.AnswerInput) (*domain.Panel, error)
}

// QuestionService retrieves fund context and answers questions about it
type QuestionService interface {
	// Ask answers a question about a fund
	Ask(ctx context.Context, req domain.AskRequest) (*domain.AskResponse, error)

	// Panel builds the summary cards of a fund
	Panel(ctx context.Context, req domain.AskRequest) (*domain.PanelResponse, error)
}

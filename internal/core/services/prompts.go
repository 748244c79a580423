package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

const answerSystemPrompt = `You are an investment analyst assistant for a private markets fund.
Answer only from the numbered context supplied by the user.
Cite every factual statement with the bracketed source ID it comes from, for example [S1] or [M2].
Use only the source IDs listed in the context.
If the context does not contain the answer, say so plainly and cite the closest source you relied on.
Do not speculate and do not use outside knowledge.`

const panelSystemPrompt = `You are an investment analyst assistant summarizing a private markets fund.
Use only the numbered context supplied by the user and cite it with bracketed source IDs such as [S1] or [M2].
Respond with a single JSON object of the form:
{"cards":[{"kind":"performance","title":"...","body":"...","citations":["M1"]}]}
Produce exactly one card for each of these kinds, in this order: %s.
Each body is two to four sentences and contains bracketed citations.
If the context says nothing about a kind, write that no data is available and cite the closest source.`

// defaultPanelQuestion steers retrieval when a panel is requested without a question
const defaultPanelQuestion = "fund performance, risk, liquidity and notable changes"

func answerMessages(in *domain.AnswerInput, ev *evidence) []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: domain.ChatRoleSystem, Content: answerSystemPrompt},
		{Role: domain.ChatRoleUser, Content: userPrompt(in.Question, in.Fund, ev)},
	}
}

func panelMessages(in *domain.AnswerInput, ev *evidence) []domain.ChatMessage {
	kinds := make([]string, len(domain.PanelCardKinds))
	for i, k := range domain.PanelCardKinds {
		kinds[i] = string(k)
	}
	question := strings.TrimSpace(in.Question)
	if question == "" {
		question = "Summarize the fund's " + defaultPanelQuestion + "."
	}
	return []domain.ChatMessage{
		{Role: domain.ChatRoleSystem, Content: fmt.Sprintf(panelSystemPrompt, strings.Join(kinds, ", "))},
		{Role: domain.ChatRoleUser, Content: userPrompt(question, in.Fund, ev)},
	}
}

func userPrompt(question string, fund *domain.Fund, ev *evidence) string {
	var b strings.Builder
	if fund != nil {
		fmt.Fprintf(&b, "Fund: %s\n", fund.Name)
	}
	fmt.Fprintf(&b, "Question: %s\n\n", strings.TrimSpace(question))
	fmt.Fprintf(&b, "Context (cite with %s):\n\n", strings.Join(ev.ids(), ", "))
	b.WriteString(ev.render())
	return b.String()
}

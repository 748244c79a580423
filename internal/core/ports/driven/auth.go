package driven

import "github.com/custodia-labs/sercha-rag/internal/core/domain"

// TokenAdapter signs and verifies API bearer tokens
type TokenAdapter interface {
	GenerateToken(claims *domain.TokenClaims) (string, error)
	ParseToken(token string) (*domain.TokenClaims, error)
}

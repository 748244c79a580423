package domain

import (
	"errors"
	"slices"
)

// Auth errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenExpired = errors.New("token expired")
	ErrForbidden    = errors.New("forbidden")
)

// Scope grants access to a group of API operations
type Scope string

const (
	// ScopeRead allows search, document reads and question answering
	ScopeRead Scope = "read"

	// ScopeWrite allows ingestion and deletion
	ScopeWrite Scope = "write"
)

// IsValid returns true if this is a known scope
func (s Scope) IsValid() bool {
	return s == ScopeRead || s == ScopeWrite
}

// TokenClaims represents the bearer token payload of an API client
type TokenClaims struct {
	Subject   string  `json:"sub"`
	Scopes    []Scope `json:"scopes"`
	IssuedAt  int64   `json:"iat"`
	ExpiresAt int64   `json:"exp"`
}

// Allows reports whether the token grants scope. Write implies read.
func (c *TokenClaims) Allows(scope Scope) bool {
	if slices.Contains(c.Scopes, scope) {
		return true
	}
	return scope == ScopeRead && slices.Contains(c.Scopes, ScopeWrite)
}

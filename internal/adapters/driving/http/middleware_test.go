package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/auth"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer  abc ", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, extractBearerToken(req), tt.header)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	m := NewAuthMiddleware(nil)
	handler := m.Authenticate(m.RequireScope(domain.ScopeWrite)(okHandler()))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/api/v1/ingest", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthMiddleware_Scopes(t *testing.T) {
	tokens := auth.NewAdapter("test-secret")
	m := NewAuthMiddleware(tokens)
	handler := m.Authenticate(m.RequireScope(domain.ScopeWrite)(okHandler()))

	readToken, err := tokens.GenerateToken(&domain.TokenClaims{Subject: "dashboard", Scopes: []domain.Scope{domain.ScopeRead}})
	require.NoError(t, err)
	writeToken, err := tokens.GenerateToken(&domain.TokenClaims{Subject: "uploader", Scopes: []domain.Scope{domain.ScopeWrite}})
	require.NoError(t, err)
	expired, err := tokens.GenerateToken(&domain.TokenClaims{
		Subject:   "old",
		Scopes:    []domain.Scope{domain.ScopeWrite},
		IssuedAt:  time.Now().Add(-2 * time.Hour).Unix(),
		ExpiresAt: time.Now().Add(-time.Hour).Unix(),
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized},
		{"read scope", "Bearer " + readToken, http.StatusForbidden},
		{"write scope", "Bearer " + writeToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/ingest", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestServer_AuthenticatedRoutes(t *testing.T) {
	tokens := auth.NewAdapter("test-secret")
	env := newTestEnv(t, tokens)

	rr := env.do(t, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code, "health stays public")

	rr = env.do(t, "POST", "/api/v1/search", `{"query":"irr"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	token, err := tokens.GenerateToken(&domain.TokenClaims{Subject: "dashboard", Scopes: []domain.Scope{domain.ScopeRead}})
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/api/v1/search", strings.NewReader(`{"query":"irr"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := NewRecoveryMiddleware(nil).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestLoggingMiddleware_CapturesStatus(t *testing.T) {
	handler := NewLoggingMiddleware(nil).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
}

func TestCORSMiddleware(t *testing.T) {
	handler := NewCORSMiddleware([]string{"https://app.example.com"}).Handler(okHandler())

	req := httptest.NewRequest("OPTIONS", "/api/v1/search", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest("GET", "/api/v1/search", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

package domain

import "testing"

func TestScope_IsValid(t *testing.T) {
	if !ScopeRead.IsValid() || !ScopeWrite.IsValid() {
		t.Fatal("expected read and write to be valid")
	}
	if Scope("admin").IsValid() {
		t.Error("expected admin to be invalid")
	}
}

func TestTokenClaims_Allows(t *testing.T) {
	tests := []struct {
		name   string
		scopes []Scope
		want   Scope
		allow  bool
	}{
		{"read grants read", []Scope{ScopeRead}, ScopeRead, true},
		{"read denies write", []Scope{ScopeRead}, ScopeWrite, false},
		{"write implies read", []Scope{ScopeWrite}, ScopeRead, true},
		{"write grants write", []Scope{ScopeWrite}, ScopeWrite, true},
		{"no scopes", nil, ScopeRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &TokenClaims{Subject: "svc", Scopes: tt.scopes}
			if got := c.Allows(tt.want); got != tt.allow {
				t.Errorf("Allows(%s) = %v, want %v", tt.want, got, tt.allow)
			}
		})
	}
}

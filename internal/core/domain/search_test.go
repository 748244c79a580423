package domain

import "testing"

func TestClampSearchLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultSearchLimit},
		{-5, DefaultSearchLimit},
		{1, 1},
		{20, 20},
		{50, 50},
		{51, MaxSearchLimit},
		{10000, MaxSearchLimit},
	}

	for _, tt := range tests {
		if got := ClampSearchLimit(tt.in); got != tt.want {
			t.Errorf("ClampSearchLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSearchRequest_Validate(t *testing.T) {
	empty := SearchRequest{}
	if err := empty.Validate(); err == nil {
		t.Error("expected error when neither query nor embedding is set")
	}

	blank := SearchRequest{Query: "   "}
	if err := blank.Validate(); err == nil {
		t.Error("expected error for blank query")
	}

	withQuery := SearchRequest{Query: "fund leverage"}
	if err := withQuery.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	withVector := SearchRequest{Embedding: []float32{0.1, 0.2}}
	if err := withVector.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSearchQuery_Validate(t *testing.T) {
	q := SearchQuery{}
	if err := q.Validate(); err == nil {
		t.Error("expected error for empty embedding")
	}
}

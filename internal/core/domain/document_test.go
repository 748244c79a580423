package domain

import (
	"errors"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestChunkConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ChunkConfig
		wantErr bool
	}{
		{"defaults", DefaultChunkConfig(), false},
		{"no overlap", ChunkConfig{ChunkSize: 100, Overlap: 0}, false},
		{"zero size", ChunkConfig{ChunkSize: 0, Overlap: 0}, true},
		{"negative overlap", ChunkConfig{ChunkSize: 100, Overlap: -1}, true},
		{"overlap equals size", ChunkConfig{ChunkSize: 100, Overlap: 100}, true},
		{"overlap exceeds size", ChunkConfig{ChunkSize: 100, Overlap: 150}, true},
		{"too large", ChunkConfig{ChunkSize: MaxChunkSize + 1, Overlap: 10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestIngestRequest_Validate(t *testing.T) {
	doc := Document{Title: "Q3 Investor Deck"}

	tests := []struct {
		name    string
		req     IngestRequest
		wantErr bool
	}{
		{"text only", IngestRequest{Document: doc, Text: "hello"}, false},
		{"chunks only", IngestRequest{Document: doc, Chunks: []ChunkInput{{Text: "a"}}}, false},
		{"missing title", IngestRequest{Text: "hello"}, true},
		{"neither", IngestRequest{Document: doc}, true},
		{"blank text and blank chunks", IngestRequest{Document: doc, Text: "  ", Chunks: []ChunkInput{{Text: " "}}}, true},
		{"both", IngestRequest{Document: doc, Text: "hello", Chunks: []ChunkInput{{Text: "a"}}}, true},
		{"bad overlap", IngestRequest{Document: doc, Text: "hello", ChunkSize: intPtr(10), Overlap: intPtr(10)}, true},
		{"inverted offsets", IngestRequest{Document: doc, Chunks: []ChunkInput{{Text: "abc", StartOffset: intPtr(5), EndOffset: intPtr(2)}}}, true},
		{"negative page count", IngestRequest{Document: Document{Title: "x", PageCount: intPtr(-1)}, Text: "hello"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIngestRequest_ChunkConfig(t *testing.T) {
	req := IngestRequest{}
	if cfg := req.ChunkConfig(); cfg != DefaultChunkConfig() {
		t.Errorf("expected defaults, got %+v", cfg)
	}

	req = IngestRequest{ChunkSize: intPtr(500), Overlap: intPtr(50)}
	cfg := req.ChunkConfig()
	if cfg.ChunkSize != 500 || cfg.Overlap != 50 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestIngestRequest_SuppliedSpans(t *testing.T) {
	req := IngestRequest{
		Chunks: []ChunkInput{
			{Text: "abcd", SlideNumber: intPtr(1)},
			{Text: "   "},
			{Text: "héllo"},
			{Text: "xyz", StartOffset: intPtr(100), EndOffset: intPtr(103)},
			{Text: "tail"},
		},
	}

	spans := req.SuppliedSpans()
	if len(spans) != 4 {
		t.Fatalf("expected 4 spans (blank dropped), got %d", len(spans))
	}

	want := []struct{ index, start, end int }{
		{0, 0, 4},
		{1, 4, 9}, // 5 characters, not bytes
		{2, 100, 103},
		{3, 103, 107},
	}
	for i, w := range want {
		s := spans[i]
		if s.Index != w.index || s.Start != w.start || s.End != w.end {
			t.Errorf("span %d = {%d %d %d}, want {%d %d %d}", i, s.Index, s.Start, s.End, w.index, w.start, w.end)
		}
	}
	if spans[0].SlideNumber == nil || *spans[0].SlideNumber != 1 {
		t.Error("expected slide number to be carried over")
	}
}

func TestChunkID(t *testing.T) {
	a := ChunkID("doc-1", 0)
	if a != ChunkID("doc-1", 0) {
		t.Error("expected deterministic chunk IDs")
	}
	if a == ChunkID("doc-1", 1) || a == ChunkID("doc-2", 0) {
		t.Error("expected distinct chunk IDs")
	}
	if ChunkID("doc-1", 11) == ChunkID("doc-11", 1) {
		t.Error("expected separator to prevent collisions")
	}
}

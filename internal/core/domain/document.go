package domain

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Defaults applied to ingested documents
const (
	DefaultDocType      = "other"
	DefaultSourceSystem = "upload"
)

// Document is a logical source artifact. Its ID is stable across re-ingestion.
type Document struct {
	ID           string     `json:"id"`
	FundID       *string    `json:"fundId,omitempty"`
	StrategyID   *string    `json:"strategyId,omitempty"`
	FileID       *string    `json:"fileId,omitempty"`
	Title        string     `json:"title"`
	DocType      string     `json:"docType"`
	AsOfDate     *time.Time `json:"asOfDate,omitempty"`
	UploadedAt   time.Time  `json:"uploadedAt"`
	SourceSystem string     `json:"sourceSystem"`
	PageCount    *int       `json:"pageCount,omitempty"`
	IsRedacted   bool       `json:"isRedacted"`
}

// Chunk is a contiguous slice of a document's text with its embedding.
// FundID and StrategyID are copied from the parent document for filtering.
// Offsets count characters (Unicode code points) into the source text.
type Chunk struct {
	ID          string    `json:"id"`
	DocumentID  string    `json:"documentId"`
	FundID      *string   `json:"fundId,omitempty"`
	StrategyID  *string   `json:"strategyId,omitempty"`
	ChunkIndex  int       `json:"chunkIndex"`
	SlideNumber *int      `json:"slideNumber,omitempty"`
	StartOffset int       `json:"startOffset"`
	EndOffset   int       `json:"endOffset"`
	Content     string    `json:"content"`
	Embedding   []float32 `json:"embedding,omitempty"`
}

// chunkNamespace scopes deterministic chunk IDs
var chunkNamespace = uuid.MustParse("6f1d8c52-3a4e-5b7f-9c0d-2e8a41b5f7c3")

// ChunkID derives the stable ID of the chunk at index within a document,
// so re-ingestion overwrites rows instead of appending duplicates.
func ChunkID(documentID string, index int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(documentID+"/"+strconv.Itoa(index))).String()
}

// DocumentWithChunks combines a document with its chunks
type DocumentWithChunks struct {
	Document *Document `json:"document"`
	Chunks   []*Chunk  `json:"chunks"`
}

// Span is one generated or caller-supplied chunk before embedding.
type Span struct {
	Index       int
	Start       int
	End         int
	Text        string
	SlideNumber *int
}

// ChunkConfig configures fixed-size overlapping chunking.
type ChunkConfig struct {
	// ChunkSize is the maximum number of characters per chunk
	ChunkSize int

	// Overlap is the number of characters shared by consecutive chunks
	Overlap int
}

// Chunking limits
const (
	DefaultChunkSize = 1200
	DefaultOverlap   = 150
	MaxChunkSize     = 20000
)

// DefaultChunkConfig returns the default chunking configuration.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{ChunkSize: DefaultChunkSize, Overlap: DefaultOverlap}
}

// Validate rejects configurations the chunker cannot honour.
func (c ChunkConfig) Validate() error {
	if c.ChunkSize <= 0 {
		return NewValidationError("chunkSize", "must be positive")
	}
	if c.ChunkSize > MaxChunkSize {
		return NewValidationError("chunkSize", "must not exceed 20000")
	}
	if c.Overlap < 0 {
		return NewValidationError("overlap", "must not be negative")
	}
	if c.Overlap >= c.ChunkSize {
		return NewValidationError("overlap", "must be smaller than chunkSize")
	}
	return nil
}

// ChunkInput is a caller-supplied chunk. Offsets are optional.
type ChunkInput struct {
	Text        string `json:"text"`
	SlideNumber *int   `json:"slideNumber,omitempty"`
	StartOffset *int   `json:"startOffset,omitempty"`
	EndOffset   *int   `json:"endOffset,omitempty"`
}

// IngestRequest is the input of the ingestion pipeline.
// Exactly one of Text or Chunks must carry content.
type IngestRequest struct {
	Document  Document     `json:"document"`
	Text      string       `json:"text,omitempty"`
	Chunks    []ChunkInput `json:"chunks,omitempty"`
	ChunkSize *int         `json:"chunkSize,omitempty"`
	Overlap   *int         `json:"overlap,omitempty"`
}

// IngestResult reports a committed ingestion
type IngestResult struct {
	DocumentID     string `json:"documentId"`
	ChunksInserted int    `json:"chunksInserted"`
}

// ChunkConfig returns the effective chunking configuration of the request.
func (r *IngestRequest) ChunkConfig() ChunkConfig {
	cfg := DefaultChunkConfig()
	if r.ChunkSize != nil {
		cfg.ChunkSize = *r.ChunkSize
	}
	if r.Overlap != nil {
		cfg.Overlap = *r.Overlap
	}
	return cfg
}

// SuppliedSpans converts caller chunks into spans with dense indices.
// Blank chunks are dropped; missing offsets are derived from the running
// character position.
func (r *IngestRequest) SuppliedSpans() []Span {
	spans := make([]Span, 0, len(r.Chunks))
	pos := 0
	for _, c := range r.Chunks {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		start := pos
		if c.StartOffset != nil {
			start = *c.StartOffset
		}
		end := start + utf8.RuneCountInString(c.Text)
		if c.EndOffset != nil {
			end = *c.EndOffset
		}
		spans = append(spans, Span{
			Index:       len(spans),
			Start:       start,
			End:         end,
			Text:        c.Text,
			SlideNumber: c.SlideNumber,
		})
		pos = end
	}
	return spans
}

// Validate checks the request before any I/O happens.
func (r *IngestRequest) Validate() error {
	if strings.TrimSpace(r.Document.Title) == "" {
		return NewValidationError("document.title", "is required")
	}
	if r.Document.PageCount != nil && *r.Document.PageCount < 0 {
		return NewValidationError("document.pageCount", "must not be negative")
	}

	hasText := strings.TrimSpace(r.Text) != ""
	hasChunks := false
	for _, c := range r.Chunks {
		if strings.TrimSpace(c.Text) != "" {
			hasChunks = true
			break
		}
	}

	switch {
	case hasText && hasChunks:
		return NewValidationError("", "provide either text or chunks, not both")
	case !hasText && !hasChunks:
		return NewValidationError("", "text or chunks is required")
	}

	if hasText {
		return r.ChunkConfig().Validate()
	}

	for _, s := range r.SuppliedSpans() {
		if s.Start < 0 || s.End < s.Start {
			return NewValidationError("chunks", "offsets must satisfy 0 <= start <= end")
		}
		if s.SlideNumber != nil && *s.SlideNumber < 0 {
			return NewValidationError("chunks", "slideNumber must not be negative")
		}
	}
	return nil
}

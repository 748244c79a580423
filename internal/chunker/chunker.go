// Package chunker splits text into fixed-size overlapping spans.
//
// Sizes and offsets count characters (Unicode code points), so a span never
// cuts a multi-byte character in half.
package chunker

import (
	"iter"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Chunks returns a lazy sequence of spans covering text.
//
// For consecutive spans start(i+1) == end(i) - cfg.Overlap, and the last span
// ends exactly at the text length. Blank text yields an empty sequence.
// cfg must be valid (see domain.ChunkConfig.Validate); an invalid config
// yields nothing rather than looping.
func Chunks(text string, cfg domain.ChunkConfig) iter.Seq[domain.Span] {
	return func(yield func(domain.Span) bool) {
		if strings.TrimSpace(text) == "" || cfg.Validate() != nil {
			return
		}

		runes := []rune(text)
		length := len(runes)
		start := 0
		for index := 0; ; index++ {
			end := min(start+cfg.ChunkSize, length)
			span := domain.Span{
				Index: index,
				Start: start,
				End:   end,
				Text:  string(runes[start:end]),
			}
			if !yield(span) || end == length {
				return
			}
			start = end - cfg.Overlap
		}
	}
}

// Collect chunks text eagerly
func Collect(text string, cfg domain.ChunkConfig) []domain.Span {
	var spans []domain.Span
	for s := range Chunks(text, cfg) {
		spans = append(spans, s)
	}
	return spans
}

// Count returns the number of spans text produces without materializing them
func Count(length int, cfg domain.ChunkConfig) int {
	if length <= 0 || cfg.Validate() != nil {
		return 0
	}
	if length <= cfg.ChunkSize {
		return 1
	}
	step := cfg.ChunkSize - cfg.Overlap
	return 1 + (length-cfg.ChunkSize+step-1)/step
}

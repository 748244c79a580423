package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestChunks_ConcreteScenario(t *testing.T) {
	text := strings.Repeat("a", 3000)
	spans := Collect(text, domain.ChunkConfig{ChunkSize: 1200, Overlap: 150})

	require.Len(t, spans, 3)
	want := [][2]int{{0, 1200}, {1050, 2250}, {2100, 3000}}
	for i, w := range want {
		assert.Equal(t, i, spans[i].Index)
		assert.Equal(t, w[0], spans[i].Start, "start of span %d", i)
		assert.Equal(t, w[1], spans[i].End, "end of span %d", i)
		assert.Len(t, spans[i].Text, w[1]-w[0])
	}
}

func TestChunks_BlankInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t\n"} {
		assert.Empty(t, Collect(text, domain.DefaultChunkConfig()), "text %q", text)
	}
}

func TestChunks_ShortText(t *testing.T) {
	spans := Collect("hello world", domain.DefaultChunkConfig())
	require.Len(t, spans, 1)
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, 11, spans[0].End)
	assert.Equal(t, "hello world", spans[0].Text)
}

func TestChunks_ExactMultiple(t *testing.T) {
	// 10 chars, size 4, overlap 1: [0,4) [3,7) [6,10)
	spans := Collect("0123456789", domain.ChunkConfig{ChunkSize: 4, Overlap: 1})
	require.Len(t, spans, 3)
	assert.Equal(t, "0123", spans[0].Text)
	assert.Equal(t, "3456", spans[1].Text)
	assert.Equal(t, "6789", spans[2].Text)
}

func TestChunks_CountsCharactersNotBytes(t *testing.T) {
	text := strings.Repeat("é", 10) // 20 bytes
	spans := Collect(text, domain.ChunkConfig{ChunkSize: 6, Overlap: 2})

	last := spans[len(spans)-1]
	assert.Equal(t, 10, last.End)
	for _, s := range spans {
		assert.Equal(t, strings.Repeat("é", s.End-s.Start), s.Text)
	}
}

func TestChunks_InvalidConfigYieldsNothing(t *testing.T) {
	assert.Empty(t, Collect("some text", domain.ChunkConfig{ChunkSize: 5, Overlap: 5}))
	assert.Empty(t, Collect("some text", domain.ChunkConfig{ChunkSize: 0}))
}

func TestChunks_StopsEarly(t *testing.T) {
	text := strings.Repeat("x", 100)
	n := 0
	for range Chunks(text, domain.ChunkConfig{ChunkSize: 10, Overlap: 0}) {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestChunks_OffsetProperty(t *testing.T) {
	for size := 1; size <= 40; size++ {
		for overlap := 0; overlap < size; overlap++ {
			for _, length := range []int{1, size - 1, size, size + 1, 3*size + 7, 257} {
				if length <= 0 {
					continue
				}
				text := strings.Repeat("z", length)
				cfg := domain.ChunkConfig{ChunkSize: size, Overlap: overlap}
				spans := Collect(text, cfg)
				if err := checkSpans(spans, length, overlap); err != "" {
					t.Fatalf("size=%d overlap=%d length=%d: %s", size, overlap, length, err)
				}
				if got := Count(length, cfg); got != len(spans) {
					t.Fatalf("Count(%d, %+v) = %d, want %d", length, cfg, got, len(spans))
				}
			}
		}
	}
}

// checkSpans returns a description of the first violated offset invariant
func checkSpans(spans []domain.Span, length, overlap int) string {
	if len(spans) == 0 {
		return "no spans"
	}
	for i, s := range spans {
		if s.Index != i {
			return "index not dense"
		}
		if s.Start < 0 || s.End > length || s.Start >= s.End {
			return "span out of bounds"
		}
		if i > 0 && s.End < spans[i-1].End {
			return "end decreased"
		}
		if i+1 < len(spans) && spans[i+1].Start != s.End-overlap {
			return "overlap not honoured"
		}
	}
	if spans[len(spans)-1].End != length {
		return "last span does not end at text length"
	}
	return ""
}

package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Prompt budget limits
const (
	maxExcerptChars    = 1800
	maxBenchmarkPoints = 12
)

// evidence is the labelled, citable context of one generation call
type evidence struct {
	sources []domain.Source
	byKey   map[string]int // lower-cased ID or label -> index into sources
	blocks  []string
}

// buildEvidence labels every piece of context: F1 for the fund profile,
// M1.. for metric snapshots, B1.. for benchmarks and S1.. for document excerpts.
func buildEvidence(in *domain.AnswerInput) *evidence {
	ev := &evidence{byKey: make(map[string]int)}

	if in.Fund != nil {
		ev.add(domain.Source{ID: "F1", Kind: domain.SourceFund, Label: in.Fund.Name + " profile"},
			describeFund(in.Fund))
	}
	for i, m := range in.Metrics {
		ev.add(domain.Source{
			ID:    "M" + strconv.Itoa(i+1),
			Kind:  domain.SourceMetric,
			Label: "Metrics as of " + formatDate(m.AsOfDate),
		}, describeMetric(m))
	}
	for i, b := range in.Benchmarks {
		ev.add(domain.Source{
			ID:    "B" + strconv.Itoa(i+1),
			Kind:  domain.SourceBenchmark,
			Label: benchmarkLabel(b),
		}, describeBenchmark(b))
	}
	for i, h := range in.Chunks {
		ev.add(domain.Source{
			ID:         "S" + strconv.Itoa(i+1),
			Kind:       domain.SourceChunk,
			Label:      chunkLabel(h),
			DocumentID: h.DocumentID,
			ChunkID:    h.ChunkID,
			Similarity: h.Similarity,
		}, excerpt(h.Content))
	}
	return ev
}

func (ev *evidence) add(src domain.Source, body string) {
	idx := len(ev.sources)
	ev.sources = append(ev.sources, src)
	ev.byKey[strings.ToLower(src.ID)] = idx
	if _, taken := ev.byKey[strings.ToLower(src.Label)]; !taken {
		ev.byKey[strings.ToLower(src.Label)] = idx
	}
	ev.blocks = append(ev.blocks, fmt.Sprintf("[%s] %s\n%s", src.ID, src.Label, body))
}

// lookup resolves a citation token to a source
func (ev *evidence) lookup(token string) (int, bool) {
	idx, ok := ev.byKey[strings.ToLower(strings.TrimSpace(token))]
	return idx, ok
}

func (ev *evidence) ids() []string {
	ids := make([]string, len(ev.sources))
	for i, s := range ev.sources {
		ids[i] = s.ID
	}
	return ids
}

// render serializes the evidence for the user prompt
func (ev *evidence) render() string {
	return strings.Join(ev.blocks, "\n\n")
}

// chunkLabel names an excerpt by document title and slide or page
func chunkLabel(h *domain.SearchHit) string {
	title := strings.TrimSpace(h.Title)
	if title == "" {
		title = "Untitled document"
	}
	if h.SlideNumber == nil {
		return title
	}
	unit := "p."
	if isSlideDeck(h.DocType) {
		unit = "slide"
	}
	return fmt.Sprintf("%s, %s %d", title, unit, *h.SlideNumber)
}

func isSlideDeck(docType string) bool {
	t := strings.ToLower(docType)
	return strings.Contains(t, "deck") || strings.Contains(t, "presentation") || strings.Contains(t, "slides")
}

func benchmarkLabel(b domain.BenchmarkSeries) string {
	if b.Name == "" || b.Name == b.Code {
		return b.Code
	}
	return fmt.Sprintf("%s (%s)", b.Name, b.Code)
}

func excerpt(content string) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) <= maxExcerptChars {
		return content
	}
	return string(runes[:maxExcerptChars]) + "…"
}

func describeFund(f *domain.Fund) string {
	parts := []string{"Name: " + f.Name}
	if f.StrategyID != nil {
		parts = append(parts, "Strategy: "+*f.StrategyID)
	}
	if f.VintageYear != nil {
		parts = append(parts, "Vintage: "+strconv.Itoa(*f.VintageYear))
	}
	if f.Currency != nil {
		parts = append(parts, "Currency: "+*f.Currency)
	}
	if f.Status != nil {
		parts = append(parts, "Status: "+*f.Status)
	}
	return strings.Join(parts, "; ")
}

func describeMetric(m domain.FundMetric) string {
	var parts []string
	addFigure := func(name string, v *float64, format string) {
		if v != nil {
			parts = append(parts, name+" "+fmt.Sprintf(format, *v))
		}
	}
	addFigure("NAV", m.NAV, "%.2f")
	addFigure("IRR", m.IRR, "%.2f%%")
	addFigure("TVPI", m.TVPI, "%.2fx")
	addFigure("DPI", m.DPI, "%.2fx")
	addFigure("RVPI", m.RVPI, "%.2fx")
	addFigure("Called capital", m.CalledCapital, "%.2f")
	addFigure("Distributed capital", m.DistributedCapital, "%.2f")
	if len(parts) == 0 {
		return "No figures reported"
	}
	return strings.Join(parts, "; ")
}

func describeBenchmark(b domain.BenchmarkSeries) string {
	if len(b.Points) == 0 {
		return "No observations"
	}
	points := b.Points
	if len(points) > maxBenchmarkPoints {
		points = points[:maxBenchmarkPoints]
	}
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = fmt.Sprintf("%s: %.4g", formatDate(p.AsOfDate), p.Value)
	}
	return strings.Join(parts, "; ")
}

func formatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

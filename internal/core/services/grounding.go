package services

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// citationPattern matches bracketed references such as [S1], [M2; B1] or
// [Q3 Letter, p. 4]. Nested brackets are not citations.
var citationPattern = regexp.MustCompile(`\[([^\[\]]{1,200})\]`)

// resolveCitations returns the sources cited in text, in first-cited order.
// A bracket counts when its whole content names a source label, or when
// any comma or semicolon separated token names a source ID or label.
func resolveCitations(text string, ev *evidence) []domain.Source {
	var cited []domain.Source
	seen := make(map[int]bool)

	cite := func(idx int) {
		if !seen[idx] {
			seen[idx] = true
			cited = append(cited, ev.sources[idx])
		}
	}

	for _, m := range citationPattern.FindAllStringSubmatch(text, -1) {
		content := m[1]
		if idx, ok := ev.lookup(trimToken(content)); ok {
			cite(idx)
			continue
		}
		for _, token := range strings.FieldsFunc(content, func(r rune) bool { return r == ',' || r == ';' }) {
			if idx, ok := ev.lookup(trimToken(token)); ok {
				cite(idx)
			}
		}
	}
	return cited
}

// citedIDs lists the IDs of sources cited in text
func citedIDs(text string, ev *evidence) []string {
	sources := resolveCitations(text, ev)
	ids := make([]string, len(sources))
	for i, s := range sources {
		ids[i] = s.ID
	}
	return ids
}

// trimToken strips quoting so JSON arrays like ["S1","M2"] resolve too
func trimToken(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`+"`")
}

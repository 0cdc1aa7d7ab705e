// Package answer composes extractive, cited answer text from ranked hits.
package answer

import (
	"strings"

	"resumechat/internal/domain"
)

// SnippetMax is the maximum snippet length before clipping.
const SnippetMax = 260

const (
	ellipsis     = "..."
	keyDelimiter = " - "
)

// untitledGroups are section names not rendered as group titles.
var untitledGroups = map[string]struct{}{
	"EXPERIENCE": {},
	"PROJECTS":   {},
	"SKILLS":     {},
	"EDUCATION":  {},
}

// Result is the assembled answer body and its citations, one per bullet line.
type Result struct {
	Text      string
	Citations []domain.Citation
}

type group struct {
	key  string
	hits []domain.Hit
}

// Assemble renders hits grouped by item, preserving first-seen order.
func Assemble(hits []domain.Hit) Result {
	body := withoutHeaders(hits)

	var groups []*group
	byKey := make(map[string]*group)
	for _, h := range body {
		k := groupKey(h)
		g, ok := byKey[k]
		if !ok {
			g = &group{key: k}
			byKey[k] = g
			groups = append(groups, g)
		}
		g.hits = append(g.hits, h)
	}

	var sb strings.Builder
	cites := make([]domain.Citation, 0, len(body))
	for _, g := range groups {
		if _, skip := untitledGroups[g.key]; !skip {
			sb.WriteString(g.key)
			sb.WriteString("\n")
		}
		for _, h := range g.hits {
			snip := Clip(bulletText(h.Content), SnippetMax)
			sb.WriteString("- ")
			sb.WriteString(snip)
			sb.WriteString("\n")
			cites = append(cites, domain.Citation{ChunkID: h.ChunkID, Section: h.Section, Snippet: snip})
		}
		sb.WriteString("\n")
	}
	return Result{Text: strings.TrimSpace(sb.String()), Citations: cites}
}

// withoutHeaders drops header hits unless nothing else is left.
func withoutHeaders(hits []domain.Hit) []domain.Hit {
	out := make([]domain.Hit, 0, len(hits))
	for _, h := range hits {
		if h.Type != domain.ChunkHeader {
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		return hits
	}
	return out
}

func groupKey(h domain.Hit) string {
	if i := strings.Index(h.Content, keyDelimiter); i >= 0 {
		return h.Content[:i]
	}
	return h.Section
}

func bulletText(content string) string {
	if i := strings.Index(content, keyDelimiter); i >= 0 {
		return content[i+len(keyDelimiter):]
	}
	return content
}

// Clip trims s and cuts it to max runes, appending "..." when anything was cut.
func Clip(s string, max int) string {
	if max < 0 {
		max = 0
	}
	x := strings.TrimSpace(s)
	r := []rune(x)
	if len(r) <= max {
		return x
	}
	return strings.TrimSpace(string(r[:max])) + ellipsis
}

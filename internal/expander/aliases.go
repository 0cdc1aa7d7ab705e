// Package expander rewrites domain aliases in a query to the phrases the résumé actually uses.
package expander

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultAliases are institution abbreviations and technology nicknames.
var DefaultAliases = map[string]string{
	"uiuc":      "University of Illinois Urbana-Champaign",
	"cmu":       "Carnegie Mellon University",
	"mit":       "Massachusetts Institute of Technology",
	"ut austin": "University of Texas at Austin",
	"gatech":    "Georgia Institute of Technology",
	"k8s":       "Kubernetes",
	"js":        "JavaScript",
	"ts":        "TypeScript",
	"golang":    "Go",
	"postgres":  "PostgreSQL",
	"gcp":       "Google Cloud Platform",
	"aws":       "Amazon Web Services",
	"ml":        "machine learning",
}

// Expander holds a compiled alias table.
type Expander struct {
	pattern   *regexp.Regexp
	canonical map[string]string
}

// New compiles DefaultAliases merged with extra; entries in extra win.
func New(extra map[string]string) *Expander {
	merged := make(map[string]string, len(DefaultAliases)+len(extra))
	for k, v := range DefaultAliases {
		merged[strings.ToLower(k)] = v
	}
	for k, v := range extra {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			merged[k] = v
		}
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	// Longest first so "ut austin" wins over any shorter alias inside it.
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return &Expander{
		pattern:   regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`),
		canonical: merged,
	}
}

// Expand returns the query with every applicable alias rewritten in a single
// pass, or false if none applied.
func (e *Expander) Expand(query string) (string, bool) {
	if len(e.canonical) == 0 {
		return "", false
	}
	out := e.pattern.ReplaceAllStringFunc(query, func(m string) string {
		if c, ok := e.canonical[strings.ToLower(m)]; ok {
			return c
		}
		return m
	})
	if out == query {
		return "", false
	}
	return out, true
}

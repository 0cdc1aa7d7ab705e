package profile

import (
	"strings"
)

// Render formats a located node as answer text. It reports false when the
// node carries nothing to say (absent, blank, or an empty container).
func Render(n Node) (string, bool) {
	var out string
	switch n.Kind() {
	case Scalar:
		out = strings.TrimSpace(n.Text())
	case Array:
		var lines []string
		n.Each(func(_ string, v Node) bool {
			if s := inline(v); s != "" {
				lines = append(lines, "- "+s)
			}
			return true
		})
		out = strings.Join(lines, "\n")
	case Object:
		var lines []string
		n.Each(func(key string, v Node) bool {
			if s := memberValue(v); s != "" {
				lines = append(lines, key+": "+s)
			}
			return true
		})
		out = strings.Join(lines, "\n")
	}
	return out, out != ""
}

func memberValue(v Node) string {
	if v.Kind() != Array {
		return inline(v)
	}
	var parts []string
	v.Each(func(_ string, e Node) bool {
		if s := inline(e); s != "" {
			parts = append(parts, s)
		}
		return true
	})
	return strings.Join(parts, ", ")
}

func inline(v Node) string {
	return strings.TrimSpace(v.Text())
}

package chunker

import (
	"regexp"
	"strings"
	"unicode"

	"resumechat/internal/domain"
)

// DefaultSection is the section assigned to lines before the first heading.
const DefaultSection = "GENERAL"

const maxHeadingLen = 40

var (
	lineSplitter  = regexp.MustCompile(`\r?\n`)
	knownHeadings = map[string]struct{}{
		"EDUCATION":      {},
		"SKILLS":         {},
		"EXPERIENCE":     {},
		"PROJECTS":       {},
		"CERTIFICATIONS": {},
	}
	contextSections = map[string]struct{}{
		"EXPERIENCE": {},
		"PROJECTS":   {},
	}
	bulletMarkers = []string{"•", "-", "*"}
)

// scanState is the segmenter's position relative to résumé items.
type scanState int

const (
	// statePlain: current section does not carry item context.
	statePlain scanState = iota
	// stateContext: inside EXPERIENCE/PROJECTS with no item header seen yet.
	stateContext
	// stateItem: inside EXPERIENCE/PROJECTS with an item header in the context window.
	stateItem
)

// contextWindow holds the item header lines prefixed onto following bullets.
type contextWindow [2]string

func (w *contextWindow) clear() { w[0], w[1] = "", "" }

func (w contextWindow) empty() bool { return w[0] == "" && w[1] == "" }

func (w contextWindow) prefix() string {
	if w[1] == "" {
		return w[0]
	}
	if w[0] == "" {
		return w[1]
	}
	return w[0] + " | " + w[1]
}

// segmenter is the single-pass line scanner behind Segment.
type segmenter struct {
	section string
	state   scanState
	window  contextWindow
	out     []domain.Chunk
}

// Segment splits raw résumé text into typed chunks in document order.
func Segment(text string) []domain.Chunk {
	s := &segmenter{section: DefaultSection, state: statePlain}
	for _, raw := range lineSplitter.Split(text, -1) {
		s.feed(strings.TrimSpace(raw))
	}
	return s.out
}

func (s *segmenter) feed(line string) {
	switch {
	case line == "":
		if s.state != statePlain {
			s.window.clear()
			s.state = stateContext
		}
	case isHeading(line):
		s.enterSection(NormalizeHeading(line))
	case hasBulletMarker(line):
		s.bullet(stripBullet(line))
	case s.state == statePlain:
		s.emit(line, domain.ChunkLine)
	default:
		// A new non-bullet line starts a new item; the previous header must not bleed into it.
		s.window[0], s.window[1] = line, ""
		s.state = stateItem
		s.emit(line, domain.ChunkHeader)
	}
}

func (s *segmenter) enterSection(name string) {
	s.section = name
	s.window.clear()
	if _, ok := contextSections[name]; ok {
		s.state = stateContext
	} else {
		s.state = statePlain
	}
}

func (s *segmenter) bullet(text string) {
	if text == "" {
		return
	}
	if s.state == stateItem && !s.window.empty() {
		s.emit(s.window.prefix()+" - "+text, domain.ChunkBullet)
		return
	}
	s.emit(text, domain.ChunkBullet)
}

func (s *segmenter) emit(content string, typ domain.ChunkType) {
	s.out = append(s.out, domain.Chunk{Section: s.section, Content: content, Type: typ})
}

// NormalizeHeading strips one trailing colon and upper-cases the heading text.
func NormalizeHeading(line string) string {
	x := strings.TrimSpace(line)
	x = strings.TrimSuffix(x, ":")
	return strings.ToUpper(strings.TrimSpace(x))
}

// isHeading reports whether a trimmed, non-empty line names a section.
// Bullet lines are never headings, so "- AWS" stays a bullet.
func isHeading(line string) bool {
	if hasBulletMarker(line) {
		return false
	}
	if _, ok := knownHeadings[NormalizeHeading(line)]; ok {
		return true
	}
	n := len([]rune(line))
	if n > maxHeadingLen {
		return false
	}
	if strings.HasSuffix(line, ":") {
		return true
	}
	hasLetter := false
	for _, r := range line {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func hasBulletMarker(line string) bool {
	for _, m := range bulletMarkers {
		if strings.HasPrefix(line, m) {
			return true
		}
	}
	return false
}

func stripBullet(line string) string {
	for _, m := range bulletMarkers {
		if strings.HasPrefix(line, m) {
			return strings.TrimSpace(strings.TrimPrefix(line, m))
		}
	}
	return line
}

package profile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errBadPath = errors.New("malformed field path")

// Segment is one dotted component of a field path, optionally indexed.
type Segment struct {
	Key      string
	Index    int
	HasIndex bool
}

// Path is a parsed field path such as education[0].gpa.
type Path []Segment

// ParsePath parses a dotted path with at most one numeric index per segment.
func ParsePath(s string) (Path, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: empty", errBadPath)
	}
	parts := strings.Split(s, ".")
	path := make(Path, 0, len(parts))
	for _, p := range parts {
		seg, err := parseSegment(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", errBadPath, s, err)
		}
		path = append(path, seg)
	}
	return path, nil
}

func parseSegment(p string) (Segment, error) {
	open := strings.IndexByte(p, '[')
	if open < 0 {
		if p == "" || strings.ContainsRune(p, ']') {
			return Segment{}, errors.New("bad key")
		}
		return Segment{Key: p}, nil
	}
	key := p[:open]
	if key == "" {
		return Segment{}, errors.New("missing key before index")
	}
	if !strings.HasSuffix(p, "]") {
		return Segment{}, errors.New("unterminated index")
	}
	num := p[open+1 : len(p)-1]
	idx, err := strconv.Atoi(num)
	if err != nil || idx < 0 || strings.ContainsAny(num, "[]+-") {
		return Segment{}, errors.New("bad index")
	}
	return Segment{Key: key, Index: idx, HasIndex: true}, nil
}

func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.Key)
		if seg.HasIndex {
			fmt.Fprintf(&b, "[%d]", seg.Index)
		}
	}
	return b.String()
}

// Eval walks root along p. Any miss yields an Absent node.
func (p Path) Eval(root Node) Node {
	cur := root
	for _, seg := range p {
		cur = cur.Field(seg.Key)
		if seg.HasIndex {
			cur = cur.Index(seg.Index)
		}
		if cur.Kind() == Absent {
			return Node{}
		}
	}
	return cur
}

// Lookup parses path and evaluates it against root. Malformed paths are Absent.
func Lookup(root Node, path string) Node {
	p, err := ParsePath(path)
	if err != nil {
		return Node{}
	}
	return p.Eval(root)
}

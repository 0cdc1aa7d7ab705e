// Package profile navigates the structured profile document.
//
// The document is held as a tree of Nodes. Every navigation step is total:
// a missing key, a non-array, or an out-of-range index yields an Absent node
// instead of an error, so callers only ever branch on Kind.
package profile

import (
	"fmt"

	"github.com/tidwall/gjson"

	"resumechat/internal/domain"
)

// Kind is the variant of a Node.
type Kind int

const (
	Absent Kind = iota
	Object
	Array
	Scalar
)

func (k Kind) String() string {
	switch k {
	case Object:
		return "object"
	case Array:
		return "array"
	case Scalar:
		return "scalar"
	default:
		return "absent"
	}
}

// Node is one value of the profile document. The zero Node is Absent.
type Node struct {
	kind Kind
	res  gjson.Result
}

// Parse reads a JSON profile document.
func Parse(doc []byte) (Node, error) {
	if !gjson.ValidBytes(doc) {
		return Node{}, fmt.Errorf("parse profile: %w", domain.ErrInvalidProfile)
	}
	return wrap(gjson.ParseBytes(doc)), nil
}

func wrap(r gjson.Result) Node {
	switch {
	case !r.Exists(), r.Type == gjson.Null:
		return Node{}
	case r.IsObject():
		return Node{kind: Object, res: r}
	case r.IsArray():
		return Node{kind: Array, res: r}
	default:
		return Node{kind: Scalar, res: r}
	}
}

func (n Node) Kind() Kind { return n.kind }

// Field returns the member named key of an object node.
func (n Node) Field(key string) Node {
	if n.kind != Object {
		return Node{}
	}
	var found gjson.Result
	n.res.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			found = v
			return false
		}
		return true
	})
	return wrap(found)
}

// Index returns element i of an array node.
func (n Node) Index(i int) Node {
	if n.kind != Array || i < 0 {
		return Node{}
	}
	elems := n.res.Array()
	if i >= len(elems) {
		return Node{}
	}
	return wrap(elems[i])
}

// Len is the number of members or elements; 0 for scalars and absent nodes.
func (n Node) Len() int {
	switch n.kind {
	case Array:
		return len(n.res.Array())
	case Object:
		count := 0
		n.res.ForEach(func(_, _ gjson.Result) bool {
			count++
			return true
		})
		return count
	default:
		return 0
	}
}

// Each visits object members in document order, or array elements with an empty key.
func (n Node) Each(fn func(key string, v Node) bool) {
	if n.kind != Object && n.kind != Array {
		return
	}
	n.res.ForEach(func(k, v gjson.Result) bool {
		return fn(k.String(), wrap(v))
	})
}

// Text is the scalar's text, or the raw JSON of containers. Absent nodes yield "".
func (n Node) Text() string {
	switch n.kind {
	case Scalar:
		return n.res.String()
	case Object, Array:
		return n.res.Raw
	default:
		return ""
	}
}

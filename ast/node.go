// Package ast holds the typed side of the conversion boundary: tree values
// whose shape has been validated against a synthesized type set, the
// converter that builds them from raw parse trees, and the reconstruction of
// source text from them.
package ast

import (
	"fmt"

	"github.com/treeschema/treeschema/errors"
	"github.com/treeschema/treeschema/tree"
)

// Reserved Branch tags. Everything prefixed "@" is converter metadata, not a
// grammar field.
const (
	KindTag   = "@kind"   // Extra: the node's kind name
	ChoiceTag = "@choice" // Extra: 0-based index of the chosen union alternative
	SpanTag   = "@span"   // Extra: the node's full source span
)

type Children interface {
	fmt.Stringer
	Scanner() tree.Scanner
	isChildren()
	narrow() bool
}

func (One) isChildren()  {}
func (Many) isChildren() {}

type One struct {
	Node Node
}

type Many []Node

// Node is a typed tree value. Field access is by name: One for
// single/optional fields, Many for repeated ones. Nodes own their children
// exclusively; there are no parent links and no cycles.
type Node interface {
	fmt.Stringer
	One(name string) Node
	Many(name string) []Node
	Scanner() tree.Scanner
	ContentEquals(n Node) bool // true if text contents and structure are equivalent
	isNode()
	narrow() bool
}

func (Branch) isNode() {}
func (Leaf) isNode()   {}
func (Extra) isNode()  {}

// Leaf is a terminal: a span of source text.
type Leaf tree.Scanner

func (Leaf) One(_ string) Node {
	return nil
}

func (Leaf) Many(_ string) []Node {
	return nil
}

// Branch is a non-terminal: named field slots plus reserved "@" tags. The
// positional children collection lives under the "" name.
type Branch map[string]Children

func (b Branch) One(name string) Node {
	if c, has := b[name]; has {
		if one, ok := c.(One); ok {
			return one.Node
		}
	}
	return nil
}

func (b Branch) Many(name string) []Node {
	if c, has := b[name]; has {
		if many, ok := c.(Many); ok {
			return many
		}
	}
	return nil
}

// Kind returns the node's kind name, or "" for a hand-built branch without a
// kind tag.
func (b Branch) Kind() string {
	if k := b.One(KindTag); k != nil {
		if e, ok := k.(Extra); ok {
			if name, ok := e.Data.(string); ok {
				return name
			}
		}
	}
	return ""
}

// Extra carries non-grammar data under reserved tags.
type Extra struct {
	Data interface{}
}

func (Extra) One(_ string) Node {
	return nil
}

func (Extra) Many(_ string) []Node {
	return nil
}

func (c One) narrow() bool {
	return c.Node.narrow()
}

func (c Many) narrow() bool {
	return len(c) == 0 || len(c) == 1 && c[0].narrow()
}

func (l Leaf) narrow() bool {
	return true
}

func (b Branch) narrow() bool {
	switch len(b) {
	case 0:
		return true
	case 1:
		for _, group := range b {
			return group.narrow()
		}
	}
	return false
}

func (Extra) narrow() bool {
	return true
}

func (l Leaf) ContentEquals(other Node) bool {
	switch other := other.(type) {
	case Leaf:
		return l.Scanner().String() == other.Scanner().String()
	}
	return false
}

func (b Branch) ContentEquals(other Node) bool {
	switch other := other.(type) {
	case Branch:
		// spans are positional metadata, not content
		if len(b)-spanTags(b) != len(other)-spanTags(other) {
			return false
		}
		for k, v := range b {
			if k == SpanTag {
				continue
			}
			switch v := v.(type) {
			case One:
				if !v.Node.ContentEquals(other.One(k)) {
					return false
				}
			case Many:
				otherNodes := other.Many(k)
				if len(v) != len(otherNodes) {
					return false
				}
				for i, n := range v {
					if !n.ContentEquals(otherNodes[i]) {
						return false
					}
				}
			default:
				panic(fmt.Errorf("unexpected node type: %v", v))
			}
		}
		return true
	}
	return false
}

func spanTags(b Branch) int {
	if _, has := b[SpanTag]; has {
		return 1
	}
	return 0
}

func (e Extra) ContentEquals(other Node) bool {
	switch other := other.(type) {
	case Extra:
		return e.Data == other.Data
	}
	return false
}

func (n Branch) one(name string, node Node) {
	if _, has := n[name]; has {
		panic(errors.Inconceivable)
	}
	n[name] = One{Node: node}
}

func (n Branch) many(name string, node Node) {
	if many, has := n[name]; has {
		n[name] = append(many.(Many), node)
	} else {
		n[name] = Many([]Node{node})
	}
}

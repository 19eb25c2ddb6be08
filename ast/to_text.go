package ast

import (
	"sort"
	"strings"
)

// ToText reconstructs the source text of a typed node. Nodes built by
// FromTree carry their full source span, so the result is byte-exact for the
// original range, including anonymous tokens the typed tree dropped and any
// interior whitespace.
//
// Hand-built nodes without a span fall back to a canonical rendering: leaf
// text, and for branches the concatenation of children ordered by source
// offset where known, else by field name. The fallback is best-effort; a
// ReconstructionError is returned only when a node carries neither a span
// nor renderable content.
func ToText(n Node) (string, error) {
	switch n := n.(type) {
	case Leaf:
		return n.Scanner().String(), nil
	case Branch:
		if s := n.Scanner(); !s.IsNil() {
			return s.String(), nil
		}
		return renderCanonical(n)
	}
	return "", &ReconstructionError{Node: n}
}

func renderCanonical(b Branch) (string, error) {
	type part struct {
		name string
		node Node
	}

	names := make([]string, 0, len(b))
	for name := range b {
		if !strings.HasPrefix(name, "@") {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	parts := make([]part, 0, len(names))
	for _, name := range names {
		switch c := b[name].(type) {
		case One:
			parts = append(parts, part{name, c.Node})
		case Many:
			for _, n := range c {
				parts = append(parts, part{name, n})
			}
		}
	}
	if len(parts) == 0 {
		return "", &ReconstructionError{Node: b}
	}

	// Children converted from source keep their offsets; order by them so
	// hand-assembled wrappers around converted subtrees still read in source
	// order.
	sort.SliceStable(parts, func(i, j int) bool {
		oi, iok := offsetOf(parts[i].node)
		oj, jok := offsetOf(parts[j].node)
		if !iok || !jok {
			return false
		}
		return oi < oj
	})

	var sb strings.Builder
	for _, p := range parts {
		text, err := ToText(p.node)
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

func offsetOf(n Node) (int, bool) {
	if _, ok := n.(Extra); ok {
		return 0, false
	}
	s := n.Scanner()
	if s.IsNil() {
		return 0, false
	}
	return s.Offset(), true
}

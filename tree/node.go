// Package tree holds the untyped side of the conversion boundary: the raw
// parse-tree shape produced by the parser collaborator, and the source-backed
// byte spans both tree representations use. Nothing here parses text; nodes
// arrive fully formed from outside.
package tree

// Node is one node of a raw parse tree: a kind tag, an ordered child list and
// the byte range the node covers. Nodes are read-only inputs to conversion.
type Node struct {
	Kind     string
	Named    bool   // named production vs anonymous punctuation/keyword token
	Field    string // field annotation assigned by the parent, "" if none
	Children []Node
	Span     Scanner
}

func (n Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Text returns the exact source bytes the node covers.
func (n Node) Text() string {
	return n.Span.String()
}

// NamedChildren returns the node's named children in order, skipping
// anonymous tokens.
func (n Node) NamedChildren() []Node {
	var out []Node
	for _, c := range n.Children {
		if c.Named {
			out = append(out, c)
		}
	}
	return out
}

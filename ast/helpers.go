package ast

// Choice checks for the @choice tag, and if found returns the value: the
// 0-based index of the chosen union alternative. -1 means no @choice tag.
func Choice(n Node) int {
	if n == nil {
		return -1
	}
	if choice := First(n, ChoiceTag); choice != nil {
		return choice.(Extra).Data.(int)
	}
	return -1
}

// Kind returns the kind name recorded on a converted node, "" if none.
func Kind(n Node) string {
	if b, ok := n.(Branch); ok {
		return b.Kind()
	}
	return ""
}

// First finds the first child of the given node with the named tag. nil if the named node does not exist
func First(n Node, name string) Node {
	if n == nil {
		return nil
	}
	if one := n.One(name); one != nil {
		return one
	}
	if many := n.Many(name); len(many) > 0 {
		return many[0]
	}
	return nil
}

// All returns a list of Nodes for the given name even if only a single Node is found
func All(n Node, name string) []Node {
	if n == nil {
		return nil
	}
	if one := n.One(name); one != nil {
		return []Node{one}
	}
	if many := n.Many(name); len(many) > 0 {
		return many
	}
	return nil
}

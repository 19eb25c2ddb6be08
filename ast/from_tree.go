package ast

import (
	"github.com/treeschema/treeschema/nodetype"
	"github.com/treeschema/treeschema/synth"
	"github.com/treeschema/treeschema/tree"
)

// FromTree converts a raw untyped node into a typed node, recursively
// matching the node's kind against the synthesized type set. The raw tree is
// not mutated; the typed result carries the node's full source span so that
// ToText reproduces the original bytes exactly.
//
// Children are assigned to field slots by their collaborator-provided field
// annotation when present. Unannotated named children follow a deterministic
// positional rule: each fills the first unsatisfied field, in field
// declaration order, whose allowed kinds include the child's kind; children
// matching no field go to the positional children collection. Anonymous
// tokens are dropped unless a field descriptor retains their spelling.
func FromTree(raw tree.Node, ts *synth.TypeSet) (Node, error) {
	if member, collapsed := ts.Collapsed(raw.Kind); collapsed {
		return fromCollapsed(raw, member, ts)
	}
	st, has := ts.Kind(raw.Kind)
	if !has {
		return nil, convErrorf(ErrUnknownKind, raw.Kind, raw.Span, "kind not present in schema")
	}
	switch st.Shape() {
	case synth.LeafShape:
		return Leaf(raw.Span), nil
	case synth.UnionShape:
		return fromUnion(raw, st, ts)
	}
	return fromRecord(raw, st, ts)
}

// A collapsed union's wrapper node may still appear in raw trees. It wraps
// exactly one child, which converts in the wrapper's place against the
// surviving member type.
func fromCollapsed(raw tree.Node, member *synth.SynthesizedType, ts *synth.TypeSet) (Node, error) {
	named := raw.NamedChildren()
	if len(named) != 1 {
		return nil, convErrorf(ErrFieldArity, raw.Kind, raw.Span,
			"collapsed union node must hold exactly one alternative, got %d", len(named))
	}
	if st, has := ts.Kind(named[0].Kind); !has || st != member {
		return nil, convErrorf(ErrKindMismatch, raw.Kind, named[0].Span,
			"kind %q is not the surviving alternative %q", named[0].Kind, member.Kind())
	}
	node, err := FromTree(named[0], ts)
	if err != nil {
		return nil, wrapChildError(raw.Kind, raw.Span, err)
	}
	return node, nil
}

// A union node wraps exactly one child: the chosen alternative. The result
// is tagged with the alternative's index so call sites can switch
// exhaustively over the closed variant set.
func fromUnion(raw tree.Node, st *synth.SynthesizedType, ts *synth.TypeSet) (Node, error) {
	named := raw.NamedChildren()
	if len(named) != 1 {
		return nil, convErrorf(ErrFieldArity, raw.Kind, raw.Span,
			"union node must hold exactly one alternative, got %d", len(named))
	}
	childKind := named[0].Kind
	if member, collapsed := ts.Collapsed(childKind); collapsed {
		childKind = member.Kind()
	}
	idx, _ := st.Variant(childKind)
	if idx < 0 {
		return nil, convErrorf(ErrKindMismatch, raw.Kind, named[0].Span,
			"kind %q is not a declared alternative", named[0].Kind)
	}
	child, err := FromTree(named[0], ts)
	if err != nil {
		return nil, wrapChildError(raw.Kind, raw.Span, err)
	}
	b := Branch{}
	b.one(KindTag, Extra{Data: raw.Kind})
	b.one(SpanTag, Extra{Data: raw.Span})
	b.one(ChoiceTag, Extra{Data: idx})
	b.one("", child)
	return b, nil
}

func fromRecord(raw tree.Node, st *synth.SynthesizedType, ts *synth.TypeSet) (Node, error) {
	b := Branch{}
	b.one(KindTag, Extra{Data: raw.Kind})
	b.one(SpanTag, Extra{Data: raw.Span})
	counts := map[string]int{}

	addTo := func(f *synth.FieldSpec, node Node) error {
		counts[f.Name]++
		if f.Multiplicity == nodetype.Many {
			b.many(f.Name, node)
			return nil
		}
		if counts[f.Name] > 1 {
			return convErrorf(ErrFieldArity, raw.Kind, raw.Span,
				"field %q wants %s value, got more than one", f.Name, f.Multiplicity)
		}
		b.one(f.Name, node)
		return nil
	}

	for _, child := range raw.Children {
		if child.Field != "" {
			f := st.Field(child.Field)
			if f == nil {
				if !child.Named {
					continue
				}
				return nil, convErrorf(ErrKindMismatch, raw.Kind, child.Span,
					"no field %q declared for this kind", child.Field)
			}
			if !f.Allows(child.Kind) {
				if !child.Named {
					continue
				}
				return nil, convErrorf(ErrKindMismatch, raw.Kind, child.Span,
					"field %q does not allow kind %q", child.Field, child.Kind)
			}
			node, err := convertChild(child, ts)
			if err != nil {
				return nil, wrapChildError(raw.Kind, raw.Span, err)
			}
			if err := addTo(f, node); err != nil {
				return nil, err
			}
			continue
		}

		if !child.Named {
			if f := retainingField(st, child.Kind, counts); f != nil {
				if err := addTo(f, Leaf(child.Span)); err != nil {
					return nil, err
				}
			}
			continue
		}

		if f := positionalField(st, child.Kind, counts); f != nil {
			node, err := convertChild(child, ts)
			if err != nil {
				return nil, wrapChildError(raw.Kind, raw.Span, err)
			}
			if err := addTo(f, node); err != nil {
				return nil, err
			}
			continue
		}

		cs := st.Children()
		if cs == nil {
			return nil, convErrorf(ErrKindMismatch, raw.Kind, child.Span,
				"unexpected child of kind %q", child.Kind)
		}
		if !cs.Allows(child.Kind) {
			return nil, convErrorf(ErrKindMismatch, raw.Kind, child.Span,
				"children do not allow kind %q", child.Kind)
		}
		node, err := convertChild(child, ts)
		if err != nil {
			return nil, wrapChildError(raw.Kind, raw.Span, err)
		}
		if err := addTo(cs, node); err != nil {
			return nil, err
		}
	}

	for _, f := range st.Fields() {
		if f.Multiplicity == nodetype.One && counts[f.Name] == 0 {
			return nil, convErrorf(ErrFieldArity, raw.Kind, raw.Span,
				"field %q wants one value, got none", f.Name)
		}
	}
	if cs := st.Children(); cs != nil && cs.Multiplicity == nodetype.One && counts[""] == 0 {
		return nil, convErrorf(ErrFieldArity, raw.Kind, raw.Span, "children want one value, got none")
	}
	return b, nil
}

func convertChild(child tree.Node, ts *synth.TypeSet) (Node, error) {
	if !child.Named {
		return Leaf(child.Span), nil
	}
	return FromTree(child, ts)
}

// retainingField returns the first fillable field that retains the given
// anonymous token spelling, nil if none does.
func retainingField(st *synth.SynthesizedType, kind string, counts map[string]int) *synth.FieldSpec {
	for _, f := range st.Fields() {
		if !fillable(f, counts) {
			continue
		}
		for _, tok := range f.Tokens {
			if tok == kind {
				return f
			}
		}
	}
	return nil
}

// positionalField returns the first fillable field, in declaration order,
// whose allowed kinds include the given kind.
func positionalField(st *synth.SynthesizedType, kind string, counts map[string]int) *synth.FieldSpec {
	for _, f := range st.Fields() {
		if fillable(f, counts) && f.Allows(kind) {
			return f
		}
	}
	return nil
}

func fillable(f *synth.FieldSpec, counts map[string]int) bool {
	return f.Multiplicity == nodetype.Many || counts[f.Name] == 0
}

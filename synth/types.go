// Package synth derives a synthesized type per grammar node kind: leaf types
// for terminals, record types with typed field accessors, and closed unions
// for alternative productions. Recursive and mutually-recursive kinds are
// resolved by forward-declaring every type before any field is wired.
package synth

import (
	"sort"

	"github.com/treeschema/treeschema/nodetype"
)

// Shape classifies a synthesized type.
type Shape int

const (
	LeafShape Shape = iota
	RecordShape
	UnionShape
)

func (s Shape) String() string {
	switch s {
	case LeafShape:
		return "leaf"
	case RecordShape:
		return "record"
	case UnionShape:
		return "union"
	}
	return "unknown"
}

// SynthesizedType is the materialized form of one schema entry. Created once
// per distinct schema, cached by the registry, never mutated afterwards.
type SynthesizedType struct {
	kind      *nodetype.NodeKind
	className string
	shape     Shape
	fields    []*FieldSpec
	children  *FieldSpec
	variants  []*SynthesizedType
}

func (t *SynthesizedType) Kind() string {
	return t.kind.Name
}

// ClassName is the Go-facing name for the type, derived from the kind name.
func (t *SynthesizedType) ClassName() string {
	return t.className
}

func (t *SynthesizedType) Shape() Shape {
	return t.shape
}

// Fields returns the record's field specs in declaration order. Empty for
// leaf and union shapes.
func (t *SynthesizedType) Fields() []*FieldSpec {
	return t.fields
}

func (t *SynthesizedType) Field(name string) *FieldSpec {
	for _, f := range t.fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Children is the positional children spec, nil if the kind declares none.
func (t *SynthesizedType) Children() *FieldSpec {
	return t.children
}

// Variants returns a union's alternative types. The set is closed: a value
// of the union is a value of exactly one variant.
func (t *SynthesizedType) Variants() []*SynthesizedType {
	return t.variants
}

// Variant returns the index and type of the variant with the given kind
// name, or (-1, nil).
func (t *SynthesizedType) Variant(kind string) (int, *SynthesizedType) {
	for i, v := range t.variants {
		if v.Kind() == kind {
			return i, v
		}
	}
	return -1, nil
}

// FieldSpec is the synthesized typing of one field: its allowed synthesized
// types (more than one for alternation), the anonymous token spellings the
// field retains, and its multiplicity. Aliases holds kind names that resolved
// to one of Types through a degenerate-union collapse; raw trees may still
// carry them.
type FieldSpec struct {
	Name         string
	Multiplicity nodetype.Multiplicity
	Types        []*SynthesizedType
	Tokens       []string
	Aliases      []string
}

// Allows reports whether the field accepts the given kind name: a synthesized
// type, a retained token, or a collapsed alias of one of the types.
func (f *FieldSpec) Allows(kind string) bool {
	for _, t := range f.Types {
		if t.Kind() == kind {
			return true
		}
	}
	for _, tok := range f.Tokens {
		if tok == kind {
			return true
		}
	}
	for _, a := range f.Aliases {
		if a == kind {
			return true
		}
	}
	return false
}

// TypeSet holds one synthesized type per schema kind. Immutable after
// Synthesize returns.
type TypeSet struct {
	schema   *nodetype.Schema
	byKind   map[string]*SynthesizedType
	aliases  map[string]*SynthesizedType
	warnings []error
}

func (ts *TypeSet) Schema() *nodetype.Schema {
	return ts.schema
}

func (ts *TypeSet) Kind(name string) (*SynthesizedType, bool) {
	t, ok := ts.byKind[name]
	return t, ok
}

// Collapsed returns the surviving member type for a kind whose degenerate
// union collapsed, false for every other name. Raw trees may still carry the
// collapsed kind as a wrapper node around the member.
func (ts *TypeSet) Collapsed(name string) (*SynthesizedType, bool) {
	t, ok := ts.aliases[name]
	return t, ok
}

// Kinds returns the synthesized types sorted by kind name. A collapsed
// degenerate union shares its member's type, so two names may yield the same
// entry.
func (ts *TypeSet) Kinds() []*SynthesizedType {
	names := make([]string, 0, len(ts.byKind))
	for name := range ts.byKind {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*SynthesizedType, 0, len(names))
	for _, name := range names {
		out = append(out, ts.byKind[name])
	}
	return out
}

func (ts *TypeSet) Len() int {
	return len(ts.byKind)
}

// Warnings returns the warning-class synthesis errors recorded while
// building the set, such as collapsed single-alternative unions.
func (ts *TypeSet) Warnings() []error {
	return ts.warnings
}

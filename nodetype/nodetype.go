// Package nodetype loads a parser collaborator's grammar description into an
// immutable Schema: a mapping from node-kind name to its shape (leaf, record
// of field descriptors, or union of alternatives).
package nodetype

import (
	"fmt"
	"sort"
)

// KindRef names a node kind from within a field descriptor or a union's
// alternative list.
type KindRef struct {
	Name  string `json:"type" yaml:"type"`
	Named bool   `json:"named" yaml:"named"`
}

// Multiplicity is how many values a field may hold.
type Multiplicity int

const (
	One Multiplicity = iota
	Optional
	Many
)

func (m Multiplicity) String() string {
	switch m {
	case One:
		return "one"
	case Optional:
		return "optional"
	case Many:
		return "many"
	}
	return fmt.Sprintf("multiplicity(%d)", int(m))
}

// FieldDescriptor describes one named (or positional, for Name == "") child
// slot of a record kind. AllowedKinds is never empty; anonymous members mark
// tokens the field retains in the typed tree.
type FieldDescriptor struct {
	Name         string
	AllowedKinds []KindRef
	Multiplicity Multiplicity
}

// Allows reports whether the field accepts children of the given kind name.
func (f *FieldDescriptor) Allows(kind string) bool {
	for _, k := range f.AllowedKinds {
		if k.Name == kind {
			return true
		}
	}
	return false
}

// NodeKind is one grammar production: a leaf, a record with fields and an
// optional positional children slot, or a union over Subtypes. Immutable
// once loaded.
type NodeKind struct {
	Name     string
	Named    bool
	Fields   []FieldDescriptor // sorted by name; see Schema field-order rule
	Children *FieldDescriptor  // positional children, nil if none declared
	Subtypes []KindRef
}

func (k *NodeKind) IsUnion() bool {
	return len(k.Subtypes) > 0
}

func (k *NodeKind) IsLeaf() bool {
	return !k.IsUnion() && len(k.Fields) == 0 && k.Children == nil
}

// Field returns the named field descriptor, if declared.
func (k *NodeKind) Field(name string) *FieldDescriptor {
	for i := range k.Fields {
		if k.Fields[i].Name == name {
			return &k.Fields[i]
		}
	}
	return nil
}

// Schema maps node-kind names to their definitions. Every named kind any
// descriptor references is present as a key; the loader rejects anything
// else. Field declaration order is the sorted field-name order, which is
// also the deterministic order used for positional field assignment.
type Schema struct {
	kinds    map[string]*NodeKind
	names    []string // sorted
	identity string
}

// Kind returns the definition of the named kind.
func (s *Schema) Kind(name string) (*NodeKind, bool) {
	k, ok := s.kinds[name]
	return k, ok
}

// Kinds returns all kind definitions sorted by name.
func (s *Schema) Kinds() []*NodeKind {
	out := make([]*NodeKind, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, s.kinds[name])
	}
	return out
}

func (s *Schema) Len() int {
	return len(s.kinds)
}

// Identity is a content hash of the schema, usable as a registry key.
func (s *Schema) Identity() string {
	return s.identity
}

func newSchema(kinds map[string]*NodeKind) *Schema {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Schema{kinds: kinds, names: names, identity: fingerprint(kinds, names)}
}

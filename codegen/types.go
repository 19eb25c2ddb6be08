package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/treeschema/treeschema/nodetype"
	"github.com/treeschema/treeschema/synth"
)

func goTypeName(st *synth.SynthesizedType) string {
	return st.ClassName() + "Node"
}

// kindDecl emits the wrapper struct and getters for a leaf or record kind.
type kindDecl struct {
	st *synth.SynthesizedType
}

func (d kindDecl) ClassName() string {
	return d.st.ClassName()
}

func (d kindDecl) String() string {
	name := goTypeName(d.st)
	out := fmt.Sprintf("type %s struct{ ast.Node }\n\n", name)
	if d.st.Shape() == synth.LeafShape {
		return out + fmt.Sprintf("func (c %s) Text() string {\n\treturn c.Node.Scanner().String()\n}\n\n", name)
	}

	fields := append([]*synth.FieldSpec{}, d.st.Fields()...)
	if cs := d.st.Children(); cs != nil {
		fields = append(fields, cs)
	}
	sort.Slice(fields, func(i, j int) bool {
		return strings.ToUpper(fieldIdent(fields[i])) < strings.ToUpper(fieldIdent(fields[j]))
	})
	for _, f := range fields {
		out += getterFor(name, f)
	}
	return out
}

func fieldIdent(f *synth.FieldSpec) string {
	if f.Name == "" {
		return "Child"
	}
	return synth.GoName(f.Name)
}

func getterFor(parent string, f *synth.FieldSpec) string {
	replacer := strings.NewReplacer(
		"{{parent}}", parent,
		"{{ident}}", fieldIdent(f),
		"{{slot}}", f.Name,
	)
	many := f.Multiplicity == nodetype.Many

	// Retained-token-only fields yield strings; single concrete types get a
	// typed wrapper; alternations and union-typed fields stay generic, with
	// ast.Choice for dispatch.
	switch {
	case len(f.Types) == 0:
		if many {
			return replacer.Replace(`func (c {{parent}}) All{{ident}}() []string {
	var out []string
	for _, child := range ast.All(c.Node, "{{slot}}") {
		out = append(out, child.Scanner().String())
	}
	return out
}

`)
		}
		return replacer.Replace(`func (c {{parent}}) One{{ident}}() string {
	if child := ast.First(c.Node, "{{slot}}"); child != nil {
		return child.Scanner().String()
	}
	return ""
}

`)
	case len(f.Types) == 1 && len(f.Tokens) == 0 && f.Types[0].Shape() != synth.UnionShape:
		replacer = strings.NewReplacer(
			"{{parent}}", parent,
			"{{ident}}", fieldIdent(f),
			"{{slot}}", f.Name,
			"{{ret}}", goTypeName(f.Types[0]),
		)
		if many {
			return replacer.Replace(`func (c {{parent}}) All{{ident}}() []{{ret}} {
	var out []{{ret}}
	for _, child := range ast.All(c.Node, "{{slot}}") {
		out = append(out, {{ret}}{child})
	}
	return out
}

`)
		}
		return replacer.Replace(`func (c {{parent}}) One{{ident}}() *{{ret}} {
	if child := ast.First(c.Node, "{{slot}}"); child != nil {
		return &{{ret}}{child}
	}
	return nil
}

`)
	}
	if many {
		return replacer.Replace(`func (c {{parent}}) All{{ident}}() []ast.Node {
	return ast.All(c.Node, "{{slot}}")
}

`)
	}
	return replacer.Replace(`func (c {{parent}}) One{{ident}}() ast.Node {
	return ast.First(c.Node, "{{slot}}")
}

`)
}

// unionDecl emits a sealed interface per union kind. Every concrete variant
// carries the marker method, so a type switch over the interface is closed:
// no variant outside the declared alternatives can satisfy it.
type unionDecl struct {
	st *synth.SynthesizedType
}

func (d unionDecl) ClassName() string {
	return d.st.ClassName()
}

func (d unionDecl) String() string {
	marker := "is" + goTypeName(d.st)
	out := fmt.Sprintf("type %s interface {\n\t%s()\n}\n\n", goTypeName(d.st), marker)

	variants := concreteVariants(d.st)
	names := make([]string, 0, len(variants))
	for _, v := range variants {
		names = append(names, goTypeName(v))
	}
	sort.Strings(names)
	for _, name := range names {
		out += fmt.Sprintf("func (%s) %s() {}\n", name, marker)
	}
	return out + "\n"
}

// concreteVariants expands nested unions to their concrete member types.
func concreteVariants(st *synth.SynthesizedType) []*synth.SynthesizedType {
	seen := map[*synth.SynthesizedType]bool{}
	var out []*synth.SynthesizedType
	var walk func(*synth.SynthesizedType)
	walk = func(t *synth.SynthesizedType) {
		if seen[t] {
			return
		}
		seen[t] = true
		if t.Shape() == synth.UnionShape {
			for _, v := range t.Variants() {
				walk(v)
			}
			return
		}
		out = append(out, t)
	}
	for _, v := range st.Variants() {
		walk(v)
	}
	return out
}

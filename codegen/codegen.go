// Package codegen renders a synthesized type set as Go source: a wrapper
// struct with typed getters per record kind, and a sealed interface with an
// exhaustive variant set per union kind, so application code can traverse
// typed trees without consulting the schema at every step.
package codegen

import (
	"fmt"
	"io"
	"sort"

	"github.com/treeschema/treeschema/synth"
)

// Write emits the Go source for the type set as a single file in the named
// package. Output is deterministic: kinds are emitted in class-name order.
func Write(w io.Writer, pkg string, ts *synth.TypeSet) error {
	decls := collectDecls(ts)

	if _, err := fmt.Fprintf(w, header, pkg); err != nil {
		return err
	}
	if _, err := io.WriteString(w, identBlock(ts)); err != nil {
		return err
	}
	for _, d := range decls {
		if _, err := io.WriteString(w, d.String()); err != nil {
			return err
		}
	}
	return nil
}

const header = `// Code generated from a grammar's node-types description. DO NOT EDIT.

package %s

import (
	"github.com/treeschema/treeschema/ast"
)

`

type decl interface {
	fmt.Stringer
	ClassName() string
}

func collectDecls(ts *synth.TypeSet) []decl {
	seen := map[string]bool{}
	var decls []decl
	for _, st := range ts.Kinds() {
		if seen[st.ClassName()] {
			// collapsed unions share their member's type
			continue
		}
		seen[st.ClassName()] = true
		switch st.Shape() {
		case synth.UnionShape:
			decls = append(decls, unionDecl{st})
		default:
			decls = append(decls, kindDecl{st})
		}
	}
	sort.Slice(decls, func(i, j int) bool {
		return decls[i].ClassName() < decls[j].ClassName()
	})
	return decls
}

// identBlock emits one constant per schema kind name, so call sites can
// switch on ast.Kind without string literals. A collapsed union keeps its own
// constant even though it shares the member's type.
func identBlock(ts *synth.TypeSet) string {
	type ident struct{ constName, kind string }
	kinds := ts.Schema().Kinds()
	idents := make([]ident, 0, len(kinds))
	for _, k := range kinds {
		idents = append(idents, ident{synth.GoName(k.Name) + "Kind", k.Name})
	}
	sort.Slice(idents, func(i, j int) bool { return idents[i].constName < idents[j].constName })

	out := "const (\n"
	for _, id := range idents {
		out += fmt.Sprintf("\t%s = %q\n", id.constName, id.kind)
	}
	return out + ")\n\n"
}

package synth

import (
	"fmt"
	"strings"

	"github.com/arr-ai/frozen"
	"github.com/iancoleman/strcase"
	"github.com/sirupsen/logrus"

	"github.com/treeschema/treeschema/nodetype"
)

// SynthesisError reports an internal inconsistency while deriving types.
// Warning-class instances (see Warning) are recorded on the TypeSet instead
// of aborting the build.
type SynthesisError struct {
	Kind    string
	msg     string
	warning bool
}

func synthesisErrorf(kind string, format string, args ...interface{}) *SynthesisError {
	return &SynthesisError{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesize: kind %q: %s", e.Kind, e.msg)
}

// Warning reports whether the error is a recoverable downgrade rather than a
// build failure.
func (e *SynthesisError) Warning() bool {
	return e.warning
}

// Synthesize derives one SynthesizedType per schema kind. All types are
// allocated as placeholders first and wired afterwards, so cyclic-by-name
// grammars (expr containing expr) synthesize without recursion.
//
// A union with a single alternative is degenerate: it collapses to the lone
// member and the downgrade is recorded as a warning on the returned set.
func Synthesize(schema *nodetype.Schema) (*TypeSet, error) {
	byKind := make(map[string]*SynthesizedType, schema.Len())

	// Pass 1: forward-declare every kind and claim its class name.
	claimed := frozen.NewMap[string, string]()
	for _, k := range schema.Kinds() {
		st := &SynthesizedType{kind: k, className: GoName(k.Name)}
		if prev, has := claimed.Get(st.className); has {
			return nil, synthesisErrorf(k.Name, "class name %s collides with kind %q", st.className, prev)
		}
		claimed = claimed.With(st.className, k.Name)
		byKind[k.Name] = st
	}

	// Pass 2: wire field and variant references to the placeholders.
	for _, k := range schema.Kinds() {
		st := byKind[k.Name]
		switch {
		case k.IsUnion():
			st.shape = UnionShape
			for _, ref := range k.Subtypes {
				if !ref.Named {
					// anonymous alternatives have no synthesized type
					continue
				}
				v, has := byKind[ref.Name]
				if !has {
					return nil, synthesisErrorf(k.Name, "alternative %q absent from schema", ref.Name)
				}
				st.variants = append(st.variants, v)
			}
			if len(st.variants) == 0 {
				return nil, synthesisErrorf(k.Name, "union has no representable alternatives")
			}
		case k.IsLeaf():
			st.shape = LeafShape
		default:
			st.shape = RecordShape
			for i := range k.Fields {
				spec, err := wireField(k.Name, &k.Fields[i], byKind)
				if err != nil {
					return nil, err
				}
				st.fields = append(st.fields, spec)
			}
			if k.Children != nil {
				spec, err := wireField(k.Name, k.Children, byKind)
				if err != nil {
					return nil, err
				}
				st.children = spec
			}
		}
	}

	// Pass 3: collapse degenerate unions, rewriting every reference to the
	// union with its lone member. The collapsed name stays reachable as an
	// alias so raw trees that still carry the wrapper node convert.
	var warnings []error
	aliases := map[string]*SynthesizedType{}
	for name, st := range byKind {
		if st.shape == UnionShape && len(st.variants) == 1 {
			w := synthesisErrorf(name, "union with a single alternative %q, collapsed", st.variants[0].Kind())
			w.warning = true
			warnings = append(warnings, w)
			aliases[name] = resolveAlias(st)
			logrus.WithFields(logrus.Fields{
				"kind":        name,
				"alternative": st.variants[0].Kind(),
			}).Warn("degenerate union collapsed to its single alternative")
		}
	}
	for name, st := range byKind {
		byKind[name] = resolveAlias(st)
	}
	rewired := map[*SynthesizedType]bool{}
	for _, st := range byKind {
		if rewired[st] {
			// two names share a type after a collapse
			continue
		}
		rewired[st] = true
		for _, f := range st.fields {
			rewireSpec(f)
		}
		if st.children != nil {
			rewireSpec(st.children)
		}
		for i, v := range st.variants {
			st.variants[i] = resolveAlias(v)
		}
	}

	ts := &TypeSet{schema: schema, byKind: byKind, aliases: aliases, warnings: warnings}
	logrus.WithField("types", ts.Len()).Debug("synthesized type set")
	return ts, nil
}

func wireField(kind string, f *nodetype.FieldDescriptor, byKind map[string]*SynthesizedType) (*FieldSpec, error) {
	spec := &FieldSpec{Name: f.Name, Multiplicity: f.Multiplicity}
	for _, ref := range f.AllowedKinds {
		if !ref.Named {
			spec.Tokens = append(spec.Tokens, ref.Name)
			continue
		}
		t, has := byKind[ref.Name]
		if !has {
			return nil, synthesisErrorf(kind, "field %q references kind %q absent from schema", f.Name, ref.Name)
		}
		spec.Types = append(spec.Types, t)
	}
	return spec, nil
}

// rewireSpec replaces collapsed union types in a field spec with their
// surviving members, keeping the collapsed kind names as aliases the field
// still allows.
func rewireSpec(f *FieldSpec) {
	for i, t := range f.Types {
		r := resolveAlias(t)
		if r != t {
			f.Aliases = append(f.Aliases, t.Kind())
		}
		f.Types[i] = r
	}
}

// resolveAlias follows degenerate-union collapses to the surviving type. The
// guard bounds pathological union-of-union chains.
func resolveAlias(st *SynthesizedType) *SynthesizedType {
	seen := map[*SynthesizedType]bool{}
	for st.shape == UnionShape && len(st.variants) == 1 && !seen[st] {
		seen[st] = true
		st = st.variants[0]
	}
	return st
}

// GoName converts a kind name to its synthesized class name, snake_case to
// CamelCase with runs of capitals flattened first.
func GoName(kind string) string {
	return strcase.ToCamel(dropCaps(kind))
}

func dropCaps(kind string) string {
	isCaps := func(r uint8) bool { return r >= 'A' && r <= 'Z' }
	out := make([]string, 0, len(kind))
	for i := 0; i < len(kind); i++ {
		out = append(out, string(kind[i]))
		if isCaps(kind[i]) {
			for i+1 < len(kind) && isCaps(kind[i+1]) {
				i++
				out = append(out, strings.ToLower(string(kind[i])))
			}
		}
	}
	return strings.Join(out, "")
}

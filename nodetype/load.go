package nodetype

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/arr-ai/frozen"
	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrorKind is the synthetic kind registered for the collaborator's error
// nodes. It accepts any number of named children, so malformed regions still
// convert and callers can detect them by kind name.
const ErrorKind = "ERROR"

// The on-disk document is a list of kind entries. Unknown keys are the
// collaborator's business and are ignored.
type rawKind struct {
	Type     string             `json:"type" yaml:"type"`
	Named    bool               `json:"named" yaml:"named"`
	Fields   map[string]rawArgs `json:"fields" yaml:"fields"`
	Children *rawArgs           `json:"children" yaml:"children"`
	Subtypes *[]KindRef         `json:"subtypes" yaml:"subtypes"`
}

type rawArgs struct {
	Multiple bool      `json:"multiple" yaml:"multiple"`
	Required bool      `json:"required" yaml:"required"`
	Types    []KindRef `json:"types" yaml:"types"`
}

func (a rawArgs) multiplicity() Multiplicity {
	switch {
	case a.Multiple:
		return Many
	case !a.Required:
		return Optional
	}
	return One
}

// Load parses a JSON grammar description into a Schema. Two-pass: every kind
// name is registered first, then field descriptors and unions are resolved
// against the registered set, so forward and mutually-recursive references
// work. Anonymous top-level entries carry no structure and are not given
// schema entries; anonymous members of a field's allowed kinds are kept, as
// they mark tokens the field retains. The result is complete and immutable,
// or a SchemaError.
func Load(doc []byte) (*Schema, error) {
	var raw []rawKind
	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil, schemaErrorf("", "malformed document: %v", err)
	}
	return build(raw)
}

// LoadYAML is Load for the same document authored as YAML.
func LoadYAML(doc []byte) (*Schema, error) {
	var raw []rawKind
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return nil, schemaErrorf("", "malformed document: %v", err)
	}
	return build(raw)
}

func build(raw []rawKind) (*Schema, error) {
	if len(raw) == 0 {
		return nil, schemaErrorf("", "empty grammar description")
	}

	// Pass 1: register every named kind.
	registered := frozen.NewSet[string]()
	for _, r := range raw {
		if r.Type == "" {
			return nil, schemaErrorf("", "kind entry missing required key \"type\"")
		}
		if !r.Named {
			continue
		}
		if registered.Has(r.Type) {
			return nil, schemaErrorf(r.Type, "defined more than once")
		}
		registered = registered.With(r.Type)
	}
	if !registered.Has(ErrorKind) {
		registered = registered.With(ErrorKind)
	}

	// Pass 2: fill in definitions, checking every named reference resolves.
	kinds := make(map[string]*NodeKind, registered.Count())
	for _, r := range raw {
		if !r.Named {
			continue
		}
		k, err := buildKind(r, registered)
		if err != nil {
			return nil, err
		}
		kinds[k.Name] = k
	}

	if _, has := kinds[ErrorKind]; !has {
		kinds[ErrorKind] = errorNodeKind(kinds)
	}

	s := newSchema(kinds)
	logrus.WithFields(logrus.Fields{
		"kinds":    s.Len(),
		"identity": s.Identity(),
	}).Debug("loaded grammar schema")
	return s, nil
}

func buildKind(r rawKind, registered frozen.Set[string]) (*NodeKind, error) {
	if r.Subtypes != nil && (len(r.Fields) > 0 || r.Children != nil) {
		return nil, schemaErrorf(r.Type, "has both subtypes and fields/children")
	}

	k := &NodeKind{Name: r.Type, Named: r.Named}

	if r.Subtypes != nil {
		if len(*r.Subtypes) == 0 {
			return nil, schemaErrorf(r.Type, "union with zero alternatives")
		}
		for _, ref := range *r.Subtypes {
			if err := checkRef(r.Type, ref, registered); err != nil {
				return nil, err
			}
		}
		k.Subtypes = append(k.Subtypes, *r.Subtypes...)
		return k, nil
	}

	names := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f, err := buildField(r.Type, name, r.Fields[name], registered)
		if err != nil {
			return nil, err
		}
		k.Fields = append(k.Fields, *f)
	}

	if r.Children != nil {
		f, err := buildField(r.Type, "", *r.Children, registered)
		if err != nil {
			return nil, err
		}
		k.Children = f
	}
	return k, nil
}

func buildField(kind, name string, args rawArgs, registered frozen.Set[string]) (*FieldDescriptor, error) {
	slot := name
	if slot == "" {
		slot = "children"
	}
	if len(args.Types) == 0 {
		return nil, schemaErrorf(kind, "%s: %s field with no allowed kinds", slot, args.multiplicity())
	}
	for _, ref := range args.Types {
		if err := checkRef(kind, ref, registered); err != nil {
			return nil, err
		}
	}
	return &FieldDescriptor{
		Name:         name,
		AllowedKinds: append([]KindRef{}, args.Types...),
		Multiplicity: args.multiplicity(),
	}, nil
}

func checkRef(kind string, ref KindRef, registered frozen.Set[string]) error {
	if ref.Name == "" {
		return schemaErrorf(kind, "kind reference missing required key \"type\"")
	}
	if ref.Named && !registered.Has(ref.Name) {
		return schemaErrorf(kind, "references undefined kind %q", ref.Name)
	}
	return nil
}

func errorNodeKind(kinds map[string]*NodeKind) *NodeKind {
	refs := make([]KindRef, 0, len(kinds))
	for name := range kinds {
		refs = append(refs, KindRef{Name: name, Named: true})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return &NodeKind{
		Name:  ErrorKind,
		Named: true,
		Children: &FieldDescriptor{
			AllowedKinds: refs,
			Multiplicity: Many,
		},
	}
}

// fingerprint hashes the canonicalized schema so that structurally equal
// descriptions share a registry identity.
func fingerprint(kinds map[string]*NodeKind, names []string) string {
	var sb strings.Builder
	for _, name := range names {
		k := kinds[name]
		fmt.Fprintf(&sb, "%s/%t", k.Name, k.Named)
		for _, f := range k.Fields {
			fmt.Fprintf(&sb, ";%s:%s=%s", f.Name, f.Multiplicity, refNames(f.AllowedKinds))
		}
		if k.Children != nil {
			fmt.Fprintf(&sb, ";():%s=%s", k.Children.Multiplicity, refNames(k.Children.AllowedKinds))
		}
		if k.IsUnion() {
			fmt.Fprintf(&sb, ";|=%s", refNames(k.Subtypes))
		}
		sb.WriteByte('\n')
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

func refNames(refs []KindRef) string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, r.Name)
	}
	return strings.Join(names, ",")
}

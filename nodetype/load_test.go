package nodetype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const arithDoc = `[
	{"type": "number", "named": true},
	{"type": "+", "named": false},
	{"type": "add", "named": true, "fields": {
		"left": {"required": true, "types": [
			{"type": "number", "named": true}, {"type": "add", "named": true}]},
		"right": {"required": true, "types": [
			{"type": "number", "named": true}, {"type": "add", "named": true}]}
	}}
]`

func TestLoadArith(t *testing.T) {
	t.Parallel()

	s, err := Load([]byte(arithDoc))
	require.NoError(t, err)

	number, has := s.Kind("number")
	require.True(t, has)
	assert.True(t, number.IsLeaf())
	assert.True(t, number.Named)

	add, has := s.Kind("add")
	require.True(t, has)
	assert.False(t, add.IsLeaf())
	assert.False(t, add.IsUnion())
	require.Len(t, add.Fields, 2)
	assert.Equal(t, "left", add.Fields[0].Name)
	assert.Equal(t, "right", add.Fields[1].Name)
	assert.Equal(t, One, add.Fields[0].Multiplicity)
	assert.True(t, add.Fields[0].Allows("add"))
	assert.False(t, add.Fields[0].Allows("string"))

	// anonymous "+" gets no schema entry
	_, has = s.Kind("+")
	assert.False(t, has)
}

func TestLoadInjectsErrorKind(t *testing.T) {
	t.Parallel()

	s, err := Load([]byte(arithDoc))
	require.NoError(t, err)

	errKind, has := s.Kind(ErrorKind)
	require.True(t, has)
	require.NotNil(t, errKind.Children)
	assert.Equal(t, Many, errKind.Children.Multiplicity)
	assert.True(t, errKind.Children.Allows("add"))
	assert.True(t, errKind.Children.Allows("number"))
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	for _, s := range []struct {
		name, doc string
	}{
		{"empty document", `[]`},
		{"malformed json", `{]`},
		{"missing type key", `[{"named": true}]`},
		{"duplicate kind", `[{"type": "a", "named": true}, {"type": "a", "named": true}]`},
		{"dangling field reference", `[{"type": "a", "named": true, "fields": {
			"x": {"types": [{"type": "ghost", "named": true}]}}}]`},
		{"dangling subtype reference", `[{"type": "a", "named": true,
			"subtypes": [{"type": "ghost", "named": true}]}]`},
		{"field with no allowed kinds", `[{"type": "a", "named": true, "fields": {
			"x": {"required": true, "types": []}}}]`},
		{"union with zero alternatives", `[{"type": "a", "named": true, "subtypes": []}]`},
		{"union with fields", `[
			{"type": "b", "named": true},
			{"type": "a", "named": true,
				"subtypes": [{"type": "b", "named": true}],
				"fields": {"x": {"types": [{"type": "b", "named": true}]}}}]`},
	} {
		s := s
		t.Run(s.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load([]byte(s.doc))
			require.Error(t, err)
			assert.IsType(t, &SchemaError{}, err)
		})
	}
}

func TestLoadRecursiveReferencesResolve(t *testing.T) {
	t.Parallel()

	// mutually recursive: a -> b -> a
	doc := `[
		{"type": "a", "named": true, "fields": {
			"next": {"types": [{"type": "b", "named": true}]}}},
		{"type": "b", "named": true, "fields": {
			"back": {"types": [{"type": "a", "named": true}]}}}
	]`
	s, err := Load([]byte(doc))
	require.NoError(t, err)
	a, _ := s.Kind("a")
	assert.Equal(t, Optional, a.Field("next").Multiplicity)
}

func TestLoadIgnoresUnknownKeys(t *testing.T) {
	t.Parallel()

	doc := `[{"type": "a", "named": true, "root": true, "extra": {"x": 1}}]`
	s, err := Load([]byte(doc))
	require.NoError(t, err)
	_, has := s.Kind("a")
	assert.True(t, has)
}

func TestLoadYAMLMatchesJSONIdentity(t *testing.T) {
	t.Parallel()

	yamlDoc := `
- type: number
  named: true
- type: "+"
  named: false
- type: add
  named: true
  fields:
    left:
      required: true
      types:
        - {type: number, named: true}
        - {type: add, named: true}
    right:
      required: true
      types:
        - {type: number, named: true}
        - {type: add, named: true}
`
	fromYAML, err := LoadYAML([]byte(yamlDoc))
	require.NoError(t, err)
	fromJSON, err := Load([]byte(arithDoc))
	require.NoError(t, err)
	assert.Equal(t, fromJSON.Identity(), fromYAML.Identity())
}

func TestIdentityDistinguishesGrammars(t *testing.T) {
	t.Parallel()

	a, err := Load([]byte(`[{"type": "a", "named": true}]`))
	require.NoError(t, err)
	b, err := Load([]byte(`[{"type": "b", "named": true}]`))
	require.NoError(t, err)
	assert.NotEqual(t, a.Identity(), b.Identity())
}

package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treeschema/treeschema/nodetype"
)

func load(t *testing.T, doc string) *nodetype.Schema {
	t.Helper()
	s, err := nodetype.Load([]byte(doc))
	require.NoError(t, err)
	return s
}

func TestSynthesizeRecursiveGrammar(t *testing.T) {
	t.Parallel()

	// expr -> binary_op(expr, expr): cyclic by name
	ts, err := Synthesize(load(t, `[
		{"type": "number", "named": true},
		{"type": "binary_op", "named": true, "fields": {
			"left": {"required": true, "types": [{"type": "expr", "named": true}]},
			"right": {"required": true, "types": [{"type": "expr", "named": true}]}}},
		{"type": "expr", "named": true, "subtypes": [
			{"type": "number", "named": true},
			{"type": "binary_op", "named": true}]}
	]`))
	require.NoError(t, err)

	binop, has := ts.Kind("binary_op")
	require.True(t, has)
	assert.Equal(t, RecordShape, binop.Shape())
	assert.Equal(t, "BinaryOp", binop.ClassName())

	expr, has := ts.Kind("expr")
	require.True(t, has)
	assert.Equal(t, UnionShape, expr.Shape())

	// field references resolve to the same placeholders the set serves
	left := binop.Field("left")
	require.NotNil(t, left)
	require.Len(t, left.Types, 1)
	assert.Same(t, expr, left.Types[0])

	// union variants point back into the set, closing the cycle
	_, v := expr.Variant("binary_op")
	assert.Same(t, binop, v)
}

func TestSynthesizeUnionExhaustive(t *testing.T) {
	t.Parallel()

	ts, err := Synthesize(load(t, `[
		{"type": "a", "named": true},
		{"type": "b", "named": true},
		{"type": "c", "named": true},
		{"type": "choice", "named": true, "subtypes": [
			{"type": "a", "named": true},
			{"type": "b", "named": true},
			{"type": "c", "named": true}]}
	]`))
	require.NoError(t, err)

	choice, _ := ts.Kind("choice")
	variants := choice.Variants()
	require.Len(t, variants, 3)
	names := []string{}
	for _, v := range variants {
		names = append(names, v.Kind())
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)

	idx, _ := choice.Variant("b")
	assert.Equal(t, 1, idx)
	idx, v := choice.Variant("ghost")
	assert.Equal(t, -1, idx)
	assert.Nil(t, v)
}

func TestSynthesizeDegenerateUnionCollapses(t *testing.T) {
	t.Parallel()

	ts, err := Synthesize(load(t, `[
		{"type": "a", "named": true},
		{"type": "only_a", "named": true, "subtypes": [{"type": "a", "named": true}]},
		{"type": "holder", "named": true, "fields": {
			"x": {"required": true, "types": [{"type": "only_a", "named": true}]}}}
	]`))
	require.NoError(t, err)

	a, _ := ts.Kind("a")
	collapsed, _ := ts.Kind("only_a")
	assert.Same(t, a, collapsed)

	// field references follow the collapse but still allow the old name
	holder, _ := ts.Kind("holder")
	x := holder.Field("x")
	assert.Same(t, a, x.Types[0])
	assert.True(t, x.Allows("a"))
	assert.True(t, x.Allows("only_a"))

	member, ok := ts.Collapsed("only_a")
	require.True(t, ok)
	assert.Same(t, a, member)
	_, ok = ts.Collapsed("a")
	assert.False(t, ok)

	require.Len(t, ts.Warnings(), 1)
	var se *SynthesisError
	require.ErrorAs(t, ts.Warnings()[0], &se)
	assert.True(t, se.Warning())
}

func TestSynthesizeRetainedTokens(t *testing.T) {
	t.Parallel()

	ts, err := Synthesize(load(t, `[
		{"type": "number", "named": true},
		{"type": "binary_op", "named": true, "fields": {
			"operator": {"required": true, "types": [
				{"type": "+", "named": false}, {"type": "-", "named": false}]},
			"left": {"required": true, "types": [{"type": "number", "named": true}]},
			"right": {"required": true, "types": [{"type": "number", "named": true}]}}}
	]`))
	require.NoError(t, err)

	binop, has := ts.Kind("binary_op")
	require.True(t, has)
	op := binop.Field("operator")
	assert.Empty(t, op.Types)
	assert.Equal(t, []string{"+", "-"}, op.Tokens)
	assert.True(t, op.Allows("+"))
	assert.False(t, op.Allows("*"))
}

func TestSynthesizeClassNameCollision(t *testing.T) {
	t.Parallel()

	_, err := Synthesize(load(t, `[
		{"type": "foo_bar", "named": true},
		{"type": "fooBar", "named": true}
	]`))
	require.Error(t, err)
	var se *SynthesisError
	require.ErrorAs(t, err, &se)
	assert.False(t, se.Warning())
}

func TestGoName(t *testing.T) {
	t.Parallel()

	for kind, want := range map[string]string{
		"binary_op":  "BinaryOp",
		"number":     "Number",
		"ERROR":      "Error",
		"if_HTTPGet": "IfHttpget",
	} {
		assert.Equal(t, want, GoName(kind), kind)
	}
}

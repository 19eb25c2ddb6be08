package codegen

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treeschema/treeschema/nodetype"
	"github.com/treeschema/treeschema/synth"
)

const arithDoc = `[
	{"type": "number", "named": true},
	{"type": "binary_op", "named": true, "fields": {
		"left": {"required": true, "types": [{"type": "number", "named": true}]},
		"operator": {"required": true, "types": [
			{"type": "+", "named": false}, {"type": "-", "named": false}]},
		"right": {"required": true, "types": [
			{"type": "number", "named": true}, {"type": "binary_op", "named": true}]}
	}},
	{"type": "expression", "named": true, "subtypes": [
		{"type": "number", "named": true},
		{"type": "binary_op", "named": true}]},
	{"type": "list", "named": true, "children": {
		"multiple": true, "required": false,
		"types": [{"type": "number", "named": true}, {"type": "list", "named": true}]}}
]`

func generate(t *testing.T, doc string) string {
	t.Helper()
	s, err := nodetype.Load([]byte(doc))
	require.NoError(t, err)
	ts, err := synth.Synthesize(s)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "arith", ts))
	return buf.String()
}

func TestWriteHeader(t *testing.T) {
	t.Parallel()

	out := generate(t, arithDoc)
	assert.Contains(t, out, "// Code generated from a grammar's node-types description. DO NOT EDIT.")
	assert.Contains(t, out, "package arith")
	assert.Contains(t, out, `"github.com/treeschema/treeschema/ast"`)
}

func TestWriteKindConsts(t *testing.T) {
	t.Parallel()

	out := generate(t, arithDoc)
	assert.Contains(t, out, `NumberKind = "number"`)
	assert.Contains(t, out, `BinaryOpKind = "binary_op"`)
	assert.Contains(t, out, `ErrorKind = "ERROR"`)
}

func TestWriteLeafDecl(t *testing.T) {
	t.Parallel()

	out := generate(t, arithDoc)
	assert.Contains(t, out, "type NumberNode struct{ ast.Node }")
	assert.Contains(t, out, "func (c NumberNode) Text() string {")
}

func TestWriteRecordGetters(t *testing.T) {
	t.Parallel()

	out := generate(t, arithDoc)
	assert.Contains(t, out, "type BinaryOpNode struct{ ast.Node }")

	// single concrete type: typed wrapper
	assert.Contains(t, out, "func (c BinaryOpNode) OneLeft() *NumberNode {")
	// token-only field: string
	assert.Contains(t, out, "func (c BinaryOpNode) OneOperator() string {")
	// alternation: generic node
	assert.Contains(t, out, "func (c BinaryOpNode) OneRight() ast.Node {")
	// positional children collection: generic, repeated
	assert.Contains(t, out, "func (c ListNode) AllChild() []ast.Node {")
}

func TestWriteSealedUnion(t *testing.T) {
	t.Parallel()

	out := generate(t, arithDoc)
	assert.Contains(t, out, "type ExpressionNode interface {\n\tisExpressionNode()\n}")
	assert.Contains(t, out, "func (NumberNode) isExpressionNode() {}")
	assert.Contains(t, out, "func (BinaryOpNode) isExpressionNode() {}")
	// no other variant carries the marker
	assert.NotContains(t, out, "func (ListNode) isExpressionNode()")
}

func TestWriteCollapsedUnionConst(t *testing.T) {
	t.Parallel()

	out := generate(t, `[
		{"type": "a", "named": true},
		{"type": "only_a", "named": true, "subtypes": [{"type": "a", "named": true}]}
	]`)
	// the collapsed union shares the member's type but keeps its own constant
	assert.Contains(t, out, `AKind = "a"`)
	assert.Contains(t, out, `OnlyAKind = "only_a"`)
}

func TestWriteNestedUnionFlattens(t *testing.T) {
	t.Parallel()

	out := generate(t, `[
		{"type": "int", "named": true},
		{"type": "float", "named": true},
		{"type": "string", "named": true},
		{"type": "numeric", "named": true, "subtypes": [
			{"type": "int", "named": true},
			{"type": "float", "named": true}]},
		{"type": "literal", "named": true, "subtypes": [
			{"type": "numeric", "named": true},
			{"type": "string", "named": true}]}
	]`)
	// the nested union expands to its concrete members
	assert.Contains(t, out, "func (IntNode) isLiteralNode() {}")
	assert.Contains(t, out, "func (FloatNode) isLiteralNode() {}")
	assert.Contains(t, out, "func (StringNode) isLiteralNode() {}")
	assert.NotContains(t, out, "func (NumericNode) isLiteralNode()")
}

func TestWriteDeterministic(t *testing.T) {
	t.Parallel()

	assert.Equal(t, generate(t, arithDoc), generate(t, arithDoc))
}

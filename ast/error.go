package ast

import (
	"fmt"

	"github.com/treeschema/treeschema/gotree"
	"github.com/treeschema/treeschema/tree"
)

// Reason classifies why an untyped node failed to match its kind's shape.
type Reason int

const (
	ErrUnknownKind Reason = iota
	ErrKindMismatch
	ErrFieldArity
)

func (r Reason) String() string {
	switch r {
	case ErrUnknownKind:
		return "unknown_kind"
	case ErrKindMismatch:
		return "kind_mismatch"
	case ErrFieldArity:
		return "field_arity_mismatch"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// ConversionError reports that a specific untyped node does not match the
// expected shape for its kind. It names the offending kind and byte range,
// and nests the errors of any failed children, so a caller can report a
// precise diagnostic or skip the subtree and continue with siblings.
type ConversionError struct {
	Reason   Reason
	Kind     string
	Span     tree.Scanner
	msg      string
	children []error
}

func convErrorf(reason Reason, kind string, span tree.Scanner, format string, args ...interface{}) *ConversionError {
	return &ConversionError{
		Reason: reason,
		Kind:   kind,
		Span:   span,
		msg:    fmt.Sprintf(format, args...),
	}
}

func (e *ConversionError) Error() string {
	t := gotree.New("conversion failed")
	e.walkErrors(t)
	return "\n" + t.Print()
}

func (e *ConversionError) walkErrors(parent gotree.Tree) {
	x := gotree.New(fmt.Sprintf("kind(%s) [%d..%d] %s - %s",
		e.Kind, e.Span.Offset(), e.Span.End(), e.Reason, e.msg))
	for _, err := range e.children {
		if ce, ok := err.(*ConversionError); ok {
			ce.walkErrors(x)
		} else {
			x.Add(err.Error())
		}
	}
	parent.AddTree(x)
}

func (e *ConversionError) Unwrap() []error {
	return e.children
}

// wrap nests a child's conversion error under the parent node's context,
// keeping the child's reason so callers can still classify the failure.
func wrapChildError(kind string, span tree.Scanner, err error) *ConversionError {
	reason := ErrKindMismatch
	if ce, ok := err.(*ConversionError); ok {
		reason = ce.Reason
	}
	e := convErrorf(reason, kind, span, "child did not convert")
	e.children = append(e.children, err)
	return e
}

// ReconstructionError reports a hand-built node that carries neither a
// source span nor content renderable by the canonical fallback.
type ReconstructionError struct {
	Node Node
}

func (e *ReconstructionError) Error() string {
	return fmt.Sprintf("reconstruct: node %T has no positional metadata and no renderable content", e.Node)
}

package nodetype

import "fmt"

// SchemaError reports a malformed or inconsistent grammar description. A
// load that produces one yields no Schema at all.
type SchemaError struct {
	Kind string // offending kind name, "" if the document as a whole is bad
	msg  string
}

func schemaErrorf(kind, format string, args ...interface{}) *SchemaError {
	return &SchemaError{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

func (e *SchemaError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("schema: %s", e.msg)
	}
	return fmt.Sprintf("schema: kind %q: %s", e.Kind, e.msg)
}

// Package errors holds sentinels for conditions that a correct build cannot
// reach. They exist to be panicked with, not returned.
package errors

import "errors"

// Inconceivable marks code paths that prior validation has ruled out.
var Inconceivable = errors.New("inconceivable")

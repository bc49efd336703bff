package expr

import "errors"

var (
	// ErrEmptyExpression reports a binding or loop expression with no path.
	ErrEmptyExpression = errors.New("expr: empty expression")
	// ErrInvalidTarget reports a binding target that is neither a known aspect
	// nor a valid attribute name.
	ErrInvalidTarget = errors.New("expr: invalid binding target")
	// ErrMissingLoopVar reports a loop over a collection whose name gives no
	// plural to derive the item variable from.
	ErrMissingLoopVar = errors.New("expr: loop variable cannot be derived")
)

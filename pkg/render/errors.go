package render

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingItemTemplate reports a loop element without a child element to
	// repeat.
	ErrMissingItemTemplate = errors.New("render: loop element has no child template")
	// ErrTemplateNotFound reports a registry lookup for an unknown name.
	ErrTemplateNotFound = errors.New("render: template not found")
	// ErrDestroyed reports a render on a destroyed template.
	ErrDestroyed = errors.New("render: template destroyed")
)

// CompileError aborts compilation of one template. Node is a tag#id.class
// label of the offending element, Attr the attribute carrying Expr.
type CompileError struct {
	Node string
	Attr string
	Expr string
	Err  error
}

func (e *CompileError) Error() string {
	if e.Attr == "" {
		return fmt.Sprintf("render: compile %s: %v", e.Node, e.Err)
	}
	return fmt.Sprintf("render: compile %s [%s=%q]: %v", e.Node, e.Attr, e.Expr, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// RenderError aborts one render call. The template stays usable for
// subsequent renders.
type RenderError struct {
	Node string
	Expr string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render: %s [%s]: %v", e.Node, e.Expr, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

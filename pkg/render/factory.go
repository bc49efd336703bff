package render

import (
	"errors"

	"golang.org/x/net/html"

	"github.com/zipang/temples/pkg/dom"
	"github.com/zipang/temples/pkg/expr"
)

// NewRenderer classifies node by its declarative attributes and compiles the
// matching renderer: a loop wins over a guard, a guard over bindings, and
// several bindings make a MultiAttributeRenderer. A node carrying none of the
// attributes yields a nil renderer and a nil error.
//
// Recognised attributes are removed from node, so compiling it again is a
// no-op.
func NewRenderer(node *html.Node, options ...Option) (Renderer, error) {
	return newRenderer(node, newConfig(options...))
}

func newRenderer(node *html.Node, cfg *config) (Renderer, error) {
	if !dom.IsElement(node) {
		return nil, nil
	}

	vocab := cfg.vocabulary
	loopAttr, loopRaw, hasLoop := firstAttr(node, vocab.Iterate)
	guardRaw, hasGuard := dom.Attr(node, vocab.RenderIf)
	bindRaw, hasBind := dom.Attr(node, vocab.Bind)
	if !hasLoop && !hasGuard && !hasBind {
		return nil, nil
	}

	label := dom.Describe(node)
	dom.RemoveAttr(node, vocab.attributes()...)

	var bindings []expr.Binding
	if hasBind {
		parsed, err := expr.ParseBindings(bindRaw)
		if err != nil {
			return nil, &CompileError{Node: label, Attr: vocab.Bind, Expr: bindRaw, Err: err}
		}
		bindings = parsed
	}

	var guard *expr.Guard
	if hasGuard {
		parsed, err := expr.ParseGuard(guardRaw)
		if err != nil {
			return nil, &CompileError{Node: label, Attr: vocab.RenderIf, Expr: guardRaw, Err: err}
		}
		guard = parsed
	}

	switch {
	case hasLoop:
		loop, err := expr.ParseLoop(loopRaw)
		if err != nil {
			return nil, &CompileError{Node: label, Attr: loopAttr, Expr: loopRaw, Err: err}
		}
		list, err := newListRenderer(node, loop, guard, bindings, cfg)
		if err != nil {
			return nil, asCompileError(err, label, loopAttr, loopRaw)
		}
		cfg.logger.Debug("temples: binding", "node", label, "kind", KindList.String(), "expr", loopRaw)
		return list, nil
	case hasGuard:
		cond, err := newConditionalRenderer(node, guard, bindings, cfg)
		if err != nil {
			return nil, asCompileError(err, label, vocab.RenderIf, guardRaw)
		}
		cfg.logger.Debug("temples: binding", "node", label, "kind", KindConditional.String(), "expr", guardRaw)
		return cond, nil
	case len(bindings) > 1:
		cfg.logger.Debug("temples: binding", "node", label, "kind", KindMultiAttribute.String(), "expr", bindRaw)
		return newMultiAttributeRenderer(node, bindings, cfg), nil
	case len(bindings) == 1:
		cfg.logger.Debug("temples: binding", "node", label, "kind", KindAttribute.String(), "expr", bindRaw)
		return newAttributeRenderer(node, bindings[0], cfg), nil
	}
	return nil, nil
}

// isBoundary reports whether node starts a loop or a guarded section, below
// which the enclosing template does not look.
func isBoundary(node *html.Node, vocab Vocabulary) bool {
	_, _, hasLoop := firstAttr(node, vocab.Iterate)
	return hasLoop || dom.HasAttr(node, vocab.RenderIf)
}

func firstAttr(node *html.Node, names []string) (string, string, bool) {
	for _, name := range names {
		if value, ok := dom.Attr(node, name); ok {
			return name, value, true
		}
	}
	return "", "", false
}

// asCompileError keeps compile errors raised for nested nodes intact and
// attributes anything else to the current node.
func asCompileError(err error, label, attr, raw string) error {
	var compileErr *CompileError
	if errors.As(err, &compileErr) {
		return err
	}
	return &CompileError{Node: label, Attr: attr, Expr: raw, Err: err}
}

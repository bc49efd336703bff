package render

import (
	"bytes"
	"fmt"

	"golang.org/x/net/html"

	"github.com/zipang/temples/pkg/dom"
	"github.com/zipang/temples/pkg/expr"
	"github.com/zipang/temples/pkg/lookup"
)

// AttributeRenderer applies a single binding expression to one node.
type AttributeRenderer struct {
	node    *html.Node
	expr    expr.Binding
	binding Binding
}

func newAttributeRenderer(node *html.Node, binding expr.Binding, cfg *config) *AttributeRenderer {
	return &AttributeRenderer{
		node:    node,
		expr:    binding,
		binding: compileBinding(node, binding, cfg),
	}
}

func (r *AttributeRenderer) Kind() Kind { return KindAttribute }
func (r *AttributeRenderer) Node() *html.Node { return r.node }
func (r *AttributeRenderer) Expr() expr.Binding { return r.expr }

func (r *AttributeRenderer) Render(data any) (*html.Node, error) {
	if r.binding == nil {
		return nil, ErrDestroyed
	}
	return r.node, r.binding(data)
}

func (r *AttributeRenderer) Bindings() []Binding {
	if r.binding == nil {
		return nil
	}
	return []Binding{r.binding}
}

func (r *AttributeRenderer) Destroy() {
	r.node, r.binding = nil, nil
}

func (r *AttributeRenderer) sealed() {}

// MultiAttributeRenderer applies several binding expressions, in order, to
// one node.
type MultiAttributeRenderer struct {
	node     *html.Node
	exprs    []expr.Binding
	bindings []Binding
}

func newMultiAttributeRenderer(node *html.Node, bindings []expr.Binding, cfg *config) *MultiAttributeRenderer {
	compiled := make([]Binding, len(bindings))
	for i, binding := range bindings {
		compiled[i] = compileBinding(node, binding, cfg)
	}
	return &MultiAttributeRenderer{node: node, exprs: bindings, bindings: compiled}
}

func (r *MultiAttributeRenderer) Kind() Kind { return KindMultiAttribute }
func (r *MultiAttributeRenderer) Node() *html.Node { return r.node }
func (r *MultiAttributeRenderer) Exprs() []expr.Binding { return append([]expr.Binding(nil), r.exprs...) }

func (r *MultiAttributeRenderer) Render(data any) (*html.Node, error) {
	if r.bindings == nil {
		return nil, ErrDestroyed
	}
	if err := applyAll(r.bindings, data); err != nil {
		return r.node, err
	}
	return r.node, nil
}

func (r *MultiAttributeRenderer) Bindings() []Binding {
	return append([]Binding(nil), r.bindings...)
}

func (r *MultiAttributeRenderer) Destroy() {
	r.node, r.bindings = nil, nil
}

func (r *MultiAttributeRenderer) sealed() {}

func applyAll(bindings []Binding, data any) error {
	for _, binding := range bindings {
		if err := binding(data); err != nil {
			return err
		}
	}
	return nil
}

// compileBinding turns a parsed expression into the closure writing one
// aspect of node. The target is decided here, once, so renders never look at
// the node's attributes again.
func compileBinding(node *html.Node, binding expr.Binding, cfg *config) Binding {
	path := binding.Path
	resolve := func(data any) any {
		return path.Resolve(data, node)
	}

	target := binding.Target
	if target == expr.TargetAuto {
		switch dom.Tag(node) {
		case "input", "select", "textarea":
			target = expr.TargetValue
		default:
			target = expr.TargetText
		}
	}

	switch target {
	case expr.TargetValue:
		return func(data any) error {
			dom.SetValue(node, lookup.String(resolve(data)))
			return nil
		}
	case expr.TargetHTML:
		return func(data any) error {
			return setMarkup(node, binding, cfg.sanitize(lookup.String(resolve(data))))
		}
	case expr.TargetMarkdown:
		converter := cfg.markdown
		return func(data any) error {
			var buf bytes.Buffer
			if err := converter.Convert([]byte(lookup.String(resolve(data))), &buf); err != nil {
				return &RenderError{Node: dom.Describe(node), Expr: binding.Raw, Err: fmt.Errorf("convert markdown: %w", err)}
			}
			return setMarkup(node, binding, cfg.sanitize(buf.String()))
		}
	case expr.TargetClass:
		applied := ""
		return func(data any) error {
			token := lookup.String(resolve(data))
			if applied != "" && applied != token {
				dom.RemoveClass(node, applied)
			}
			if token != "" {
				dom.AddClass(node, token)
			}
			applied = token
			return nil
		}
	case expr.TargetClassEnum:
		return func(data any) error {
			token := lookup.String(resolve(data))
			if !binding.InEnum(token) {
				return nil
			}
			dom.RemoveClass(node, binding.Enum...)
			dom.AddClass(node, token)
			return nil
		}
	case expr.TargetAttr:
		attr := binding.Attr
		return func(data any) error {
			switch value := resolve(data).(type) {
			case bool:
				if value {
					dom.SetAttr(node, attr, "")
				} else {
					dom.RemoveAttr(node, attr)
				}
			default:
				dom.SetAttr(node, attr, lookup.String(value))
			}
			return nil
		}
	default:
		return func(data any) error {
			dom.SetText(node, lookup.String(resolve(data)))
			return nil
		}
	}
}

func setMarkup(node *html.Node, binding expr.Binding, markup string) error {
	if err := dom.SetHTML(node, markup); err != nil {
		return &RenderError{Node: dom.Describe(node), Expr: binding.Raw, Err: err}
	}
	return nil
}

package render

import (
	"golang.org/x/net/html"

	"github.com/zipang/temples/pkg/dom"
	"github.com/zipang/temples/pkg/expr"
)

// ConditionalRenderer gates a subtree behind a guard. While the guard is
// falsy the node is swapped out of the tree for a comment placeholder and its
// nested bindings are skipped; the first truthy render swaps it back.
type ConditionalRenderer struct {
	node        *html.Node
	placeholder *html.Node
	guard       *expr.Guard
	nested      []Binding
	children    []Renderer
	visible     bool
}

func newConditionalRenderer(node *html.Node, guard *expr.Guard, own []expr.Binding, cfg *config) (*ConditionalRenderer, error) {
	children, err := compileChildren(node, cfg)
	if err != nil {
		return nil, err
	}

	nested := make([]Binding, 0, len(own)+len(children))
	for _, binding := range own {
		nested = append(nested, compileBinding(node, binding, cfg))
	}
	nested = append(nested, flatten(children)...)

	return &ConditionalRenderer{
		node:        node,
		placeholder: dom.Placeholder("temples: hidden " + dom.Describe(node)),
		guard:       guard,
		nested:      nested,
		children:    children,
		visible:     true,
	}, nil
}

func (r *ConditionalRenderer) Kind() Kind { return KindConditional }
func (r *ConditionalRenderer) Node() *html.Node { return r.node }
func (r *ConditionalRenderer) Guard() *expr.Guard { return r.guard }

// Visible reports the state left by the last render.
func (r *ConditionalRenderer) Visible() bool { return r.visible }

// Current returns whichever of the node and its placeholder is in the tree.
func (r *ConditionalRenderer) Current() *html.Node {
	if r.visible {
		return r.node
	}
	return r.placeholder
}

func (r *ConditionalRenderer) Render(data any) (*html.Node, error) {
	if r.node == nil {
		return nil, ErrDestroyed
	}

	ok, err := r.guard.Eval(data, r.node)
	if err != nil {
		return r.Current(), &RenderError{Node: dom.Describe(r.node), Expr: r.guard.String(), Err: err}
	}
	if !ok {
		r.hide()
		return r.placeholder, nil
	}

	r.show()
	if err := applyAll(r.nested, data); err != nil {
		return r.node, err
	}
	return r.node, nil
}

// Bindings returns one binding covering the guard and the whole subtree.
func (r *ConditionalRenderer) Bindings() []Binding {
	return []Binding{func(data any) error {
		_, err := r.Render(data)
		return err
	}}
}

func (r *ConditionalRenderer) Destroy() {
	for _, child := range r.children {
		child.Destroy()
	}
	if !r.visible {
		dom.Replace(r.placeholder, r.node)
	}
	r.node, r.placeholder, r.nested, r.children = nil, nil, nil, nil
}

func (r *ConditionalRenderer) sealed() {}

// hide and show keep exactly one of node and placeholder attached. A node
// without a parent only flips state, so Current still reports the right one.
func (r *ConditionalRenderer) hide() {
	if !r.visible {
		return
	}
	dom.Replace(r.node, r.placeholder)
	r.visible = false
}

func (r *ConditionalRenderer) show() {
	if r.visible {
		return
	}
	dom.Replace(r.placeholder, r.node)
	r.visible = true
}

package render

import (
	"golang.org/x/net/html"

	"github.com/zipang/temples/pkg/dom"
	"github.com/zipang/temples/pkg/expr"
	"github.com/zipang/temples/pkg/lookup"
)

// ListRenderer repeats a compiled item template once per element of a
// collection, appending a copy of each rendered item to the loop node. A guard
// on the loop node wraps the whole repeat in a ConditionalRenderer.
type ListRenderer struct {
	node  *html.Node
	loop  expr.Loop
	item  *Template
	own   []Binding
	cond  *ConditionalRenderer
	cfg   *config
	label string
}

func newListRenderer(node *html.Node, loop expr.Loop, guard *expr.Guard, own []expr.Binding, cfg *config) (*ListRenderer, error) {
	label := dom.Describe(node)
	first := dom.FirstElementChild(node)
	if first == nil {
		return nil, ErrMissingItemTemplate
	}

	// The item template lives in its own holder; the loop node keeps only
	// rendered copies.
	dom.Detach(first)
	dom.Empty(node)
	item, err := compile(dom.NewHolder(first), cfg)
	if err != nil {
		return nil, err
	}

	r := &ListRenderer{
		node:  node,
		loop:  loop,
		item:  item,
		cfg:   cfg,
		label: label,
	}
	for _, binding := range own {
		r.own = append(r.own, compileBinding(node, binding, cfg))
	}

	if guard != nil {
		r.cond = &ConditionalRenderer{
			node:        node,
			placeholder: dom.Placeholder("temples: hidden " + label),
			guard:       guard,
			nested:      append(append([]Binding(nil), r.own...), r.repeat),
			visible:     true,
		}
	}
	return r, nil
}

func (r *ListRenderer) Kind() Kind { return KindList }
func (r *ListRenderer) Node() *html.Node { return r.node }
func (r *ListRenderer) Loop() expr.Loop { return r.loop }

// Item returns the compiled template repeated for every element.
func (r *ListRenderer) Item() *Template { return r.item }

// Current returns the loop node, or its placeholder while a guard hides it.
func (r *ListRenderer) Current() *html.Node {
	if r.cond != nil {
		return r.cond.Current()
	}
	return r.node
}

func (r *ListRenderer) Render(data any) (*html.Node, error) {
	if r.node == nil {
		return nil, ErrDestroyed
	}
	if r.cond != nil {
		return r.cond.Render(data)
	}
	if err := applyAll(r.own, data); err != nil {
		return r.node, err
	}
	if err := r.repeat(data); err != nil {
		return r.node, err
	}
	return r.node, nil
}

// Bindings returns one binding covering the repeat and any guard.
func (r *ListRenderer) Bindings() []Binding {
	return []Binding{func(data any) error {
		_, err := r.Render(data)
		return err
	}}
}

func (r *ListRenderer) Destroy() {
	if r.item != nil {
		r.item.Destroy()
	}
	if r.cond != nil {
		r.cond.Destroy()
	}
	r.node, r.item, r.own, r.cond = nil, nil, nil, nil
}

func (r *ListRenderer) sealed() {}

func (r *ListRenderer) repeat(data any) error {
	value, found := r.loop.Collection.Lookup(data, r.node)
	if !found {
		r.cfg.logger.Debug("temples: collection not found", "node", r.label, "path", r.loop.Collection.Raw)
	}
	items, err := lookup.Items(value)
	if err != nil {
		return &RenderError{Node: r.label, Expr: r.loop.Raw, Err: err}
	}

	dom.Empty(r.node)
	indexName := r.loop.Var + "Index"
	for i, item := range items {
		scope := lookup.With(lookup.With(data, r.loop.Var, item), indexName, i)
		rendered, err := r.item.Render(scope)
		if err != nil {
			return err
		}
		for child := rendered.FirstChild; child != nil; child = child.NextSibling {
			dom.AppendClone(r.node, child)
		}
	}
	return nil
}

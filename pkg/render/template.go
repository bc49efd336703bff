package render

import (
	"errors"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/zipang/temples/pkg/dom"
)

// Template is a compiled tree: the structural root plus the ordered bindings
// of every renderer found in it. Render applies the bindings in document
// order and may be called any number of times.
//
// Rendering mutates the tree in place. Render, Execute and RenderString
// serialise callers on a per-template mutex; the *html.Node returned by
// Render must not be read while another goroutine renders the same template.
type Template struct {
	mu        sync.Mutex
	root      *html.Node
	top       current
	renderers []Renderer
	bindings  []Binding
	cfg       *config
}

// Compile compiles root. A holder (see dom.ParseFragment) or a document node
// compiles each of its children; any other element is compiled as the single
// structural root and stays where it is in its tree.
func Compile(root *html.Node, options ...Option) (*Template, error) {
	return compile(root, newConfig(options...))
}

// CompileString parses markup as a fragment and compiles it.
func CompileString(markup string, options ...Option) (*Template, error) {
	root, err := dom.ParseFragment(markup)
	if err != nil {
		return nil, err
	}
	return Compile(root, options...)
}

// MustCompileString is like CompileString but panics on error.
func MustCompileString(markup string, options ...Option) *Template {
	tpl, err := CompileString(markup, options...)
	if err != nil {
		panic(err)
	}
	return tpl
}

func compile(root *html.Node, cfg *config) (*Template, error) {
	if root == nil {
		return nil, errors.New("render: template root is required")
	}

	var (
		renderers []Renderer
		err       error
	)
	if dom.IsHolder(root) || root.Type == html.DocumentNode {
		renderers, err = compileChildren(root, cfg)
	} else {
		renderers, err = compileNode(root, cfg)
	}
	if err != nil {
		return nil, err
	}

	tpl := &Template{
		root:      root,
		renderers: renderers,
		bindings:  flatten(renderers),
		cfg:       cfg,
	}
	if len(renderers) > 0 && renderers[0].Node() == root {
		if c, ok := renderers[0].(current); ok {
			tpl.top = c
		}
	}
	cfg.logger.Debug("temples: compiled",
		"node", dom.Describe(root),
		"renderers", len(renderers),
		"bindings", len(tpl.bindings),
	)
	return tpl, nil
}

// compileChildren compiles the element children of parent in document order.
func compileChildren(parent *html.Node, cfg *config) ([]Renderer, error) {
	var out []Renderer
	for child := parent.FirstChild; child != nil; {
		next := child.NextSibling
		if dom.IsElement(child) {
			found, err := compileNode(child, cfg)
			if err != nil {
				return nil, err
			}
			out = append(out, found...)
		}
		child = next
	}
	return out, nil
}

// compileNode compiles node and, unless node opens a loop or a guarded
// section, the nodes below it.
func compileNode(node *html.Node, cfg *config) ([]Renderer, error) {
	boundary := isBoundary(node, cfg.vocabulary)
	renderer, err := newRenderer(node, cfg)
	if err != nil {
		return nil, err
	}

	var out []Renderer
	if renderer != nil {
		out = append(out, renderer)
	}
	if boundary {
		return out, nil
	}
	below, err := compileChildren(node, cfg)
	if err != nil {
		return nil, err
	}
	return append(out, below...), nil
}

func flatten(renderers []Renderer) []Binding {
	var out []Binding
	for _, renderer := range renderers {
		out = append(out, renderer.Bindings()...)
	}
	return out
}

func (t *Template) Kind() Kind { return KindTemplate }

// Node returns the compiled root.
func (t *Template) Node() *html.Node { return t.root }

// Root is an alias of Node.
func (t *Template) Root() *html.Node { return t.root }

// Render applies data to every binding in order and returns the root. The
// first failing binding aborts the call; the template stays usable.
func (t *Template) Render(data any) (*html.Node, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.render(data)
}

func (t *Template) render(data any) (*html.Node, error) {
	if t.root == nil {
		return nil, ErrDestroyed
	}
	if err := applyAll(t.bindings, data); err != nil {
		return t.root, err
	}
	return t.root, nil
}

// Nodes returns the nodes the template serialises: the children of a holder,
// or the root itself (its placeholder while a guard hides it).
func (t *Template) Nodes() []*html.Node {
	if t.root == nil {
		return nil
	}
	if dom.IsHolder(t.root) {
		var out []*html.Node
		for child := t.root.FirstChild; child != nil; child = child.NextSibling {
			out = append(out, child)
		}
		return out
	}
	if t.top != nil {
		return []*html.Node{t.top.Current()}
	}
	return []*html.Node{t.root}
}

// HTML serialises the template in its current state.
func (t *Template) HTML() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var b strings.Builder
	if err := t.write(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Execute renders data and writes the result to w.
func (t *Template) Execute(w io.Writer, data any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.render(data); err != nil {
		return err
	}
	return t.write(w)
}

// RenderString renders data and returns the serialised result.
func (t *Template) RenderString(data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (t *Template) write(w io.Writer) error {
	if t.root == nil {
		return ErrDestroyed
	}
	return dom.Render(w, t.Nodes()...)
}

// Bindings returns the flattened binding list.
func (t *Template) Bindings() []Binding {
	return append([]Binding(nil), t.bindings...)
}

// Renderers returns the renderers compiled directly in this template, in
// document order.
func (t *Template) Renderers() []Renderer {
	return append([]Renderer(nil), t.renderers...)
}

// Destroy releases the bindings, the renderers and the root. Rendering a
// destroyed template fails with ErrDestroyed.
func (t *Template) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, renderer := range t.renderers {
		renderer.Destroy()
	}
	t.root, t.top, t.renderers, t.bindings = nil, nil, nil, nil
}

func (t *Template) sealed() {}

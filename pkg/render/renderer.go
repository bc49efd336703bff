package render

import (
	"golang.org/x/net/html"
)

// Binding applies data to one compiled piece of a template. Bindings are
// created at compile time and invoked on every render.
type Binding func(data any) error

// Kind identifies a renderer variant.
type Kind int

const (
	KindAttribute Kind = iota
	KindMultiAttribute
	KindConditional
	KindList
	KindTemplate
)

func (k Kind) String() string {
	switch k {
	case KindAttribute:
		return "attribute"
	case KindMultiAttribute:
		return "multi-attribute"
	case KindConditional:
		return "conditional"
	case KindList:
		return "list"
	case KindTemplate:
		return "template"
	default:
		return "unknown"
	}
}

// Renderer is a compiled unit owning one or more bindings over a node or a
// subtree. The set of implementations is closed: AttributeRenderer,
// MultiAttributeRenderer, ConditionalRenderer, ListRenderer and Template.
type Renderer interface {
	Kind() Kind
	// Node returns the element the renderer was compiled from.
	Node() *html.Node
	// Render applies data and returns the rendered node.
	Render(data any) (*html.Node, error)
	// Bindings returns the functions a parent template flattens into its own
	// binding list. Conditional and list renderers return a single binding
	// covering their whole subtree.
	Bindings() []Binding
	// Destroy releases node references and bindings.
	Destroy()

	sealed()
}

// current is implemented by renderers that may swap their node for a
// placeholder, so serialisation can pick whichever is in the tree.
type current interface {
	Current() *html.Node
}

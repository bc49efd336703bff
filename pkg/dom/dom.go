package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// holderTag names the detached element that parents the top-level nodes of a
// parsed fragment. It never reaches serialised output: callers render its
// children.
const holderTag = "temples-root"

var bodyContext = &html.Node{
	Type:     html.ElementNode,
	Data:     "body",
	DataAtom: atom.Body,
}

// ParseFragment parses markup in a <body> context and returns a detached
// holder node whose children are the top-level nodes of the fragment.
func ParseFragment(markup string) (*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), bodyContext)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	return NewHolder(nodes...), nil
}

// ParseDocument parses a full HTML document.
func ParseDocument(markup string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("dom: parse document: %w", err)
	}
	return doc, nil
}

// NewHolder creates a holder node and appends the supplied nodes to it. Nodes
// still attached to another parent are detached first.
func NewHolder(nodes ...*html.Node) *html.Node {
	holder := &html.Node{Type: html.ElementNode, Data: holderTag}
	for _, n := range nodes {
		if n == nil {
			continue
		}
		Detach(n)
		holder.AppendChild(n)
	}
	return holder
}

// IsHolder reports whether n was created by NewHolder.
func IsHolder(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == holderTag
}

// IsElement reports whether n is an element node.
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// Tag returns the lower-cased tag name of an element, or "" for other nodes.
func Tag(n *html.Node) string {
	if !IsElement(n) {
		return ""
	}
	return strings.ToLower(n.Data)
}

// Attr returns the value of the named attribute.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.Attr {
		if attr.Namespace == "" && strings.EqualFold(attr.Key, key) {
			return attr.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether n carries any of the named attributes.
func HasAttr(n *html.Node, keys ...string) bool {
	for _, key := range keys {
		if _, ok := Attr(n, key); ok {
			return true
		}
	}
	return false
}

// SetAttr replaces the value of key, appending the attribute when missing.
func SetAttr(n *html.Node, key, value string) {
	if n == nil {
		return
	}
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && strings.EqualFold(n.Attr[i].Key, key) {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

// RemoveAttr drops every named attribute from n.
func RemoveAttr(n *html.Node, keys ...string) {
	if n == nil || len(n.Attr) == 0 {
		return
	}
	kept := n.Attr[:0]
	for _, attr := range n.Attr {
		if attr.Namespace == "" && containsFold(keys, attr.Key) {
			continue
		}
		kept = append(kept, attr)
	}
	n.Attr = kept
}

// Classes returns the class tokens of n in document order.
func Classes(n *html.Node) []string {
	raw, _ := Attr(n, "class")
	return strings.Fields(raw)
}

// HasClass reports whether n carries the class token.
func HasClass(n *html.Node, token string) bool {
	for _, class := range Classes(n) {
		if class == token {
			return true
		}
	}
	return false
}

// AddClass appends each token that n does not already carry.
func AddClass(n *html.Node, tokens ...string) {
	classes := Classes(n)
	changed := false
	for _, token := range tokens {
		for _, field := range strings.Fields(token) {
			if !contains(classes, field) {
				classes = append(classes, field)
				changed = true
			}
		}
	}
	if changed {
		SetAttr(n, "class", strings.Join(classes, " "))
	}
}

// RemoveClass drops the tokens from n. The class attribute is kept, possibly
// empty, when it was present before.
func RemoveClass(n *html.Node, tokens ...string) {
	if _, ok := Attr(n, "class"); !ok {
		return
	}
	classes := Classes(n)
	kept := classes[:0]
	for _, class := range classes {
		if contains(tokens, class) {
			continue
		}
		kept = append(kept, class)
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

// Empty removes every child of n.
func Empty(n *html.Node) {
	if n == nil {
		return
	}
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}

// Detach removes n from its parent, if any.
func Detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// SetText replaces the children of n with a single text node.
func SetText(n *html.Node, text string) {
	Empty(n)
	if text == "" {
		return
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// SetHTML replaces the children of n with the parsed markup, using n as the
// parsing context.
func SetHTML(n *html.Node, markup string) error {
	if !IsElement(n) {
		return errors.New("dom: html content requires an element")
	}
	context := n
	if IsHolder(n) {
		context = bodyContext
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return fmt.Errorf("dom: parse inner html: %w", err)
	}
	Empty(n)
	for _, child := range nodes {
		Detach(child)
		n.AppendChild(child)
	}
	return nil
}

// SetValue writes the value aspect of a form control: the value attribute of
// an input, the content of a textarea, or the selected option of a select.
func SetValue(n *html.Node, value string) {
	switch Tag(n) {
	case "textarea":
		SetText(n, value)
	case "select":
		for _, option := range FindAll(n, func(c *html.Node) bool { return Tag(c) == "option" }) {
			optionValue, ok := Attr(option, "value")
			if !ok {
				optionValue = strings.TrimSpace(Text(option))
			}
			if optionValue == value {
				SetAttr(option, "selected", "")
			} else {
				RemoveAttr(option, "selected")
			}
		}
	default:
		SetAttr(n, "value", value)
	}
}

// Text returns the concatenated text content of n and its descendants.
func Text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			return
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	if n != nil {
		walk(n)
	}
	return b.String()
}

// Clone returns a detached deep copy of n.
func Clone(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	out := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		out.Attr = make([]html.Attribute, len(n.Attr))
		copy(out.Attr, n.Attr)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		out.AppendChild(Clone(child))
	}
	return out
}

// AppendClone appends a deep copy of n to container and returns the copy.
func AppendClone(container, n *html.Node) *html.Node {
	clone := Clone(n)
	container.AppendChild(clone)
	return clone
}

// Replace puts replacement where old sits in the tree. It reports false when
// old has no parent.
func Replace(old, replacement *html.Node) bool {
	if old == nil || old.Parent == nil || replacement == nil {
		return false
	}
	Detach(replacement)
	old.Parent.InsertBefore(replacement, old)
	old.Parent.RemoveChild(old)
	return true
}

// Placeholder creates the comment node that stands in for a hidden element.
func Placeholder(label string) *html.Node {
	return &html.Node{Type: html.CommentNode, Data: label}
}

// Describe returns a short tag#id.class label for diagnostics.
func Describe(n *html.Node) string {
	if n == nil {
		return "<nil>"
	}
	if !IsElement(n) {
		return "#" + nodeTypeName(n.Type)
	}
	var b strings.Builder
	b.WriteString(Tag(n))
	if id, ok := Attr(n, "id"); ok && id != "" {
		b.WriteString("#")
		b.WriteString(id)
	}
	for _, class := range Classes(n) {
		b.WriteString(".")
		b.WriteString(class)
	}
	return b.String()
}

// ElementChildren returns the element children of n in order.
func ElementChildren(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if IsElement(child) {
			out = append(out, child)
		}
	}
	return out
}

// FirstElementChild returns the first element child of n, or nil.
func FirstElementChild(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if IsElement(child) {
			return child
		}
	}
	return nil
}

// FindAll returns the descendants of root (excluding root) matching the
// predicate, in document order.
func FindAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if match(child) {
				out = append(out, child)
			}
			walk(child)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}

// FindByID returns the first element under root (root included) whose id
// attribute equals id.
func FindByID(root *html.Node, id string) *html.Node {
	if root == nil || id == "" {
		return nil
	}
	if value, ok := Attr(root, "id"); ok && value == id && IsElement(root) {
		return root
	}
	matches := FindAll(root, func(n *html.Node) bool {
		value, ok := Attr(n, "id")
		return IsElement(n) && ok && value == id
	})
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

// Render serialises the nodes to w. Holder nodes are rendered through their
// children.
func Render(w io.Writer, nodes ...*html.Node) error {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if IsHolder(n) {
			for child := n.FirstChild; child != nil; child = child.NextSibling {
				if err := Render(w, child); err != nil {
					return err
				}
			}
			continue
		}
		if err := html.Render(w, n); err != nil {
			return fmt.Errorf("dom: render %s: %w", Describe(n), err)
		}
	}
	return nil
}

// String serialises the nodes to a string.
func String(nodes ...*html.Node) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, nodes...); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderChildren serialises the children of n, i.e. its inner HTML.
func RenderChildren(n *html.Node) (string, error) {
	if n == nil {
		return "", nil
	}
	var buf bytes.Buffer
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if err := Render(&buf, child); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func nodeTypeName(t html.NodeType) string {
	switch t {
	case html.TextNode:
		return "text"
	case html.DocumentNode:
		return "document"
	case html.CommentNode:
		return "comment"
	case html.DoctypeNode:
		return "doctype"
	default:
		return "node"
	}
}

func contains(values []string, needle string) bool {
	for _, value := range values {
		if value == needle {
			return true
		}
	}
	return false
}

func containsFold(values []string, needle string) bool {
	for _, value := range values {
		if strings.EqualFold(value, needle) {
			return true
		}
	}
	return false
}

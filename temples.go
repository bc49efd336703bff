package temples

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/zipang/temples/pkg/dom"
	"github.com/zipang/temples/pkg/render"
)

// DocumentName is the registry name of the template compiled from the whole
// configured document by RenderDocument.
const DocumentName = "document"

var (
	// ErrNoDocument reports an #id template or RenderDocument call on an
	// engine without a document.
	ErrNoDocument = errors.New("temples: no document configured")
	// ErrNoLoader reports a name-only Compile on an engine without a loader.
	ErrNoLoader = errors.New("temples: no template loader configured")
	// ErrElementNotFound reports an #id missing from the document.
	ErrElementNotFound = errors.New("temples: element not found")
	// ErrTemplateNotFound aliases the registry miss.
	ErrTemplateNotFound = render.ErrTemplateNotFound
)

// Loader supplies template markup by name.
type Loader interface {
	Load(ctx context.Context, name string) (string, error)
}

// Engine names, compiles, renders and tears down templates. Templates are
// compiled once and rendered any number of times.
type Engine struct {
	registry      *render.Registry
	loader        Loader
	document      *html.Node
	logger        *slog.Logger
	renderOptions []render.Option

	// mu serialises compilation so concurrent first renders of an unknown
	// name compile it once.
	mu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes engine and compiler diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDocument sets the document "#id" templates and RenderDocument compile
// from. The document is rendered in place.
func WithDocument(doc *html.Node) Option {
	return func(e *Engine) {
		e.document = doc
	}
}

// WithLoader sets where name-only templates are read from.
func WithLoader(loader Loader) Option {
	return func(e *Engine) {
		e.loader = loader
	}
}

// WithTemplateDir reads name-only templates from dir ("page" is dir/page.html).
func WithTemplateDir(dir string) Option {
	return WithLoader(NewLoader(dir))
}

// WithRegistry stores compiled templates in registry instead of a private one.
func WithRegistry(registry *render.Registry) Option {
	return func(e *Engine) {
		if registry != nil {
			e.registry = registry
		}
	}
}

// WithRenderOptions applies compile options (sanitizer, markdown, vocabulary)
// to every template the engine compiles.
func WithRenderOptions(options ...render.Option) Option {
	return func(e *Engine) {
		e.renderOptions = append(e.renderOptions, options...)
	}
}

// New creates an Engine.
func New(options ...Option) *Engine {
	e := &Engine{}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	e.applyDefaults()
	return e
}

func (e *Engine) applyDefaults() {
	if e.registry == nil {
		e.registry = render.NewRegistry()
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

// Compile compiles and registers a template under name, replacing (and
// destroying) any template already registered under it.
//
// With markup, the markup is the template. Without it, a name starting with
// "#" selects the element with that id in the configured document, and any
// other name is read from the configured loader. Document elements compile
// once: compiling an "#id" or DocumentName again returns the registered
// template.
func (e *Engine) Compile(name string, markup ...string) (*render.Template, error) {
	return e.CompileContext(context.Background(), name, markup...)
}

// CompileContext is Compile with a context for the loader.
func (e *Engine) CompileContext(ctx context.Context, name string, markup ...string) (*render.Template, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.compile(ctx, name, markup...)
}

func (e *Engine) compile(ctx context.Context, name string, markup ...string) (*render.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("temples: template name is required")
	}

	// A document element is compiled in place and loses its markers, so it
	// can only be compiled once; later calls return the live template.
	documentBacked := len(markup) == 0 && isDocumentName(name)
	if documentBacked {
		if tpl, err := e.registry.Get(name); err == nil {
			return tpl, nil
		}
	}

	tpl, err := e.build(ctx, name, markup)
	if err != nil {
		return nil, fmt.Errorf("temples: compile %q: %w", name, err)
	}
	register := e.registry.Set
	if documentBacked {
		register = e.registry.Register
	}
	if err := register(name, tpl); err != nil {
		tpl.Destroy()
		return nil, fmt.Errorf("temples: register %q: %w", name, err)
	}
	e.logger.Debug("temples: registered", "name", name, "bindings", len(tpl.Bindings()))
	return tpl, nil
}

func (e *Engine) build(ctx context.Context, name string, markup []string) (*render.Template, error) {
	options := e.compileOptions()
	switch {
	case len(markup) > 0:
		return render.CompileString(strings.Join(markup, ""), options...)
	case name == DocumentName:
		if e.document == nil {
			return nil, ErrNoDocument
		}
		return render.Compile(e.document, options...)
	case strings.HasPrefix(name, "#"):
		if e.document == nil {
			return nil, ErrNoDocument
		}
		node := dom.FindByID(e.document, strings.TrimPrefix(name, "#"))
		if node == nil {
			return nil, ErrElementNotFound
		}
		return render.Compile(node, options...)
	default:
		if e.loader == nil {
			return nil, ErrNoLoader
		}
		source, err := e.loader.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		return render.CompileString(source, options...)
	}
}

func (e *Engine) compileOptions() []render.Option {
	options := make([]render.Option, 0, len(e.renderOptions)+1)
	options = append(options, render.WithLogger(e.logger))
	return append(options, e.renderOptions...)
}

// Template returns the template registered under name.
func (e *Engine) Template(name string) (*render.Template, error) {
	return e.registry.Get(name)
}

// lookup returns the named template, compiling it on first use when its
// source can be found without markup.
func (e *Engine) lookup(ctx context.Context, name string) (*render.Template, error) {
	if tpl, err := e.registry.Get(name); err == nil {
		return tpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tpl, err := e.registry.Get(name); err == nil {
		return tpl, nil
	}
	if !e.canCompile(name) {
		return nil, fmt.Errorf("temples: render: %w: %q", ErrTemplateNotFound, name)
	}
	return e.compile(ctx, name)
}

func isDocumentName(name string) bool {
	return name == DocumentName || strings.HasPrefix(name, "#")
}

func (e *Engine) canCompile(name string) bool {
	if isDocumentName(name) {
		return e.document != nil
	}
	return e.loader != nil
}

// Render renders data through the named template and returns the serialised
// result. An unknown name is compiled first when the engine can find its
// source.
func (e *Engine) Render(name string, data any) (string, error) {
	return e.RenderContext(context.Background(), name, data)
}

// RenderContext is Render with a context for on-demand loading.
func (e *Engine) RenderContext(ctx context.Context, name string, data any) (string, error) {
	tpl, err := e.lookup(ctx, name)
	if err != nil {
		return "", err
	}
	out, err := tpl.RenderString(data)
	if err != nil {
		return "", fmt.Errorf("temples: render %q: %w", name, err)
	}
	return out, nil
}

// Execute renders data through the named template into w.
func (e *Engine) Execute(w io.Writer, name string, data any) error {
	tpl, err := e.lookup(context.Background(), name)
	if err != nil {
		return err
	}
	if err := tpl.Execute(w, data); err != nil {
		return fmt.Errorf("temples: render %q: %w", name, err)
	}
	return nil
}

// RenderDocument renders data through the whole configured document,
// compiling it on first use, and returns the serialised document.
func (e *Engine) RenderDocument(data any) (string, error) {
	if e.document == nil {
		return "", ErrNoDocument
	}
	return e.Render(DocumentName, data)
}

// Destroy tears down the named templates, or every template when no name is
// given. Unknown names are ignored.
func (e *Engine) Destroy(names ...string) {
	if len(names) == 0 {
		e.registry.Reset()
		e.logger.Debug("temples: destroyed all templates")
		return
	}
	for _, name := range names {
		e.registry.Remove(name)
	}
}

// Names lists the registered template names, sorted.
func (e *Engine) Names() []string {
	return e.registry.List()
}

// Registry exposes the backing registry.
func (e *Engine) Registry() *render.Registry {
	return e.registry
}

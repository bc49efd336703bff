package render

import (
	"fmt"
	"sort"
	"sync"
)

// Registry stores compiled templates by name. It owns the templates it holds:
// Remove and Reset destroy them.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		templates: make(map[string]*Template),
	}
}

// Register adds a template by name. Duplicate names return an error.
func (r *Registry) Register(name string, tpl *Template) error {
	if tpl == nil {
		return fmt.Errorf("render: template is required")
	}
	if name == "" {
		return fmt.Errorf("render: template name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.templates[name]; exists {
		return fmt.Errorf("render: template %q already registered", name)
	}

	r.templates[name] = tpl
	return nil
}

// Set stores tpl under name, destroying the template it replaces.
func (r *Registry) Set(name string, tpl *Template) error {
	if tpl == nil {
		return fmt.Errorf("render: template is required")
	}
	if name == "" {
		return fmt.Errorf("render: template name is required")
	}

	r.mu.Lock()
	previous := r.templates[name]
	r.templates[name] = tpl
	r.mu.Unlock()

	if previous != nil && previous != tpl {
		previous.Destroy()
	}
	return nil
}

// Get retrieves a template by name.
func (r *Registry) Get(name string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tpl, ok := r.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return tpl, nil
}

// List returns a sorted list of template names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Remove destroys and forgets the named template. Unknown names are ignored.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	tpl, ok := r.templates[name]
	delete(r.templates, name)
	r.mu.Unlock()

	if ok {
		tpl.Destroy()
	}
}

// Reset destroys every registered template.
func (r *Registry) Reset() {
	r.mu.Lock()
	templates := r.templates
	r.templates = make(map[string]*Template)
	r.mu.Unlock()

	for _, tpl := range templates {
		tpl.Destroy()
	}
}

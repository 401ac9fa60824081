package docgen

import (
	"fmt"
	"sort"
	"sync"
)

// Registry stores renderers by name, in registration order.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]DocumentRenderer
	order     []string
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		renderers: make(map[string]DocumentRenderer),
	}
}

// Register adds a renderer by its Name(). Duplicate names return an error.
func (r *Registry) Register(renderer DocumentRenderer) error {
	if renderer == nil {
		return fmt.Errorf("docgen: renderer is required")
	}
	name := renderer.Name()
	if name == "" {
		return fmt.Errorf("docgen: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[name]; exists {
		return fmt.Errorf("docgen: renderer %q already registered", name)
	}

	r.renderers[name] = renderer
	r.order = append(r.order, name)
	return nil
}

// Get retrieves a renderer by name.
func (r *Registry) Get(name string) (DocumentRenderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	renderer, ok := r.renderers[name]
	if !ok {
		return nil, fmt.Errorf("docgen: renderer %q not found", name)
	}
	return renderer, nil
}

// List returns a sorted list of renderer names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}

// For returns the first registered renderer that supports tmpl.
func (r *Registry) For(tmpl Template) (DocumentRenderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		if rd := r.renderers[name]; rd.Supports(tmpl) {
			return rd, nil
		}
	}
	return nil, fmt.Errorf("%w for %T %q", ErrNoRenderer, tmpl, templateName(tmpl))
}

func templateName(tmpl Template) string {
	if tmpl == nil {
		return ""
	}
	return tmpl.TemplateName()
}

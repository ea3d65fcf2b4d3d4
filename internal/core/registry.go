package core

import (
	"fmt"
	"strings"
	"sync"
)

// Registry holds the framework specs known to an analysis run.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]FrameworkSpec
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]FrameworkSpec)}
}

// Register adds a framework spec. Field keys are stored normalized.
func (r *Registry) Register(spec FrameworkSpec) error {
	spec = spec.clone()
	spec.Name = strings.TrimSpace(spec.Name)
	if spec.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidFramework)
	}

	seen := make(map[string]bool, len(spec.Fields))
	required := 0
	for i := range spec.Fields {
		key := NormalizeKey(spec.Fields[i].Key)
		if key == "" {
			return fmt.Errorf("%w: %s has a field with an empty key", ErrInvalidFramework, spec.Name)
		}
		if seen[key] {
			return fmt.Errorf("%w: %s declares field %q twice", ErrInvalidFramework, spec.Name, key)
		}
		seen[key] = true
		spec.Fields[i].Key = key
		if spec.Fields[i].Kind == "" {
			spec.Fields[i].Kind = KindText
		}
		if spec.Fields[i].Required {
			required++
		}
	}
	if required == 0 {
		return fmt.Errorf("%w: %s has no required fields", ErrInvalidFramework, spec.Name)
	}
	if spec.Title == "" {
		spec.Title = spec.Name
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.specs[spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateFramework, spec.Name)
	}
	r.specs[spec.Name] = spec
	r.order = append(r.order, spec.Name)
	return nil
}

// Get returns the spec registered under name.
func (r *Registry) Get(name string) (FrameworkSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[name]
	if !ok {
		return FrameworkSpec{}, fmt.Errorf("%w: %s", ErrUnknownFramework, name)
	}
	return spec.clone(), nil
}

// List returns all specs in registration order.
func (r *Registry) List() []FrameworkSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	specs := make([]FrameworkSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.specs[name].clone())
	}
	return specs
}

// Names returns registered framework names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

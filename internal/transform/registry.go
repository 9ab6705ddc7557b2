package transform

import (
	"slices"
	"sync"
)

// Registry maps transform names to implementations.
type Registry struct {
	mu         sync.RWMutex
	transforms map[string]Transform
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{transforms: make(map[string]Transform)}
}

// NewDefaultRegistry creates a registry holding the built-in transforms.
// headingTypes lists the node types treated as headings; empty means "Head".
func NewDefaultRegistry(headingTypes ...string) *Registry {
	r := NewRegistry()
	for name, tr := range Builtins(headingTypes...) {
		// Builtin names are distinct and non-empty.
		_ = r.Register(name, tr)
	}
	return r
}

// Register adds a transform under name.
// Returns an error if the name is empty, taken, or t is nil.
func (r *Registry) Register(name string, t Transform) error {
	if name == "" {
		return ErrInvalidRegistration.WithContext("reason", "empty name")
	}
	if t == nil {
		return ErrInvalidRegistration.WithContext("reason", "nil transform").WithContext("transform", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transforms[name]; exists {
		return ErrInvalidRegistration.WithContext("reason", "already registered").WithContext("transform", name)
	}
	r.transforms[name] = t
	return nil
}

// Lookup returns the transform registered under name, or ErrUnknownTransform.
func (r *Registry) Lookup(name string) (Transform, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.transforms[name]
	if !ok {
		return nil, ErrUnknownTransform.WithContext("transform", name)
	}
	return t, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.transforms))
	for name := range r.transforms {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

package search

import (
	"fmt"
)

// Registry is an insertion-ordered set of engines keyed by name. It cannot be
// modified after construction, so it is safe to share between goroutines.
type Registry struct {
	names   []string
	engines map[string]Engine
}

// NewRegistry builds a registry. Engine names must be unique and non-empty.
func NewRegistry(engines ...Engine) (*Registry, error) {
	r := &Registry{
		names:   make([]string, 0, len(engines)),
		engines: make(map[string]Engine, len(engines)),
	}
	for _, e := range engines {
		name := e.Name()
		if name == "" {
			return nil, fmt.Errorf("engine %T has no name", e)
		}
		if _, exists := r.engines[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEngine, name)
		}
		r.names = append(r.names, name)
		r.engines[name] = e
	}
	return r, nil
}

// Engines returns a copy of the name to engine mapping.
func (r *Registry) Engines() map[string]Engine {
	out := make(map[string]Engine, len(r.engines))
	for k, v := range r.engines {
		out[k] = v
	}
	return out
}

// Names returns engine names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Get returns the engine registered under name.
func (r *Registry) Get(name string) (Engine, bool) {
	e, ok := r.engines[name]
	return e, ok
}

// Len returns the number of engines.
func (r *Registry) Len() int {
	return len(r.names)
}

// Subset returns a registry holding only the named engines, in registry order.
func (r *Registry) Subset(names ...string) (*Registry, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := r.engines[n]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, n)
		}
		want[n] = true
	}

	var engines []Engine
	for _, n := range r.names {
		if want[n] {
			engines = append(engines, r.engines[n])
		}
	}
	return NewRegistry(engines...)
}

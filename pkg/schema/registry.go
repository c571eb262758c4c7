package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps type tags to their conversion implementations.
// Literal port values are parsed through the Type registered under the port's tag.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Type
}

// NewRegistry creates a registry pre-loaded with the built-in types.
func NewRegistry() *Registry {
	r := &Registry{types: make(map[string]Type)}
	for _, t := range []Type{String(), Int(), Float(), Bool(), Duration(), Any()} {
		r.types[t.Name()] = t
	}
	return r
}

// Register adds a type to the registry.
// If a type with the same name exists, it is overwritten.
func (r *Registry) Register(t Type) error {
	if t == nil || t.Name() == "" {
		return fmt.Errorf("cannot register unnamed type")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[t.Name()] = t
	return nil
}

// Lookup returns the type registered under name.
func (r *Registry) Lookup(name string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns the registered type tags in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseType converts a string type name to a Type.
// Supports the registered tags plus slice forms: "[string]", "[int]", "[Position2D]".
func (r *Registry) ParseType(typeStr string) (Type, error) {
	// Handle slice types: [string], [int], etc.
	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elemType, err := r.ParseType(typeStr[1 : len(typeStr)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elemType), nil
	}

	if t, ok := r.Lookup(typeStr); ok {
		return t, nil
	}
	if t, ok := builtinType(typeStr); ok {
		return t, nil
	}
	return nil, fmt.Errorf("unsupported type: %s", typeStr)
}

// ParseType resolves a built-in type tag without a registry.
func ParseType(typeStr string) (Type, error) {
	return NewRegistry().ParseType(typeStr)
}

// Known reports whether t can be resolved through r, including slices of registered types.
func (r *Registry) Known(t Type) bool {
	if t == nil {
		return true
	}
	if st, ok := t.(*SliceType); ok {
		return r.Known(st.elemType)
	}
	return r.Has(t.Name())
}

package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
)

// Constructor builds a node instance from its configuration and its already built children.
type Constructor func(cfg *node.Config, children []node.Node) (node.Node, error)

// Manifest is the static description of a node type.
// It is queried by the tree builder before any instance exists.
type Manifest struct {
	Type        string           `json:"type"`
	Kind        domain.NodeKind  `json:"kind"`
	Ports       domain.PortsList `json:"-"`
	Description string           `json:"description,omitempty"`
}

// Arity returns the allowed number of children for the manifest kind.
// A negative max means unbounded.
func (m Manifest) Arity() (minChildren, maxChildren int) {
	switch m.Kind {
	case domain.KindControl:
		return 1, -1
	case domain.KindDecorator, domain.KindSubTree:
		return 1, 1
	default:
		return 0, 0
	}
}

type entry struct {
	manifest Manifest
	ctor     Constructor
}

// Registry manages the available node types.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	logger  *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used to report overwritten registrations.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates a new empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]entry),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a node type to the registry.
// If a type with the same name exists, it is overwritten.
func (r *Registry) Register(m Manifest, ctor Constructor) error {
	if m.Type == "" {
		return fmt.Errorf("cannot register node type without a name")
	}
	if ctor == nil {
		return fmt.Errorf("node type '%s': constructor is nil", m.Type)
	}
	if m.Type == domain.NodeTypeSubTree {
		return fmt.Errorf("node type '%s' is reserved", m.Type)
	}
	if m.Kind == "" {
		m.Kind = domain.KindAction
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[m.Type]; exists {
		r.logger.Warn("overwriting node type registration", "type", m.Type)
	}
	r.entries[m.Type] = entry{manifest: m, ctor: ctor}
	return nil
}

// Lookup returns the manifest and constructor registered under name.
func (r *Registry) Lookup(name string) (Manifest, Constructor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e.manifest, e.ctor, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, _, ok := r.Lookup(name)
	return ok
}

// Manifests returns every registered manifest sorted by type name.
func (r *Registry) Manifests() []Manifest {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Manifest, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.manifest)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

package tree

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/internal/compiler"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/schema"
)

// Factory registers node types and port types, and builds trees from definitions.
type Factory struct {
	nodes  *registry.Registry
	types  *schema.Registry
	parser *compiler.Parser
	hooks  domain.TickHooks
	clock  func() time.Time
	logger *slog.Logger
}

// Option defines a functional option for configuring the Factory.
type Option func(*Factory)

// WithLogger sets the logger handed to every node of the trees built.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithHooks registers observability hooks on every tree built.
func WithHooks(hooks domain.TickHooks) Option {
	return func(f *Factory) {
		f.hooks = f.hooks.Merge(hooks)
	}
}

// WithClock replaces the time source used by time-based decorators.
func WithClock(clock func() time.Time) Option {
	return func(f *Factory) {
		f.clock = clock
	}
}

// WithRegistry replaces the node type registry. The built-ins are not added.
func WithRegistry(r *registry.Registry) Option {
	return func(f *Factory) {
		f.nodes = r
	}
}

// NewFactory creates a factory with the built-in control and decorator nodes registered.
func NewFactory(opts ...Option) *Factory {
	f := &Factory{
		types:  schema.NewRegistry(),
		parser: compiler.NewParser(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = logging.NewNop()
	}
	if f.nodes == nil {
		f.nodes = registry.NewWithBuiltins(registry.WithLogger(f.logger))
	}
	return f
}

// Registry exposes the node type registry.
func (f *Factory) Registry() *registry.Registry { return f.nodes }

// Types exposes the port type registry.
func (f *Factory) Types() *schema.Registry { return f.types }

// RegisterNodeType registers a node type with a custom constructor.
func (f *Factory) RegisterNodeType(m registry.Manifest, ctor registry.Constructor) error {
	if err := checkPorts(m.Ports); err != nil {
		return fmt.Errorf("node type '%s': %w", m.Type, err)
	}
	return f.nodes.Register(m, ctor)
}

// RegisterSimpleAction registers a synchronous action built around fn.
func (f *Factory) RegisterSimpleAction(name string, fn node.TickFunc, ports ...domain.PortInfo) error {
	if fn == nil {
		return fmt.Errorf("node type '%s': tick function is nil", name)
	}
	return f.RegisterNodeType(
		registry.Manifest{Type: name, Kind: domain.KindAction, Ports: ports},
		func(cfg *node.Config, _ []node.Node) (node.Node, error) {
			return node.NewSimpleAction(cfg, fn), nil
		},
	)
}

// RegisterSimpleCondition registers a condition built around fn.
func (f *Factory) RegisterSimpleCondition(name string, fn node.TickFunc, ports ...domain.PortInfo) error {
	if fn == nil {
		return fmt.Errorf("node type '%s': tick function is nil", name)
	}
	return f.RegisterNodeType(
		registry.Manifest{Type: name, Kind: domain.KindCondition, Ports: ports},
		func(cfg *node.Config, _ []node.Node) (node.Node, error) {
			return node.NewCondition(cfg, fn), nil
		},
	)
}

// RegisterStatefulAction registers an asynchronous action.
// newBehavior is called once per node instance.
func (f *Factory) RegisterStatefulAction(name string, newBehavior func() node.StatefulBehavior, ports ...domain.PortInfo) error {
	if newBehavior == nil {
		return fmt.Errorf("node type '%s': behavior constructor is nil", name)
	}
	return f.RegisterNodeType(
		registry.Manifest{Type: name, Kind: domain.KindAction, Ports: ports},
		func(cfg *node.Config, _ []node.Node) (node.Node, error) {
			behavior := newBehavior()
			if behavior == nil {
				return nil, errors.New("behavior constructor returned nil")
			}
			return node.NewStatefulAction(cfg, behavior), nil
		},
	)
}

// RegisterType makes a port type available to node manifests.
func (f *Factory) RegisterType(t schema.Type) error {
	return f.types.Register(t)
}

// CreateTreeFromText parses a YAML or JSON definition and builds tree id.
// An empty id selects the main tree of the document.
func (f *Factory) CreateTreeFromText(data []byte, id string) (*Tree, error) {
	doc, err := f.parser.Parse(data)
	if err != nil {
		return nil, err
	}
	return f.CreateTree(doc, id)
}

// CreateTreeFromLoader fetches tree id from loader, together with every
// subtree it references, and builds it.
func (f *Factory) CreateTreeFromLoader(ctx context.Context, loader ports.TreeLoader, id string) (*Tree, error) {
	if id == "" {
		ids, err := loader.ListTrees(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list trees: %w", err)
		}
		if len(ids) != 1 {
			return nil, fmt.Errorf("tree id is required when the loader holds %d trees", len(ids))
		}
		id = ids[0]
	}

	doc := &domain.Document{Main: id}
	pending := []string{id}
	for len(pending) > 0 {
		next := pending[0]
		pending = pending[1:]
		if _, ok := doc.Tree(next); ok {
			continue
		}

		data, err := loader.GetTree(ctx, next)
		if err != nil {
			if errors.Is(err, domain.ErrTreeNotFound) && next != id {
				// reported by the builder as an unknown subtree
				continue
			}
			return nil, fmt.Errorf("failed to load tree '%s': %w", next, err)
		}
		loaded, err := f.parser.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse tree '%s': %w", next, err)
		}
		for _, t := range loaded.Trees {
			if _, ok := doc.Tree(t.ID); ok {
				continue
			}
			doc.Trees = append(doc.Trees, t)
			pending = append(pending, subtreeRefs(t.Root)...)
		}
	}
	return f.CreateTree(doc, id)
}

// subtreeRefs lists the tree IDs referenced by SubTree nodes below n.
func subtreeRefs(n domain.NodeSpec) []string {
	var out []string
	if n.Type == domain.NodeTypeSubTree {
		if id := n.Ports[domain.PortSubTreeID]; id != "" {
			out = append(out, id)
		}
	}
	for _, c := range n.Children {
		out = append(out, subtreeRefs(c)...)
	}
	return out
}

func checkPorts(list domain.PortsList) error {
	seen := make(map[string]struct{}, len(list))
	for _, p := range list {
		if p.Name == "" {
			return errors.New("port without a name")
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("port [%s] declared twice", p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}

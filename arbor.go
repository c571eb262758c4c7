package arbor

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/aretw0/arbor/pkg/tree"
)

// Engine is the high-level entry point of the library. It owns a
// tree.Factory, a source of tree definitions and the driver settings.
type Engine struct {
	Name string

	factory     *tree.Factory
	factoryOpts []tree.Option
	loader      ports.TreeLoader
	logger      *slog.Logger
	hooks       domain.TickHooks
	interval    time.Duration
	maxTicks    uint64
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader injects a custom TreeLoader, bypassing the default file loader.
func WithLoader(l ports.TreeLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithLogger sets a custom structured logger for the engine and its trees.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers observability hooks on the trees and the driver.
func WithHooks(hooks domain.TickHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithTickInterval sets the minimum time between two ticks of Run.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.interval = d
	}
}

// WithMaxTicks bounds Run. Zero means unbounded.
func WithMaxTicks(n uint64) Option {
	return func(e *Engine) {
		e.maxTicks = n
	}
}

// WithFactoryOptions forwards options to the underlying tree.Factory.
func WithFactoryOptions(opts ...tree.Option) Option {
	return func(e *Engine) {
		e.factoryOpts = append(e.factoryOpts, opts...)
	}
}

// New initializes an Engine.
// By default, tree definitions are read from the YAML/JSON files under dir.
// If WithLoader is provided, dir is only used as a label and may be empty.
func New(dir string, opts ...Option) (*Engine, error) {
	eng := &Engine{interval: runner.DefaultTickInterval}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		if dir == "" {
			return nil, fmt.Errorf("dir is required when no custom loader is provided")
		}
		absPath, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		eng.Name = filepath.Base(absPath)
		loader, err := file.NewLoader(absPath)
		if err != nil {
			return nil, err
		}
		eng.loader = loader
	} else if dir != "" {
		eng.Name = filepath.Base(dir)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("project", eng.Name)
	}

	factoryOpts := append([]tree.Option{
		tree.WithLogger(eng.logger),
		tree.WithHooks(eng.hooks),
	}, eng.factoryOpts...)
	eng.factory = tree.NewFactory(factoryOpts...)
	return eng, nil
}

// Factory exposes the factory used to register node and port types.
func (e *Engine) Factory() *tree.Factory { return e.factory }

// Loader returns the source of tree definitions.
func (e *Engine) Loader() ports.TreeLoader { return e.loader }

// Trees lists the tree IDs available from the loader.
func (e *Engine) Trees(ctx context.Context) ([]string, error) {
	return e.loader.ListTrees(ctx)
}

// Load builds tree id and every subtree it references.
// An empty id is accepted when the loader holds a single tree.
func (e *Engine) Load(ctx context.Context, id string) (*tree.Tree, error) {
	return e.factory.CreateTreeFromLoader(ctx, e.loader, id)
}

// NewRunner creates a driver configured with the engine settings.
func (e *Engine) NewRunner() *runner.Runner {
	opts := []runner.Option{
		runner.WithTickInterval(e.interval),
		runner.WithLogger(e.logger),
		runner.WithHooks(e.hooks),
	}
	if e.maxTicks > 0 {
		opts = append(opts, runner.WithMaxTicks(e.maxTicks))
	}
	return runner.New(opts...)
}

// Run loads tree id and ticks it until it completes, fails or ctx ends.
func (e *Engine) Run(ctx context.Context, id string) (domain.Status, error) {
	t, err := e.Load(ctx, id)
	if err != nil {
		return domain.StatusIdle, err
	}
	return e.NewRunner().Run(ctx, t)
}

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/demo"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/adapters/process"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
)

// createEngine initializes an engine with the CLI conventions: the demo
// node set is always registered, tools become process nodes and the
// definition source follows opts.
func createEngine(opts RunOptions, logger *slog.Logger, hooks ...domain.TickHooks) (*arbor.Engine, error) {
	engineOpts := []arbor.Option{
		arbor.WithLogger(logger),
		arbor.WithTickInterval(opts.Interval),
		arbor.WithMaxTicks(opts.MaxTicks),
	}
	if opts.Debug {
		engineOpts = append(engineOpts, arbor.WithHooks(observability.LogHooks(logger)))
	}
	for _, h := range hooks {
		engineOpts = append(engineOpts, arbor.WithHooks(h))
	}

	dir := opts.Dir
	switch {
	case opts.Demo:
		loader, err := demo.Trees()
		if err != nil {
			return nil, fmt.Errorf("failed to load sample trees: %w", err)
		}
		engineOpts = append(engineOpts, arbor.WithLoader(loader))
		dir = "demo"
	case opts.RedisAddr != "":
		engineOpts = append(engineOpts, arbor.WithLoader(redis.New(opts.RedisAddr, "", 0)))
		dir = "redis"
	}

	engine, err := arbor.New(dir, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	if err := demo.NewRobot(opts.out()).Register(engine.Factory()); err != nil {
		return nil, fmt.Errorf("error registering demo nodes: %w", err)
	}
	if opts.ToolsPath != "" {
		tools, err := process.LoadTools(opts.ToolsPath)
		if err != nil {
			return nil, err
		}
		runner := process.NewRunner(process.WithRegistry(tools), process.WithLogger(logger))
		if err := runner.Install(engine.Factory()); err != nil {
			return nil, fmt.Errorf("error registering tools: %w", err)
		}
	}
	return engine, nil
}

// determineTree picks the tree to build: the requested one, then "main",
// then the only tree available.
func determineTree(ctx context.Context, engine *arbor.Engine, requested string) (string, error) {
	if requested != "" {
		return requested, nil
	}
	ids, err := engine.Trees(ctx)
	if err != nil {
		return "", err
	}
	switch {
	case slices.Contains(ids, "main"):
		return "main", nil
	case len(ids) == 1:
		return ids[0], nil
	case len(ids) == 0:
		return "", fmt.Errorf("no tree definitions found")
	default:
		return "", fmt.Errorf("several trees available, pick one with --tree: %s", strings.Join(ids, ", "))
	}
}

// createLogger configures the application logger.
// In debug mode, it writes to Stderr (to separate from Stdout output).
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

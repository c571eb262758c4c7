package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/internal/presentation/tui"
)

// Validate builds the selected tree, or every available tree when none is
// selected, and returns the first structure error.
func Validate(ctx context.Context, opts RunOptions) error {
	out := opts.out()
	engine, err := createEngine(opts, createLogger(opts.Debug))
	if err != nil {
		return err
	}

	ids := []string{opts.TreeID}
	if opts.TreeID == "" {
		if ids, err = engine.Trees(ctx); err != nil {
			return err
		}
		if len(ids) == 0 {
			return fmt.Errorf("no tree definitions found")
		}
	}

	for _, id := range ids {
		t, err := engine.Load(ctx, id)
		if err != nil {
			return fmt.Errorf("tree '%s': %w", id, err)
		}
		tui.RenderTree(out, t.Snapshot(), opts.Color)
	}
	return nil
}

// Graph writes the Mermaid flowchart of the selected tree.
func Graph(ctx context.Context, opts RunOptions, statuses bool) error {
	engine, err := createEngine(opts, createLogger(opts.Debug))
	if err != nil {
		return err
	}
	id, err := determineTree(ctx, engine, opts.TreeID)
	if err != nil {
		return err
	}
	t, err := engine.Load(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprint(opts.out(), graph.GenerateMermaid(t.Snapshot(), &graph.Overlay{Statuses: statuses}))
	return nil
}

// Nodes prints the catalogue of registered node types.
func Nodes(opts RunOptions) error {
	engine, err := createEngine(opts, createLogger(opts.Debug))
	if err != nil {
		return err
	}
	render := tui.NewRenderer(opts.Color)
	text, err := render(tui.CatalogMarkdown(engine.Factory().Registry().Manifests()))
	if err != nil {
		return fmt.Errorf("failed to render catalogue: %w", err)
	}
	fmt.Fprint(opts.out(), text)
	return nil
}

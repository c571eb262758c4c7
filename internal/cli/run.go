package cli

import (
	"context"

	"github.com/aretw0/arbor/pkg/runner"
)

// Run builds the selected tree and ticks it until it completes or the
// process receives an interrupt.
func Run(opts RunOptions) error {
	sm := runner.NewSignalManager()
	defer sm.Stop()
	return run(sm.Context(), opts)
}

func run(ctx context.Context, opts RunOptions) error {
	out := opts.out()
	logger := createLogger(opts.Debug)

	engine, err := createEngine(opts, logger)
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

	printSystemMessage(out, "Running '%s'...", id)
	status, err := engine.NewRunner().Run(ctx, t)
	logger.Info("run completed", "tree", id, "status", status, "ticks", t.Ticks())
	return handleExecutionError(out, id, status, err)
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/arbor"
	httpAdapter "github.com/aretw0/arbor/pkg/adapters/http"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/aretw0/arbor/pkg/tree"
)

const shutdownTimeout = 5 * time.Second

// Serve runs the selected tree while exposing its status, event stream,
// halt endpoint and metrics over HTTP. The server stays up after the tree
// completes so the final state can be inspected, until ctx ends.
func Serve(ctx context.Context, opts RunOptions, addr string) error {
	out := opts.out()
	logger := createLogger(opts.Debug)

	metrics, err := observability.NewMetrics(nil)
	if err != nil {
		return err
	}
	streams := httpAdapter.NewStreamManager(64, logger)

	engine, err := createEngine(opts, logger, metrics.Hooks(), streams.Hooks())
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
	r := engine.NewRunner()

	srv := &http.Server{
		Addr:    addr,
		Handler: newServeHandler(t, r, metrics, streams, logger),
	}
	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(out, "Serving '%s' on %s", id, addr)
		serverErrors <- srv.ListenAndServe()
	}()

	runDone := make(chan error, 1)
	go func() {
		status, err := r.Run(ctx, t)
		runDone <- handleExecutionError(out, id, status, err)
	}()

	select {
	case err := <-serverErrors:
		r.HaltTree()
		<-runDone
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
		_ = srv.Close()
	}
	return <-runDone
}

func newServeHandler(t *tree.Tree, r *runner.Runner, metrics *observability.Metrics, streams *httpAdapter.StreamManager, logger *slog.Logger) http.Handler {
	return httpAdapter.NewHandler(t,
		httpAdapter.WithHalter(r),
		httpAdapter.WithStreams(streams),
		httpAdapter.WithMetrics(metrics.Handler()),
		httpAdapter.WithVersion(arbor.Version),
		httpAdapter.WithLogger(logger),
	)
}

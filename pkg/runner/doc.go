/*
Package runner drives a behavior tree from its first tick to a terminal status.

The Runner calls TickOnce on the tree at a bounded rate until the root returns
SUCCESS, FAILURE or SKIPPED. Cancelling the context, or calling HaltTree from
another goroutine, halts the whole tree before Run returns.

# Usage

	r := runner.New(
		runner.WithTickInterval(10*time.Millisecond),
		runner.WithLogger(logger),
	)

	status, err := r.Run(ctx, t)
	if errors.Is(err, domain.ErrHalted) {
		// stopped before completion
	}

SignalManager connects SIGINT and SIGTERM to that cancellation for CLI use.
*/
package runner

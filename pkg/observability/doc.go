/*
Package observability turns tree events into logs and Prometheus metrics.

Both LogHooks and Metrics.Hooks return domain.TickHooks, which can be merged and
handed to the tree factory (status changes) and to the runner (ticks):

	m, _ := observability.NewMetrics(nil)
	hooks := m.Hooks().Merge(observability.LogHooks(logger))

	f := tree.NewFactory(tree.WithHooks(hooks))
	r := runner.New(runner.WithHooks(hooks))

	http.Handle("/metrics", m.Handler())
*/
package observability

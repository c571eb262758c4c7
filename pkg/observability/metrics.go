package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records tick and status-transition metrics through TickHooks.
type Metrics struct {
	gatherer     prometheus.Gatherer
	ticks        *prometheus.CounterVec
	tickErrors   prometheus.Counter
	tickDuration prometheus.Histogram
	transitions  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg uses a private registry, served by Handler.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ticks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_tree_ticks_total",
				Help: "Total number of root ticks, by resulting status",
			},
			[]string{"status"},
		),
		tickErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arbor_tree_tick_errors_total",
			Help: "Total number of ticks aborted by an error",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "arbor_tree_tick_duration_seconds",
			Help:    "Duration of a root tick",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_node_status_transitions_total",
				Help: "Total number of node status changes, by node type and new status",
			},
			[]string{"node_type", "status"},
		),
	}

	if reg == nil {
		r := prometheus.NewRegistry()
		reg, m.gatherer = r, r
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	} else {
		m.gatherer = prometheus.DefaultGatherer
	}

	var err error
	if m.ticks, err = register(reg, m.ticks); err != nil {
		return nil, err
	}
	if m.tickErrors, err = register(reg, m.tickErrors); err != nil {
		return nil, err
	}
	if m.tickDuration, err = register(reg, m.tickDuration); err != nil {
		return nil, err
	}
	if m.transitions, err = register(reg, m.transitions); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg, reusing the collector already registered under the same descriptor.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Hooks returns the callbacks feeding the collectors.
func (m *Metrics) Hooks() domain.TickHooks {
	return domain.TickHooks{
		OnStatusChange: func(_ context.Context, e *domain.StatusEvent) {
			m.transitions.WithLabelValues(e.NodeType, e.Current.String()).Inc()
		},
		OnTreeTick: func(_ context.Context, e *domain.TreeTickEvent) {
			m.tickDuration.Observe(e.Duration.Seconds())
			if e.Err != nil {
				m.tickErrors.Inc()
				return
			}
			m.ticks.WithLabelValues(e.Status.String()).Inc()
		},
	}
}

// Handler serves the gathered metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

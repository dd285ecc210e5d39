// Package metrics turns query lifecycle events into Prometheus metrics.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/five82/roster/internal/observability"
	"github.com/five82/roster/internal/query"
)

const namespace = "roster"

// Observer implements observability.Observer by updating Prometheus
// collectors. It is safe for concurrent use by several queries.
type Observer struct {
	started   *prometheus.CounterVec
	settled   *prometheus.CounterVec
	durations *prometheus.HistogramVec
	pollSkips prometheus.Counter
}

var _ observability.Observer = (*Observer)(nil)

// NewObserver creates the collectors and registers them with reg.
func NewObserver(reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		started: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "fetch_started_total",
			Help:      "Fetch attempts started, by kind.",
		}, []string{"query", "kind"}),
		settled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "fetch_total",
			Help:      "Fetch attempts settled, by kind and outcome (success, failure, stale).",
		}, []string{"query", "kind", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of live fetch attempts.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"query", "kind"}),
		pollSkips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "poll_skipped_total",
			Help:      "Poll ticks skipped because a fetch was in flight or no interval was set.",
		}),
	}

	for _, c := range []prometheus.Collector{o.started, o.settled, o.durations, o.pollSkips} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return o, nil
}

func (o *Observer) OnEvent(_ context.Context, event observability.Event) {
	switch event.Type {
	case query.EventFetchStart:
		o.started.WithLabelValues(event.Query, event.Kind).Inc()
	case query.EventFetchSuccess:
		o.settled.WithLabelValues(event.Query, event.Kind, "success").Inc()
		o.durations.WithLabelValues(event.Query, event.Kind).Observe(event.Duration.Seconds())
	case query.EventFetchFailure:
		o.settled.WithLabelValues(event.Query, event.Kind, "failure").Inc()
		o.durations.WithLabelValues(event.Query, event.Kind).Observe(event.Duration.Seconds())
	case query.EventFetchStale:
		o.settled.WithLabelValues(event.Query, event.Kind, "stale").Inc()
	case query.EventPollSkip:
		o.pollSkips.Inc()
	}
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

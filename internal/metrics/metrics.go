// Package metrics exports annealing run statistics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/copyleftdev/annealer/internal/optimization"
)

const namespace = "annealer"

// Collector turns driver events into Prometheus series.
type Collector struct {
	runs       *prometheus.CounterVec
	reanneals  *prometheus.CounterVec
	iterations *prometheus.HistogramVec
	failures   *prometheus.CounterVec
}

// NewCollector creates the collector's series and registers them on reg.
// A nil reg leaves them unregistered.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed annealing runs by function and stopping criterion",
		}, []string{"function", "outcome"}),

		reanneals: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reanneals_total",
			Help:      "Reannealing events by function",
		}, []string{"function"}),

		iterations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_iterations",
			Help:      "Transitions per completed run, across all epochs",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 10), // 10 to ~2.6M
		}, []string{"function"}),

		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_failures_total",
			Help:      "Runs aborted by an error, by function",
		}, []string{"function"}),
	}
}

// Observer returns an optimization.Observer that records events under the
// given function label.
func (c *Collector) Observer(function string) optimization.Observer {
	return optimization.ObserverFunc(func(e optimization.Event) {
		switch e.Kind {
		case optimization.EventReanneal:
			c.reanneals.WithLabelValues(function).Inc()
		case optimization.EventTerminate:
			c.runs.WithLabelValues(function, e.Outcome.String()).Inc()
			c.iterations.WithLabelValues(function).Observe(float64(e.TotalIterations))
		}
	})
}

// RecordFailure counts a run that ended with an error instead of a result.
func (c *Collector) RecordFailure(function string) {
	c.failures.WithLabelValues(function).Inc()
}

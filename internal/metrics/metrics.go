// Package metrics exposes Prometheus counters for rewrite runs.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "websubc"

// Run outcomes.
const (
	OutcomeRewritten     = "rewritten"
	OutcomeSkippedErrors = "skipped_errors"
	OutcomeFailed        = "failed"
)

// Metrics holds the collectors of one process. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	runs               *prometheus.CounterVec
	runDuration        prometheus.Histogram
	documentsVisited   prometheus.Counter
	documentsRewritten prometheus.Counter
	servicesInjected   prometheus.Counter
	servicesSkipped    *prometheus.CounterVec
	servicePaths       prometheus.Counter
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of meta-info rewrite runs by outcome.",
		}, []string{"outcome"}),
		runDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of meta-info rewrite runs.",
			Buckets:   prometheus.DefBuckets,
		}),
		documentsVisited: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_visited_total",
			Help:      "Documents with generated service paths visited by the rewriter.",
		}),
		documentsRewritten: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_rewritten_total",
			Help:      "Documents that received at least one injected annotation.",
		}),
		servicesInjected: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "services_injected_total",
			Help:      "Service declarations that received a meta-info annotation.",
		}),
		servicesSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "services_skipped_total",
			Help:      "Service declarations left unchanged, by reason.",
		}, []string{"reason"}),
		servicePaths: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "service_paths_generated_total",
			Help:      "Service paths generated by the analyzer.",
		}),
	}
}

// ObserveRun records one run with its outcome and duration.
func (m *Metrics) ObserveRun(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(d.Seconds())
}

// ObserveDocument records the outcome of rewriting one document.
func (m *Metrics) ObserveDocument(injected int, skipped map[string]int) {
	if m == nil {
		return
	}
	m.documentsVisited.Inc()
	if injected > 0 {
		m.documentsRewritten.Inc()
		m.servicesInjected.Add(float64(injected))
	}
	for reason, n := range skipped {
		m.servicesSkipped.WithLabelValues(reason).Add(float64(n))
	}
}

// ObservePathsGenerated records analyzer output.
func (m *Metrics) ObservePathsGenerated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.servicePaths.Add(float64(n))
}

// WriteTextfile writes all metrics in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

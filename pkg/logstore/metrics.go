package logstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for the log store. A single
// instance is registered per process; use the package-level Observe
// helpers from engine and retention code.
type Metrics struct {
	// Append outcomes
	appends *prometheus.CounterVec
	dropped prometheus.Counter

	// Sweep outcomes
	sweepRuns    *prometheus.CounterVec
	sweepDeleted prometheus.Counter

	// Write queue depth
	queueDepth prometheus.Gauge
}

// newMetrics creates the Prometheus collectors. Called exactly once at
// package init; promauto registers with the default registry.
func newMetrics() *Metrics {
	return &Metrics{
		appends: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logvault_store_appends_total",
				Help: "Total number of append operations by result",
			},
			[]string{"result"},
		),

		dropped: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "logvault_store_dropped_records_total",
				Help: "Total number of records dropped because the write queue was full",
			},
		),

		sweepRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logvault_sweep_runs_total",
				Help: "Total number of expiration sweeps by result",
			},
			[]string{"result"},
		),

		sweepDeleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "logvault_sweep_deleted_records_total",
				Help: "Total number of records deleted by expiration sweeps",
			},
		),

		queueDepth: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "logvault_store_write_queue_depth",
				Help: "Current number of tasks waiting on the write executor",
			},
		),
	}
}

// defaultMetrics is the process-wide metrics instance.
var defaultMetrics = newMetrics()

// ObserveAppend records the outcome of an append ("ok" or "error").
func ObserveAppend(result string) {
	defaultMetrics.appends.WithLabelValues(result).Inc()
}

// ObserveDrop records a record dropped on a full write queue.
func ObserveDrop() {
	defaultMetrics.dropped.Inc()
}

// ObserveSweep records the outcome of a sweep and how many records it deleted.
func ObserveSweep(result string, deleted int64) {
	defaultMetrics.sweepRuns.WithLabelValues(result).Inc()
	if deleted > 0 {
		defaultMetrics.sweepDeleted.Add(float64(deleted))
	}
}

// SetQueueDepth updates the write queue depth gauge.
func SetQueueDepth(depth int) {
	defaultMetrics.queueDepth.Set(float64(depth))
}

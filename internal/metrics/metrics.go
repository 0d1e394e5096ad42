// Package metrics exposes storage-operation telemetry through Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements types.MetricsRecorder on a Prometheus registry.
type Collector struct {
	registry *prometheus.Registry

	operations   *prometheus.CounterVec
	opDuration   *prometheus.HistogramVec
	pollAttempts *prometheus.CounterVec
	deleted      prometheus.Counter
}

// NewCollector builds a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "harmonix",
			Subsystem: "storage",
			Name:      "operations_total",
			Help:      "Storage operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "harmonix",
			Subsystem: "storage",
			Name:      "operation_duration_seconds",
			Help:      "Storage operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		pollAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "harmonix",
			Subsystem: "capture",
			Name:      "annotation_poll_attempts_total",
			Help:      "Annotation poll attempts by result.",
		}, []string{"result"}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "harmonix",
			Subsystem: "erase",
			Name:      "objects_deleted_total",
			Help:      "Objects removed by bulk deletion.",
		}),
	}
	c.registry.MustRegister(c.operations, c.opDuration, c.pollAttempts, c.deleted)
	return c
}

// RecordOperation implements types.MetricsRecorder.
func (c *Collector) RecordOperation(operation string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.operations.WithLabelValues(operation, outcome).Inc()
	c.opDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordPollAttempt implements types.MetricsRecorder.
func (c *Collector) RecordPollAttempt(found bool) {
	result := "pending"
	if found {
		result = "found"
	}
	c.pollAttempts.WithLabelValues(result).Inc()
}

// RecordDeleted implements types.MetricsRecorder.
func (c *Collector) RecordDeleted(count int) {
	c.deleted.Add(float64(count))
}

// Handler returns the HTTP handler serving the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

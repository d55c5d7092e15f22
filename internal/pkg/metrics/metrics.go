// Package metrics exposes Prometheus collectors for the attendance lifecycle.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives lifecycle observations.
type Recorder interface {
	ObserveOperation(operation string, err error, duration time.Duration)
	LockSwept(count int)
}

type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	swept      prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "operations_total",
			Help:      "Lifecycle operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "attendance",
			Name:      "operation_duration_seconds",
			Help:      "Latency of lifecycle operations including lock wait.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		swept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "lock_entries_swept_total",
			Help:      "Idle in-process lock entries removed by the sweep job.",
		}),
	}

	m.registry.MustRegister(
		m.operations,
		m.duration,
		m.swept,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveOperation(operation string, err error, duration time.Duration) {
	m.operations.WithLabelValues(operation, Outcome(err)).Inc()
	m.duration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *Metrics) LockSwept(count int) {
	m.swept.Add(float64(count))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Outcome labels an operation result. Context errors count apart from domain rejections.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}

type nop struct{}

func (nop) ObserveOperation(string, error, time.Duration) {}
func (nop) LockSwept(int)                                 {}

// Nop discards every observation.
var Nop Recorder = nop{}

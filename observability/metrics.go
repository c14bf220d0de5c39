package observability

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type moduleMetrics struct {
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var (
	moduleMetricsOnce sync.Once
	moduleRegistry    *moduleMetrics
)

// ModuleMetrics returns the lazily-initialised registry used to record RPC
// handler activity.
func ModuleMetrics() *moduleMetrics {
	moduleMetricsOnce.Do(func() {
		moduleRegistry = &moduleMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "degenerus",
				Subsystem: "rpc",
				Name:      "requests_total",
				Help:      "Total RPC requests segmented by route and outcome.",
			}, []string{"route", "outcome"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "degenerus",
				Subsystem: "rpc",
				Name:      "errors_total",
				Help:      "Total RPC errors segmented by route and status code.",
			}, []string{"route", "status"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "degenerus",
				Subsystem: "rpc",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for RPC handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"route"}),
		}
		prometheus.MustRegister(
			moduleRegistry.requests,
			moduleRegistry.errors,
			moduleRegistry.latency,
		)
	})
	return moduleRegistry
}

func normalizeLabel(value, fallback string) string {
	normalized := strings.TrimSpace(value)
	if normalized == "" {
		return fallback
	}
	return normalized
}

// RecordRequest tallies one handled request and its latency.
func (m *moduleMetrics) RecordRequest(route, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	route = normalizeLabel(route, "unknown")
	outcome = normalizeLabel(outcome, "unknown")
	m.requests.WithLabelValues(route, outcome).Inc()
	m.latency.WithLabelValues(route).Observe(elapsed.Seconds())
}

// RecordError tallies one failed request by status code.
func (m *moduleMetrics) RecordError(route, status string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(normalizeLabel(route, "unknown"), normalizeLabel(status, "unknown")).Inc()
}

package koala

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector provides Prometheus metrics for engine calls. It is
// safe for concurrent use, and a nil collector records nothing.
type MetricsCollector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec

	errorsTotal *prometheus.CounterVec

	ruleHits  *prometheus.CounterVec
	multiJobs prometheus.Histogram

	registry *prometheus.Registry
}

// NewMetricsCollector creates a metrics collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using supplied registerer.
func NewMetricsCollectorWithRegistry(registerer prometheus.Registerer) *MetricsCollector {
	factory := promauto.With(registerer)
	mc := &MetricsCollector{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "koala_requests_total",
				Help: "Total number of requests sent to the koala engine",
			},
			[]string{"operation", "status_code"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "koala_request_duration_seconds",
				Help:    "Duration of koala engine requests in seconds",
				Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 3},
			},
			[]string{"operation"},
		),
		requestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "koala_requests_in_flight",
				Help: "Number of koala engine requests currently in flight",
			},
			[]string{"operation"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "koala_errors_total",
				Help: "Total number of failed koala engine calls",
			},
			[]string{"type", "operation"},
		),
		ruleHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "koala_rule_hits_total",
				Help: "Total number of checks answered with a non-zero rule code",
			},
			[]string{"operation", "code"},
		),
		multiJobs: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "koala_multi_jobs",
				Help:    "Number of jobs per multi-check request",
				Buckets: prometheus.ExponentialBuckets(1, 2, 8),
			},
		),
	}
	if registry, ok := registerer.(*prometheus.Registry); ok {
		mc.registry = registry
	}

	return mc
}

// RecordRequest records request count and duration.
func (mc *MetricsCollector) RecordRequest(operation string, statusCode int, duration time.Duration) {
	if mc == nil {
		return
	}

	mc.requestsTotal.WithLabelValues(operation, strconv.Itoa(statusCode)).Inc()
	mc.requestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordRequestStart increments in-flight gauge.
func (mc *MetricsCollector) RecordRequestStart(operation string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(operation).Inc()
}

// RecordRequestEnd decrements in-flight gauge.
func (mc *MetricsCollector) RecordRequestEnd(operation string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(operation).Dec()
}

// RecordError increments error counter by type.
func (mc *MetricsCollector) RecordError(errorType, operation string) {
	if mc == nil {
		return
	}

	mc.errorsTotal.WithLabelValues(errorType, operation).Inc()
}

// RecordResult counts rule hits for a decoded check result.
func (mc *MetricsCollector) RecordResult(operation string, r Result) {
	if mc == nil || !r.Hit() {
		return
	}

	mc.ruleHits.WithLabelValues(operation, strconv.Itoa(*r.Code)).Inc()
}

// RecordMultiJobs observes the size of a multi-check batch.
func (mc *MetricsCollector) RecordMultiJobs(n int) {
	if mc == nil {
		return
	}

	mc.multiJobs.Observe(float64(n))
}

// GetRegistry exposes the underlying prometheus registry, or nil when the
// collector was built on a registerer that is not a *prometheus.Registry.
func (mc *MetricsCollector) GetRegistry() *prometheus.Registry {
	return mc.registry
}

package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mihaimyh/billingview/pkg/billing"
)

// Metrics implements billing.Metrics using Prometheus.
type Metrics struct {
	apiCallsTotal       *prometheus.CounterVec
	apiCallDuration     *prometheus.HistogramVec
	operationsTotal     *prometheus.CounterVec
	operationDuration   *prometheus.HistogramVec
	enrichmentFallbacks *prometheus.CounterVec
	rateLimitedRequests *prometheus.CounterVec
}

// NewMetrics creates a new Prometheus metrics implementation for billing providers.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		apiCallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "api_calls_total",
			Help:      "Total number of API calls to billing providers.",
		}, []string{"provider", "endpoint", "status"}),

		apiCallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "api_call_duration_seconds",
			Help:      "Duration of API calls to billing providers in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "endpoint"}),

		operationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "operations_total",
			Help:      "Total number of caller-facing billing operations by outcome.",
		}, []string{"operation", "status"}),

		operationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "operation_duration_seconds",
			Help:      "Duration of caller-facing billing operations in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		enrichmentFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "enrichment_fallbacks_total",
			Help:      "Total number of secondary lookups replaced by a sentinel value.",
		}, []string{"provider", "reason"}),

		rateLimitedRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "rate_limited_requests_total",
			Help:      "Total number of requests rejected by the rate limiter.",
		}, []string{"route"}),
	}
}

func (m *Metrics) RecordAPICall(provider, endpoint, status string) {
	m.apiCallsTotal.WithLabelValues(provider, endpoint, status).Inc()
}

func (m *Metrics) RecordAPICallDuration(provider, endpoint string, duration time.Duration) {
	m.apiCallDuration.WithLabelValues(provider, endpoint).Observe(duration.Seconds())
}

func (m *Metrics) RecordOperation(operation, status string) {
	m.operationsTotal.WithLabelValues(operation, status).Inc()
}

func (m *Metrics) RecordOperationDuration(operation string, duration time.Duration) {
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *Metrics) RecordEnrichmentFallback(provider, reason string) {
	m.enrichmentFallbacks.WithLabelValues(provider, reason).Inc()
}

func (m *Metrics) RecordRateLimited(route string) {
	m.rateLimitedRequests.WithLabelValues(route).Inc()
}

// DefaultMetrics returns a Metrics implementation using the default Prometheus registerer.
func DefaultMetrics(namespace string) billing.Metrics {
	return NewMetrics(prometheus.DefaultRegisterer, namespace)
}

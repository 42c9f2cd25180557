package billing

import "time"

// Metrics defines the interface for tracking billing provider operations.
// All methods are optional - providers should gracefully handle nil metrics.
type Metrics interface {
	// RecordAPICall records an API call to the billing provider.
	// endpoint: The API endpoint called (e.g., "/subscriptions")
	// status: "success" or "error"
	RecordAPICall(provider, endpoint, status string)

	// RecordAPICallDuration records how long an API call took.
	RecordAPICallDuration(provider, endpoint string, duration time.Duration)

	// RecordOperation records a caller-facing operation.
	// operation: "get_subscription", "create_portal_session" or "get_billing_history"
	// status: "success", "config_error", "provider_error" or "error"
	RecordOperation(operation, status string)

	// RecordOperationDuration records how long a caller-facing operation took.
	RecordOperationDuration(operation string, duration time.Duration)

	// RecordEnrichmentFallback records a secondary lookup that was replaced by a sentinel.
	// reason: "missing_product", "lookup_failed" or "empty_name"
	RecordEnrichmentFallback(provider, reason string)

	// RecordRateLimited records a request rejected by the transport rate limiter.
	RecordRateLimited(route string)
}

// NoopMetrics is a no-op implementation of the Metrics interface.
type NoopMetrics struct{}

func (n *NoopMetrics) RecordAPICall(_, _, _ string)                       {}
func (n *NoopMetrics) RecordAPICallDuration(_, _ string, _ time.Duration) {}
func (n *NoopMetrics) RecordOperation(_, _ string)                        {}
func (n *NoopMetrics) RecordOperationDuration(_ string, _ time.Duration)  {}
func (n *NoopMetrics) RecordEnrichmentFallback(_, _ string)               {}
func (n *NoopMetrics) RecordRateLimited(_ string)                         {}

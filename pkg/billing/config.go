package billing

import (
	"net/http"
)

// Config defines the standard configuration all providers should accept.
// Required values are checked when an operation runs, not at construction,
// so a process can start without secrets and report them per request.
type Config struct {
	// APIKey is the provider secret key used for outbound API calls.
	APIKey string

	// ReturnURL is where the billing portal sends the browser back to.
	// Only PortalSession needs it. A trailing "/" is stripped before use.
	ReturnURL string

	// HTTPClient is an optional HTTP client for API calls.
	// If nil, a default client with 10s timeout will be used.
	// Its Timeout is the only cancellation policy applied to provider calls.
	HTTPClient *http.Client

	// Metrics is an optional metrics collector for tracking billing provider operations.
	// If nil, metrics will be silently ignored (no-op).
	// Use billing/metrics/prometheus.DefaultMetrics(namespace) for Prometheus metrics.
	Metrics Metrics

	// Logger receives diagnostics such as recovered enrichment failures.
	// If nil, logs are discarded.
	Logger Logger
}

package billing

import (
	"context"
)

// Provider is the generic interface that any billing backend must implement.
// Implementations read from the provider only; the single write they may perform
// is minting a portal session.
type Provider interface {
	// Name returns the provider name (e.g., "stripe")
	Name() string

	// Subscriptions returns up to ten subscriptions for the customer in the
	// provider's natural order. A customer without subscriptions yields an
	// empty slice, not an error.
	Subscriptions(ctx context.Context, customerID string) ([]Subscription, error)

	// PortalSession requests a single-use self-service billing portal URL for the
	// customer. It is never retried.
	PortalSession(ctx context.Context, customerID string) (*PortalSession, error)

	// BillingHistory returns up to five most recent invoices, newest first.
	BillingHistory(ctx context.Context, customerID string) ([]Invoice, error)
}

// ConfigChecker is implemented by providers that can report missing credentials
// without contacting the backend. Service consults it before resolving the
// customer so that an unconfigured deployment always answers with a ConfigError.
type ConfigChecker interface {
	Configured() error
}

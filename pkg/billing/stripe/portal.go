package stripe

import (
	"context"
	"time"

	"github.com/mihaimyh/billingview/pkg/billing"
)

// PortalSession creates a Stripe Customer Portal Session and returns the URL.
// The return URL carries the billing_return marker so the front end can react
// when the customer comes back. Exactly one Stripe call is made.
func (p *Provider) PortalSession(ctx context.Context, customerID string) (*billing.PortalSession, error) {
	api, err := p.client()
	if err != nil {
		return nil, err
	}
	if p.returnURL == "" {
		return nil, billing.NewConfigError("portal return URL")
	}

	startTime := time.Now()
	session, err := api.CreatePortalSession(ctx, customerID, billing.PortalReturnURL(p.returnURL))
	p.record("/billing_portal/sessions", startTime, err)
	if err != nil {
		return nil, newProviderError(opCreatePortalSession, err)
	}
	if session == nil || session.URL == "" {
		return nil, &billing.ProviderError{
			Provider: providerName,
			Op:       opCreatePortalSession,
			Message:  "portal session has no URL",
		}
	}

	return &billing.PortalSession{URL: session.URL}, nil
}

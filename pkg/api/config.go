package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mihaimyh/billingview/pkg/billing"
)

// Service is the set of caller-facing billing operations served over HTTP.
// *billing.Service implements it.
type Service interface {
	GetSubscription(ctx context.Context, caller billing.Caller) ([]billing.Subscription, error)
	CreatePortalSession(ctx context.Context, caller billing.Caller) (*billing.PortalSession, error)
	GetBillingHistory(ctx context.Context, caller billing.Caller) ([]billing.Invoice, error)
}

// Config holds configuration for the billing API handler
type Config struct {
	// Service performs the billing operations (required)
	Service Service

	// GetCaller extracts the authenticated caller from the HTTP request (required).
	// A caller with an empty UserID is rejected with 401.
	GetCaller func(*http.Request) billing.Caller

	// OnError handles errors (auth, configuration, provider, etc.)
	// If nil, writes {"error": "..."} with StatusFor(err)
	OnError func(http.ResponseWriter, *http.Request, error)

	// PortalRateLimit caps portal-session requests per minute per client IP.
	// Zero disables limiting.
	PortalRateLimit int

	// Logger is optional; defaults to NoopLogger
	Logger billing.Logger

	// Metrics is optional; records rate-limit rejections
	Metrics billing.Metrics
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Service == nil {
		return fmt.Errorf("service is required")
	}
	if c.GetCaller == nil {
		return fmt.Errorf("getCaller is required")
	}
	if c.PortalRateLimit < 0 {
		return fmt.Errorf("portal rate limit must not be negative")
	}
	return nil
}

// Helper functions for common caller extraction patterns

// FromHeader returns a GetCaller function that reads the user id from a header
func FromHeader(headerName string) func(*http.Request) billing.Caller {
	return func(r *http.Request) billing.Caller {
		return billing.Caller{UserID: strings.TrimSpace(r.Header.Get(headerName))}
	}
}

// FromContext returns a GetCaller function that reads the caller from the request
// context. The value may be a billing.Caller or a plain user id string, as set by
// an upstream auth middleware.
func FromContext(key interface{}) func(*http.Request) billing.Caller {
	return func(r *http.Request) billing.Caller {
		return CallerFromContext(r.Context(), key)
	}
}

// CallerFromContext reads a billing.Caller or a user id string stored under key.
func CallerFromContext(ctx context.Context, key interface{}) billing.Caller {
	switch v := ctx.Value(key).(type) {
	case billing.Caller:
		return v
	case *billing.Caller:
		if v != nil {
			return *v
		}
	case string:
		return billing.Caller{UserID: v}
	}
	return billing.Caller{}
}

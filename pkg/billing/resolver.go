package billing

import (
	"context"
	"errors"
	"strings"
)

// CustomerResolver maps an authenticated caller to the provider-side customer id.
// Implementations return ErrCustomerNotFound (possibly wrapped) when the caller
// has no billing account.
type CustomerResolver interface {
	ResolveCustomer(ctx context.Context, caller Caller) (string, error)
}

// ResolverFunc adapts a function to the CustomerResolver interface.
type ResolverFunc func(ctx context.Context, caller Caller) (string, error)

// ResolveCustomer calls f(ctx, caller).
func (f ResolverFunc) ResolveCustomer(ctx context.Context, caller Caller) (string, error) {
	return f(ctx, caller)
}

// StaticCustomer resolves every caller to the same customer id.
// It stands in for a real identity lookup during development
// (DEFAULT_STRIPE_CUSTOMER_ID). An empty id is reported by the Service as a
// configuration error rather than here.
type StaticCustomer string

// ResolveCustomer returns the fixed id.
func (s StaticCustomer) ResolveCustomer(_ context.Context, _ Caller) (string, error) {
	return strings.TrimSpace(string(s)), nil
}

// Chain tries each resolver in order and returns the first id found.
// Only ErrCustomerNotFound falls through to the next resolver; any other error
// stops the chain.
type Chain []CustomerResolver

// ResolveCustomer implements CustomerResolver.
func (c Chain) ResolveCustomer(ctx context.Context, caller Caller) (string, error) {
	for _, r := range c {
		if r == nil {
			continue
		}
		id, err := r.ResolveCustomer(ctx, caller)
		if err != nil {
			if errors.Is(err, ErrCustomerNotFound) {
				continue
			}
			return "", err
		}
		if id != "" {
			return id, nil
		}
	}
	return "", ErrCustomerNotFound
}

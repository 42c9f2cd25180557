package stripe

import (
	"errors"

	"github.com/stripe/stripe-go/v83"

	"github.com/mihaimyh/billingview/pkg/billing"
)

// newProviderError wraps a Stripe failure, keeping Stripe's own message when it
// sent one so the caller sees "failed to <op>: No such customer: 'cus_x'".
func newProviderError(op string, err error) error {
	providerErr := &billing.ProviderError{
		Provider: providerName,
		Op:       op,
		Err:      err,
	}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		providerErr.Message = stripeErr.Msg
	}
	return providerErr
}

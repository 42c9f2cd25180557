package stripe

import (
	"context"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v83"
	"golang.org/x/sync/errgroup"

	"github.com/mihaimyh/billingview/pkg/billing"
)

const (
	fallbackMissingProduct = "missing_product"
	fallbackLookupFailed   = "lookup_failed"
	fallbackEmptyName      = "empty_name"
)

// planResult is the outcome of resolving a plan name. reason is empty when
// name came from Stripe; otherwise name is billing.UnknownPlan.
type planResult struct {
	name   string
	reason string
	err    error
}

// Subscriptions lists up to ten subscriptions (any status) for the customer and
// normalizes each one. Product lookups run concurrently; a failed lookup
// degrades that subscription's plan name to billing.UnknownPlan and never
// fails the call.
func (p *Provider) Subscriptions(ctx context.Context, customerID string) ([]billing.Subscription, error) {
	api, err := p.client()
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	subs, err := api.ListSubscriptions(ctx, customerID, subscriptionLimit)
	p.record("/subscriptions", startTime, err)
	if err != nil {
		return nil, newProviderError(opFetchSubscription, err)
	}

	if len(subs) == 0 {
		return []billing.Subscription{}, nil
	}
	if len(subs) > subscriptionLimit {
		subs = subs[:subscriptionLimit]
	}

	// Each task writes only its own index, so provider order is preserved.
	results := make([]billing.Subscription, len(subs))
	var g errgroup.Group
	g.SetLimit(p.maxConcurrentLookups)
	for i, sub := range subs {
		g.Go(func() error {
			results[i] = p.normalizeSubscription(ctx, api, sub)
			return nil
		})
	}
	// Tasks never fail; lookup errors become the Unknown Plan sentinel.
	_ = g.Wait()

	return results, nil
}

func (p *Provider) normalizeSubscription(ctx context.Context, api API, sub *stripe.Subscription) billing.Subscription {
	if sub == nil {
		return billing.Subscription{
			PlanName:    billing.UnknownPlan,
			RenewalDate: billing.NoRenewalDate,
		}
	}

	plan := p.resolvePlanName(ctx, api, sub)
	if plan.reason != "" {
		p.metrics.RecordEnrichmentFallback(providerName, plan.reason)
		fields := []billing.Field{
			{Key: "subscription_id", Value: sub.ID},
			{Key: "reason", Value: plan.reason},
		}
		if plan.err != nil {
			fields = append(fields, billing.Field{Key: "error", Value: plan.err.Error()})
		}
		p.logger.Warn("could not resolve plan name", fields...)
	}

	return billing.Subscription{
		Status:      string(sub.Status),
		PlanName:    plan.name,
		RenewalDate: billing.FormatRenewalDate(renewalTimestamp(sub), p.dateLayout),
	}
}

// resolvePlanName looks up the display name of the first item's product.
// Expanded products are used as-is; bare ids cost one Retrieve call.
func (p *Provider) resolvePlanName(ctx context.Context, api API, sub *stripe.Subscription) planResult {
	product := firstItemProduct(sub)
	if product == nil || strings.TrimSpace(product.ID) == "" {
		return planResult{name: billing.UnknownPlan, reason: fallbackMissingProduct}
	}
	if product.Name != "" {
		return planResult{name: product.Name}
	}

	startTime := time.Now()
	retrieved, err := api.RetrieveProduct(ctx, product.ID)
	p.record("/products/{id}", startTime, err)
	if err != nil {
		return planResult{name: billing.UnknownPlan, reason: fallbackLookupFailed, err: err}
	}
	if retrieved == nil || strings.TrimSpace(retrieved.Name) == "" {
		return planResult{name: billing.UnknownPlan, reason: fallbackEmptyName}
	}
	return planResult{name: retrieved.Name}
}

// firstItemProduct returns the product reference of the first subscription item,
// preferring the price over the legacy plan object.
func firstItemProduct(sub *stripe.Subscription) *stripe.Product {
	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0] == nil {
		return nil
	}
	item := sub.Items.Data[0]
	if item.Price != nil && item.Price.Product != nil && item.Price.Product.ID != "" {
		return item.Price.Product
	}
	if item.Plan != nil && item.Plan.Product != nil {
		return item.Plan.Product
	}
	return nil
}

// renewalTimestamp prefers the current period end (carried on subscription items)
// and falls back to the date the subscription ended. Zero means neither is set.
func renewalTimestamp(sub *stripe.Subscription) int64 {
	if sub.Items != nil {
		for _, item := range sub.Items.Data {
			if item != nil && item.CurrentPeriodEnd > 0 {
				return item.CurrentPeriodEnd
			}
		}
	}
	if sub.EndedAt > 0 {
		return sub.EndedAt
	}
	return 0
}

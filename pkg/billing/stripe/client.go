package stripe

import (
	"context"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v83"

	"github.com/mihaimyh/billingview/pkg/billing"
)

// API is the subset of the Stripe API the provider uses.
// List methods stop after limit items even when Stripe reports more pages.
type API interface {
	ListSubscriptions(ctx context.Context, customerID string, limit int) ([]*stripe.Subscription, error)
	RetrieveProduct(ctx context.Context, productID string) (*stripe.Product, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*stripe.BillingPortalSession, error)
	ListInvoices(ctx context.Context, customerID string, limit int) ([]*stripe.Invoice, error)
}

// clientAPI implements API with the stripe-go client.
type clientAPI struct {
	client *stripe.Client
}

// newClientAPI creates a Stripe client with automatic network retries disabled:
// portal sessions are not safe to replay and the remaining calls surface
// timeouts to the caller instead.
func newClientAPI(apiKey string, httpClient *http.Client, backendURL string, logger billing.Logger) *clientAPI {
	backendConfig := &stripe.BackendConfig{
		HTTPClient:        httpClient,
		LeveledLogger:     &leveledLogger{logger: logger},
		MaxNetworkRetries: stripe.Int64(0),
	}
	if backendURL != "" {
		backendConfig.URL = stripe.String(backendURL)
	}

	backends := stripe.NewBackendsWithConfig(backendConfig)
	return &clientAPI{
		client: stripe.NewClient(apiKey, stripe.WithBackends(backends)),
	}
}

func (c *clientAPI) ListSubscriptions(ctx context.Context, customerID string, limit int) ([]*stripe.Subscription, error) {
	params := &stripe.SubscriptionListParams{}
	params.Customer = stripe.String(customerID)
	params.Status = stripe.String(subscriptionStatusAll)
	params.Limit = stripe.Int64(int64(limit))

	subscriptions := make([]*stripe.Subscription, 0, limit)
	for sub, err := range c.client.V1Subscriptions.List(ctx, params) {
		if err != nil {
			return nil, err
		}
		subscriptions = append(subscriptions, sub)
		if len(subscriptions) >= limit {
			break
		}
	}
	return subscriptions, nil
}

func (c *clientAPI) RetrieveProduct(ctx context.Context, productID string) (*stripe.Product, error) {
	return c.client.V1Products.Retrieve(ctx, productID, nil)
}

func (c *clientAPI) CreatePortalSession(
	ctx context.Context, customerID, returnURL string,
) (*stripe.BillingPortalSession, error) {
	params := &stripe.BillingPortalSessionCreateParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	return c.client.V1BillingPortalSessions.Create(ctx, params)
}

func (c *clientAPI) ListInvoices(ctx context.Context, customerID string, limit int) ([]*stripe.Invoice, error) {
	params := &stripe.InvoiceListParams{}
	params.Customer = stripe.String(customerID)
	params.Limit = stripe.Int64(int64(limit))

	invoices := make([]*stripe.Invoice, 0, limit)
	for inv, err := range c.client.V1Invoices.List(ctx, params) {
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
		if len(invoices) >= limit {
			break
		}
	}
	return invoices, nil
}

// leveledLogger routes stripe-go's internal logging into billing.Logger.
type leveledLogger struct {
	logger billing.Logger
}

var _ stripe.LeveledLoggerInterface = (*leveledLogger)(nil)

func (l *leveledLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...), billing.Field{Key: "source", Value: "stripe-go"})
}

func (l *leveledLogger) Infof(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...), billing.Field{Key: "source", Value: "stripe-go"})
}

func (l *leveledLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, v...), billing.Field{Key: "source", Value: "stripe-go"})
}

func (l *leveledLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...), billing.Field{Key: "source", Value: "stripe-go"})
}

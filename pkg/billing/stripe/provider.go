package stripe

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mihaimyh/billingview/pkg/billing"
)

const (
	providerName                = "stripe"
	defaultHTTPTimeout          = 10 * time.Second
	defaultMaxConcurrentLookups = 4
	subscriptionStatusAll       = "all"
	subscriptionLimit           = 10
	invoiceLimit                = 5

	opFetchSubscription      = "fetch subscription"
	opCreatePortalSession    = "create portal session"
	opRetrieveBillingHistory = "retrieve billing history"
)

// Config extends billing.Config with Stripe-specific options
type Config struct {
	billing.Config // Base config (APIKey, ReturnURL, HTTPClient, Metrics, Logger)

	// StripeAPIKey takes precedence over billing.Config.APIKey when set.
	StripeAPIKey string

	// BackendURL overrides the Stripe API base URL (stripe-mock, test servers).
	BackendURL string

	// DateLayout formats renewal dates. Defaults to billing.DefaultDateLayout.
	DateLayout string

	// MaxConcurrentLookups bounds concurrent product lookups per request.
	// Defaults to 4.
	MaxConcurrentLookups int
}

// Provider implements the billing.Provider interface for Stripe.
// A fresh Stripe client is built for every operation from the configured key,
// so Provider carries no per-request state.
type Provider struct {
	config               Config
	httpClient           *http.Client
	apiKey               string
	returnURL            string
	dateLayout           string
	maxConcurrentLookups int
	metrics              billing.Metrics
	logger               billing.Logger

	// newAPI builds the client used by a single operation
	newAPI func(apiKey string) API
}

// NewProvider creates a new Stripe billing provider.
// Missing secrets are not rejected here; each operation reports them as a
// *billing.ConfigError before contacting Stripe.
func NewProvider(config Config) (*Provider, error) {
	if config.MaxConcurrentLookups < 0 {
		return nil, fmt.Errorf("%w: MaxConcurrentLookups must not be negative", billing.ErrProviderNotConfigured)
	}

	// Setup HTTP client
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: defaultHTTPTimeout,
		}
	}

	apiKey := strings.TrimSpace(config.StripeAPIKey)
	if apiKey == "" {
		apiKey = strings.TrimSpace(config.APIKey)
	}

	dateLayout := config.DateLayout
	if dateLayout == "" {
		dateLayout = billing.DefaultDateLayout
	}

	maxLookups := config.MaxConcurrentLookups
	if maxLookups == 0 {
		maxLookups = defaultMaxConcurrentLookups
	}

	// Setup metrics (optional)
	metrics := config.Metrics
	if metrics == nil {
		metrics = &billing.NoopMetrics{}
	}

	logger := config.Logger
	if logger == nil {
		logger = &billing.NoopLogger{}
	}

	p := &Provider{
		config:               config,
		httpClient:           httpClient,
		apiKey:               apiKey,
		returnURL:            strings.TrimSpace(config.ReturnURL),
		dateLayout:           dateLayout,
		maxConcurrentLookups: maxLookups,
		metrics:              metrics,
		logger:               logger,
	}
	p.newAPI = func(key string) API {
		return newClientAPI(key, p.httpClient, config.BackendURL, p.logger)
	}
	return p, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return providerName
}

// Configured reports a *billing.ConfigError when the secret key is missing.
func (p *Provider) Configured() error {
	if p.apiKey == "" {
		return billing.NewConfigError("secret key")
	}
	return nil
}

// client validates the secret key and builds the API handle for one operation.
func (p *Provider) client() (API, error) {
	if err := p.Configured(); err != nil {
		return nil, err
	}
	return p.newAPI(p.apiKey), nil
}

// record reports the outcome and latency of a single Stripe call.
func (p *Provider) record(endpoint string, startTime time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.metrics.RecordAPICall(providerName, endpoint, status)
	p.metrics.RecordAPICallDuration(providerName, endpoint, time.Since(startTime))
}

package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	opGetSubscription     = "get_subscription"
	opCreatePortalSession = "create_portal_session"
	opGetBillingHistory   = "get_billing_history"
)

// ServiceConfig wires the caller-facing operations to a provider and a customer resolver.
type ServiceConfig struct {
	// Provider performs the provider calls and normalization (required)
	Provider Provider

	// Resolver maps the caller to a provider customer id (required)
	Resolver CustomerResolver

	// Logger is optional; defaults to NoopLogger
	Logger Logger

	// Metrics is optional; defaults to NoopMetrics
	Metrics Metrics
}

// Service exposes the three billing operations for an authenticated caller.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	provider Provider
	resolver CustomerResolver
	logger   Logger
	metrics  Metrics
}

// NewService creates a new Service
func NewService(config ServiceConfig) (*Service, error) {
	if config.Provider == nil {
		return nil, fmt.Errorf("%w: provider is required", ErrProviderNotConfigured)
	}
	if config.Resolver == nil {
		return nil, fmt.Errorf("%w: customer resolver is required", ErrProviderNotConfigured)
	}

	logger := config.Logger
	if logger == nil {
		logger = &NoopLogger{}
	}
	metrics := config.Metrics
	if metrics == nil {
		metrics = &NoopMetrics{}
	}

	return &Service{
		provider: config.Provider,
		resolver: config.Resolver,
		logger:   logger,
		metrics:  metrics,
	}, nil
}

// GetSubscription returns the caller's subscriptions.
func (s *Service) GetSubscription(ctx context.Context, caller Caller) ([]Subscription, error) {
	startTime := time.Now()

	customerID, err := s.resolveCustomer(ctx, caller)
	if err != nil {
		s.finish(opGetSubscription, startTime, err)
		return nil, err
	}

	subs, err := s.provider.Subscriptions(ctx, customerID)
	s.finish(opGetSubscription, startTime, err)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []Subscription{}
	}
	return subs, nil
}

// CreatePortalSession requests a one-time billing portal URL for the caller.
func (s *Service) CreatePortalSession(ctx context.Context, caller Caller) (*PortalSession, error) {
	startTime := time.Now()

	customerID, err := s.resolveCustomer(ctx, caller)
	if err != nil {
		s.finish(opCreatePortalSession, startTime, err)
		return nil, err
	}

	session, err := s.provider.PortalSession(ctx, customerID)
	s.finish(opCreatePortalSession, startTime, err)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// GetBillingHistory returns the caller's most recent invoices.
func (s *Service) GetBillingHistory(ctx context.Context, caller Caller) ([]Invoice, error) {
	startTime := time.Now()

	customerID, err := s.resolveCustomer(ctx, caller)
	if err != nil {
		s.finish(opGetBillingHistory, startTime, err)
		return nil, err
	}

	invoices, err := s.provider.BillingHistory(ctx, customerID)
	s.finish(opGetBillingHistory, startTime, err)
	if err != nil {
		return nil, err
	}
	if invoices == nil {
		invoices = []Invoice{}
	}
	return invoices, nil
}

// resolveCustomer maps the caller to a customer id. An unconfigured provider
// or an empty id is a configuration error so that no provider call is
// attempted without one.
func (s *Service) resolveCustomer(ctx context.Context, caller Caller) (string, error) {
	if strings.TrimSpace(caller.UserID) == "" {
		return "", ErrUnauthenticated
	}
	if checker, ok := s.provider.(ConfigChecker); ok {
		if err := checker.Configured(); err != nil {
			return "", err
		}
	}

	customerID, err := s.resolver.ResolveCustomer(ctx, caller)
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			return "", err
		}
		return "", fmt.Errorf("failed to resolve customer: %w", err)
	}

	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return "", NewConfigError("customer identifier")
	}
	return customerID, nil
}

func (s *Service) finish(op string, startTime time.Time, err error) {
	s.metrics.RecordOperationDuration(op, time.Since(startTime))

	status := "success"
	switch {
	case err == nil:
	case IsConfigError(err):
		status = "config_error"
		s.logger.Error("billing operation not configured",
			Field{Key: "operation", Value: op}, Field{Key: "error", Value: err.Error()})
	case IsProviderError(err):
		status = "provider_error"
		s.logger.Error("billing provider call failed",
			Field{Key: "operation", Value: op}, Field{Key: "error", Value: err.Error()})
	default:
		status = "error"
		s.logger.Warn("billing operation failed",
			Field{Key: "operation", Value: op}, Field{Key: "error", Value: err.Error()})
	}
	s.metrics.RecordOperation(op, status)
}

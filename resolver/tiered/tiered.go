// Package tiered puts a fast customer cache (Hot) in front of a durable
// customer mapping (Cold) with a read-through strategy.
package tiered

import (
	"context"
	"errors"

	"github.com/mihaimyh/billingview/pkg/billing"
)

// Cache is a resolver that can also store mappings, such as resolver/redis.
type Cache interface {
	billing.CustomerResolver
	Link(ctx context.Context, userID, customerID string) error
}

// Config configures the tiered resolver
type Config struct {
	// Hot is the L1 cache (e.g., Redis)
	Hot Cache

	// Cold is the source of truth (e.g., Postgres, Firestore)
	Cold billing.CustomerResolver

	// CacheErrorHandler is called when a Hot read or fill fails.
	// Cache failures never fail the lookup.
	CacheErrorHandler func(error)
}

// Resolver implements billing.CustomerResolver over two tiers.
type Resolver struct {
	hot  Cache
	cold billing.CustomerResolver
	conf Config
}

// New creates a new tiered resolver.
func New(config Config) (*Resolver, error) {
	if config.Hot == nil || config.Cold == nil {
		return nil, errors.New("tiered resolver: both hot and cold resolvers are required")
	}
	return &Resolver{hot: config.Hot, cold: config.Cold, conf: config}, nil
}

// ResolveCustomer tries Hot, then Cold, then populates Hot (read-repair).
func (r *Resolver) ResolveCustomer(ctx context.Context, caller billing.Caller) (string, error) {
	id, err := r.hot.ResolveCustomer(ctx, caller)
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, billing.ErrCustomerNotFound) {
		r.cacheError(err)
	}

	id, err = r.cold.ResolveCustomer(ctx, caller)
	if err != nil {
		return "", err
	}

	if fillErr := r.hot.Link(ctx, caller.UserID, id); fillErr != nil {
		r.cacheError(fillErr)
	}
	return id, nil
}

func (r *Resolver) cacheError(err error) {
	if r.conf.CacheErrorHandler != nil {
		r.conf.CacheErrorHandler(err)
	}
}

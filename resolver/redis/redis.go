// Package redis resolves billing customers from a Redis key per user.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mihaimyh/billingview/pkg/billing"
)

// Resolver implements billing.CustomerResolver using Redis
type Resolver struct {
	client redis.UniversalClient
	config Config
}

// Config holds Redis resolver configuration
type Config struct {
	// KeyPrefix is prepended to the user id (default: "billingview:customer:")
	KeyPrefix string

	// TTL applies to mappings written by Link (0 = no expiration)
	TTL time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		KeyPrefix: "billingview:customer:",
	}
}

// New creates a new Redis resolver.
// The client can be *redis.Client, *redis.ClusterClient, or *redis.Ring
func New(client redis.UniversalClient, config Config) (*Resolver, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = DefaultConfig().KeyPrefix
	}

	return &Resolver{client: client, config: config}, nil
}

// NewFromURL parses a redis:// URL and creates a resolver over a new client.
func NewFromURL(url string, config Config) (*Resolver, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return New(redis.NewClient(opts), config)
}

// ResolveCustomer implements billing.CustomerResolver.
func (r *Resolver) ResolveCustomer(ctx context.Context, caller billing.Caller) (string, error) {
	id, err := r.client.Get(ctx, r.key(caller.UserID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", billing.ErrCustomerNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get customer mapping: %w", err)
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return "", billing.ErrCustomerNotFound
	}
	return id, nil
}

// Link stores the customer id for userID.
func (r *Resolver) Link(ctx context.Context, userID, customerID string) error {
	if err := r.client.Set(ctx, r.key(userID), customerID, r.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set customer mapping: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (r *Resolver) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (r *Resolver) Close() error {
	return r.client.Close()
}

func (r *Resolver) key(userID string) string {
	return r.config.KeyPrefix + userID
}

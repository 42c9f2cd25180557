package main

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/mihaimyh/billingview/internal/config"
	"github.com/mihaimyh/billingview/pkg/billing"
	fsresolver "github.com/mihaimyh/billingview/resolver/firestore"
	pgresolver "github.com/mihaimyh/billingview/resolver/postgres"
	redisresolver "github.com/mihaimyh/billingview/resolver/redis"
	"github.com/mihaimyh/billingview/resolver/tiered"
)

// buildResolver chains the configured customer lookups. Durable backends
// (Postgres, Firestore) are consulted in that order, fronted by Redis when it is
// configured, and the static development customer comes last.
func buildResolver(ctx context.Context, cfg *config.Config, logger billing.Logger) (billing.CustomerResolver, func(), error) {
	var (
		durable billing.Chain
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.DatabaseURL != "" {
		pgConfig := pgresolver.DefaultConfig()
		pgConfig.ConnectionString = cfg.DatabaseURL
		r, err := pgresolver.New(ctx, pgConfig)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to create postgres resolver: %w", err)
		}
		closers = append(closers, r.Close)
		durable = append(durable, r)
	}

	if cfg.FirestoreProjectID != "" {
		client, err := firestore.NewClient(ctx, cfg.FirestoreProjectID)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to create firestore client: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		r, err := fsresolver.New(client, fsresolver.Config{})
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		durable = append(durable, r)
	}

	var chain billing.Chain
	if cfg.RedisURL != "" {
		hot, err := redisresolver.NewFromURL(cfg.RedisURL, redisresolver.DefaultConfig())
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to create redis resolver: %w", err)
		}
		closers = append(closers, func() { _ = hot.Close() })
		if err := hot.Ping(ctx); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
		}

		if len(durable) > 0 {
			r, err := tiered.New(tiered.Config{
				Hot:  hot,
				Cold: durable,
				CacheErrorHandler: func(err error) {
					logger.Warn("customer cache unavailable", billing.Field{Key: "error", Value: err.Error()})
				},
			})
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			chain = append(chain, r)
		} else {
			chain = append(chain, hot)
		}
	} else {
		chain = append(chain, durable...)
	}

	if cfg.DefaultCustomerID != "" {
		chain = append(chain, billing.StaticCustomer(cfg.DefaultCustomerID))
	}

	if len(chain) == 0 {
		return billing.StaticCustomer(""), closeAll, nil
	}
	return chain, closeAll, nil
}

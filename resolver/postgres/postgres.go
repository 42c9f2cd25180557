// Package postgres resolves billing customers from a PostgreSQL mapping table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mihaimyh/billingview/pkg/billing"
)

// Querier is the subset of *pgxpool.Pool used by the resolver.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Resolver implements billing.CustomerResolver using PostgreSQL
type Resolver struct {
	db    Querier
	query string
	pool  *pgxpool.Pool
}

// Config holds PostgreSQL resolver configuration
type Config struct {
	// ConnectionString is the PostgreSQL connection string
	ConnectionString string

	// Table holds the user_id -> customer_id mapping (default: "billing_customers")
	Table string

	// Pool configuration
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Table:           "billing_customers",
		MaxConns:        10,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// New creates a resolver over its own connection pool.
func New(ctx context.Context, config Config) (*Resolver, error) {
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("connection string is required")
	}

	poolConfig, err := pgxpool.ParseConfig(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if config.MaxConns > 0 {
		poolConfig.MaxConns = config.MaxConns
	}
	if config.MinConns > 0 {
		poolConfig.MinConns = config.MinConns
	}
	if config.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = config.MaxConnLifetime
	}
	if config.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = config.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	r, err := NewWithQuerier(pool, config.Table)
	if err != nil {
		pool.Close()
		return nil, err
	}
	r.pool = pool
	return r, nil
}

// NewWithQuerier creates a resolver over an existing pool or connection.
func NewWithQuerier(db Querier, table string) (*Resolver, error) {
	if db == nil {
		return nil, fmt.Errorf("querier is required")
	}
	if table == "" {
		table = DefaultConfig().Table
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	return &Resolver{
		db:    db,
		query: "SELECT customer_id FROM " + table + " WHERE user_id = $1",
	}, nil
}

// ResolveCustomer implements billing.CustomerResolver.
func (r *Resolver) ResolveCustomer(ctx context.Context, caller billing.Caller) (string, error) {
	var customerID *string
	err := r.db.QueryRow(ctx, r.query, caller.UserID).Scan(&customerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", billing.ErrCustomerNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query customer mapping: %w", err)
	}

	if customerID == nil || strings.TrimSpace(*customerID) == "" {
		return "", billing.ErrCustomerNotFound
	}
	return strings.TrimSpace(*customerID), nil
}

// Close closes the pool if the resolver created it.
func (r *Resolver) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

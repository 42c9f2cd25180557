// Package firestore resolves billing customers from a Firestore document per user.
package firestore

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mihaimyh/billingview/pkg/billing"
)

// CustomerIDField is the document field holding the provider customer id.
const CustomerIDField = "customerId"

// Resolver implements billing.CustomerResolver using Google Cloud Firestore
type Resolver struct {
	client     *firestore.Client
	collection string

	// fetch returns the document data for userID, or a grpc NotFound status
	fetch func(ctx context.Context, userID string) (map[string]interface{}, error)
}

// Config holds Firestore resolver configuration
type Config struct {
	// Collection holds one document per user id
	// Default: "billing_customers"
	Collection string
}

// New creates a new Firestore resolver
func New(client *firestore.Client, config Config) (*Resolver, error) {
	if client == nil {
		return nil, fmt.Errorf("firestore client is required")
	}
	if config.Collection == "" {
		config.Collection = "billing_customers"
	}

	r := &Resolver{client: client, collection: config.Collection}
	r.fetch = r.getDocument
	return r, nil
}

// ResolveCustomer implements billing.CustomerResolver.
func (r *Resolver) ResolveCustomer(ctx context.Context, caller billing.Caller) (string, error) {
	if caller.UserID == "" {
		return "", billing.ErrCustomerNotFound
	}

	data, err := r.fetch(ctx, caller.UserID)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", billing.ErrCustomerNotFound
		}
		return "", fmt.Errorf("failed to get customer document: %w", err)
	}

	id, _ := data[CustomerIDField].(string)
	id = strings.TrimSpace(id)
	if id == "" {
		return "", billing.ErrCustomerNotFound
	}
	return id, nil
}

// Link writes the customer id onto the user's document, merging with existing fields.
func (r *Resolver) Link(ctx context.Context, userID, customerID string) error {
	_, err := r.client.Collection(r.collection).Doc(userID).Set(ctx, map[string]interface{}{
		CustomerIDField: customerID,
		"updatedAt":     firestore.ServerTimestamp,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to set customer document: %w", err)
	}
	return nil
}

func (r *Resolver) getDocument(ctx context.Context, userID string) (map[string]interface{}, error) {
	snap, err := r.client.Collection(r.collection).Doc(userID).Get(ctx)
	if err != nil {
		return nil, err
	}
	if !snap.Exists() {
		return nil, status.Error(codes.NotFound, "document does not exist")
	}
	return snap.Data(), nil
}

package storage

import (
	"context"

	"github.com/dmitrymomot/marketbridge/pkg/marketplace"
)

// SubscriptionStore persists the bridge's local knowledge of subscriptions.
// The webhook flow only acts on subscriptions found here; notification
// content alone is never enough to create one.
type SubscriptionStore interface {
	// Get retrieves a subscription by its stable ID.
	// Returns ErrSubscriptionNotFound if no record exists.
	Get(ctx context.Context, subscriptionID string) (*marketplace.Subscription, error)

	// Save creates or updates a subscription record. The subscription ID is
	// the upsert key.
	Save(ctx context.Context, sub *marketplace.Subscription) error
}

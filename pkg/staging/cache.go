package staging

import (
	"context"

	"github.com/dmitrymomot/marketbridge/pkg/marketplace"
)

// Cache hands a subscription snapshot off to the next page in the landing
// journey via a scoped access token. Entries are short-lived by design; the
// durable record lives in the subscription store.
type Cache interface {
	// PutSubscription stores a snapshot and returns a scoped token the
	// follow-up page can exchange for it.
	PutSubscription(ctx context.Context, sub *marketplace.Subscription) (token string, err error)

	// GetSubscription retrieves a staged snapshot by subscription ID.
	// Returns ErrNotStaged when the entry is absent or expired.
	GetSubscription(ctx context.Context, subscriptionID string) (*marketplace.Subscription, error)

	// GetSubscriptionByToken exchanges a scoped token for the staged
	// snapshot. Returns ErrNotStaged for unknown or expired tokens.
	GetSubscriptionByToken(ctx context.Context, token string) (*marketplace.Subscription, error)
}

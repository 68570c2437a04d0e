package marketplace

import "context"

// SubscriptionClient reads subscription state from the marketplace.
// Implementations own transport-level retry; callers treat every returned
// error as final.
type SubscriptionClient interface {
	// GetSubscription fetches a subscription by its stable ID.
	// Returns ErrSubscriptionNotFound if the marketplace does not know it.
	GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)

	// ResolveToken exchanges a marketplace-issued opaque purchase token for
	// the subscription it identifies. Returns ErrSubscriptionNotFound for
	// expired or unknown tokens.
	ResolveToken(ctx context.Context, token string) (*Subscription, error)

	// ActivateSubscription confirms the purchase to the marketplace after
	// the buyer completes the landing journey.
	ActivateSubscription(ctx context.Context, subscriptionID, planID string) error
}

// OperationClient reads the marketplace's operation ledger. A webhook
// notification is trusted only after the ledger confirms it.
type OperationClient interface {
	// GetOperation fetches the marketplace's record of an async operation.
	// Returns ErrOperationNotFound if no such record exists.
	GetOperation(ctx context.Context, subscriptionID, operationID string) (*SubscriptionOperation, error)

	// UpdateOperationStatus acknowledges a processed operation back to the
	// marketplace so it stops redelivering the notification.
	UpdateOperationStatus(ctx context.Context, subscriptionID, operationID string, success bool) error
}

// Client is the full marketplace API surface the bridge consumes.
// Two implementations exist: the live HTTP client and the in-memory
// simulation client, selected by deployment configuration.
type Client interface {
	SubscriptionClient
	OperationClient
}

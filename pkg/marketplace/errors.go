package marketplace

import "errors"

var (
	ErrInvalidArgument      = errors.New("marketplace: invalid argument")
	ErrSubscriptionNotFound = errors.New("marketplace: subscription not found")
	ErrOperationNotFound    = errors.New("marketplace: operation not found")
	ErrUnknownOperationType = errors.New("marketplace: unknown operation type")

	// ErrMarketplaceUnavailable is returned once the client's own bounded
	// retry policy is exhausted. Callers do not retry on top of it.
	ErrMarketplaceUnavailable = errors.New("marketplace: service unavailable")

	ErrMissingBaseURL     = errors.New("marketplace: API base URL is required")
	ErrMissingCredentials = errors.New("marketplace: API credentials are required")
	ErrUnexpectedStatus   = errors.New("marketplace: unexpected response status")
)

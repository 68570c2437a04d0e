package fulfillment

import "errors"

var (
	ErrInvalidNotification = errors.New("fulfillment: invalid notification")

	// ErrVerificationFailed means the webhook notification disagrees with
	// the marketplace's own operation ledger. It aborts the flow before any
	// state mutation and is logged as a security-relevant event.
	ErrVerificationFailed = errors.New("fulfillment: notification verification failed")

	// ErrSubscriptionNotKnown means the notification references a
	// subscription the bridge has no local record of. Surfaced to the HTTP
	// layer as a 404 so the marketplace stops retrying.
	ErrSubscriptionNotKnown = errors.New("fulfillment: subscription not known")
)

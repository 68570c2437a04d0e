package logger

import (
	"context"
	"log/slog"
)

type ctxKey string

const (
	subscriptionIDKey ctxKey = "subscription_id"
	operationIDKey    ctxKey = "operation_id"
)

// WithSubscriptionID returns a context carrying the subscription ID for log
// correlation across the fulfillment flow.
func WithSubscriptionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, subscriptionIDKey, id)
}

// WithOperationID returns a context carrying the marketplace operation ID.
func WithOperationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, operationIDKey, id)
}

// SubscriptionID extracts the subscription ID attribute from context.
func SubscriptionID() ContextExtractor {
	return extractString(subscriptionIDKey)
}

// OperationID extracts the marketplace operation ID attribute from context.
func OperationID() ContextExtractor {
	return extractString(operationIDKey)
}

func extractString(key ctxKey) ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			return slog.String(string(key), v), true
		}
		return slog.Attr{}, false
	}
}

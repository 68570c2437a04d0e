package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/marketbridge/pkg/marketplace"
	"github.com/dmitrymomot/marketbridge/pkg/storage"
)

// HandleNotification runs the webhook flow for one marketplace notification.
//
// Sequence: look up the subscription from local knowledge, map the action,
// verify against the marketplace's operation ledger, mutate the in-memory
// record, compose and publish the event, persist the mutated record, then
// acknowledge the operation. Verification and mapping failures abort before
// any mutation. Every error propagates; the marketplace retries on non-2xx,
// so a false success here would lose the operation forever.
//
// Events are published before the mutated record is persisted. Downstream
// consumers that race a state read against event receipt may briefly see the
// pre-mutation state; they are expected to re-read, and the marketplace's
// redelivery makes the flow converge.
func (s *Service) HandleNotification(ctx context.Context, n *marketplace.WebhookNotification) error {
	if n == nil {
		return fmt.Errorf("%w: notification is required", ErrInvalidNotification)
	}
	if n.SubscriptionID == "" || n.OperationID == "" {
		return fmt.Errorf("%w: subscription ID and operation ID are required", ErrInvalidNotification)
	}

	log := s.log.With(
		slog.String("subscription_id", n.SubscriptionID),
		slog.String("operation_id", n.OperationID),
		slog.String("action", n.Action),
	)

	// Local knowledge decides whether the notification is ours to process.
	// Notification content is never trusted to introduce a subscription.
	sub, err := s.store.Get(ctx, n.SubscriptionID)
	if err != nil {
		if errors.Is(err, storage.ErrSubscriptionNotFound) {
			log.WarnContext(ctx, "webhook for unknown subscription")
			return fmt.Errorf("%w: %s", ErrSubscriptionNotKnown, n.SubscriptionID)
		}
		log.ErrorContext(ctx, "failed to look up subscription", slog.Any("error", err))
		return err
	}

	opType, err := marketplace.ParseAction(n.Action)
	if err != nil {
		log.ErrorContext(ctx, "webhook carries unrecognized action", slog.Any("error", err))
		return err
	}

	if !s.simulation {
		if err := s.verifyNotification(ctx, n, opType); err != nil {
			return err
		}
	}

	if err := applyOperation(sub, opType, n, time.Now().UTC()); err != nil {
		log.ErrorContext(ctx, "failed to apply operation", slog.Any("error", err))
		return err
	}

	event, err := s.composer.Compose(opType, sub, n)
	if err != nil {
		log.ErrorContext(ctx, "failed to compose event", slog.Any("error", err))
		return err
	}
	if err := s.publishEvent(ctx, event); err != nil {
		return err
	}

	if err := s.store.Save(ctx, sub); err != nil {
		log.ErrorContext(ctx, "failed to persist mutated subscription", slog.Any("error", err))
		return err
	}

	if err := s.acknowledgeOperation(ctx, n, opType); err != nil {
		log.ErrorContext(ctx, "failed to acknowledge operation", slog.Any("error", err))
		return err
	}

	if opType == marketplace.OperationCancel {
		s.notifyCancelled(ctx, sub)
	}

	log.InfoContext(ctx, "webhook processed",
		slog.String("operation", string(opType)),
		slog.String("event_id", event.ID.String()),
	)
	return nil
}

// acknowledgeOperation reports success back to the marketplace for the
// operations whose protocol requires an explicit status update. Cancel,
// Suspend, Reinstate and Renew complete on the marketplace side without one.
func (s *Service) acknowledgeOperation(ctx context.Context, n *marketplace.WebhookNotification, opType marketplace.OperationType) error {
	switch opType {
	case marketplace.OperationChangePlan, marketplace.OperationChangeSeatQuantity:
		return s.market.UpdateOperationStatus(ctx, n.SubscriptionID, n.OperationID, true)
	default:
		return nil
	}
}

package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/marketbridge/pkg/marketplace"
)

// verifyNotification re-derives the operation from the marketplace's own
// ledger and confirms the notification matches it. A webhook POST is
// unauthenticated proof of nothing; only the ledger is trusted.
//
// The check is a strict equality across operation ID, subscription ID and
// the mapped operation type. Any disagreement, or an absent ledger record,
// fails verification. Transport failures are not verification failures and
// propagate as-is so the marketplace retries later.
func (s *Service) verifyNotification(ctx context.Context, n *marketplace.WebhookNotification, opType marketplace.OperationType) error {
	op, err := s.market.GetOperation(ctx, n.SubscriptionID, n.OperationID)
	if err != nil {
		if errors.Is(err, marketplace.ErrOperationNotFound) {
			s.log.WarnContext(ctx, "webhook notification references unknown operation",
				slog.String("subscription_id", n.SubscriptionID),
				slog.String("operation_id", n.OperationID),
			)
			return fmt.Errorf("%w: no marketplace record for operation %s", ErrVerificationFailed, n.OperationID)
		}
		return err
	}

	ledgerType := op.Type
	if ledgerType == marketplace.OperationUnknown || ledgerType == "" {
		ledgerType, err = marketplace.ParseAction(op.Action)
		if err != nil {
			return fmt.Errorf("%w: ledger action %q is not a recognized operation", ErrVerificationFailed, op.Action)
		}
	}

	if op.OperationID != n.OperationID || op.SubscriptionID != n.SubscriptionID || ledgerType != opType {
		s.log.WarnContext(ctx, "webhook notification disagrees with marketplace operation record",
			slog.String("subscription_id", n.SubscriptionID),
			slog.String("operation_id", n.OperationID),
			slog.String("notification_operation", string(opType)),
			slog.String("ledger_operation", string(ledgerType)),
		)
		return fmt.Errorf("%w: notification does not match marketplace record", ErrVerificationFailed)
	}

	return nil
}

package fulfillment

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/marketbridge/pkg/marketplace"
)

// applyOperation mutates the in-memory subscription record according to a
// verified operation. Mutations are idempotent: re-applying the same
// operation leaves the record in the same final state, which is what makes
// marketplace redelivery safe.
func applyOperation(sub *marketplace.Subscription, opType marketplace.OperationType, n *marketplace.WebhookNotification, now time.Time) error {
	switch opType {
	case marketplace.OperationCancel:
		sub.Status = marketplace.StatusCancelled
	case marketplace.OperationSuspend:
		sub.Status = marketplace.StatusSuspended
	case marketplace.OperationReinstate, marketplace.OperationActivate:
		sub.Status = marketplace.StatusActive
	case marketplace.OperationChangePlan:
		sub.PlanID = n.PlanID
	case marketplace.OperationChangeSeatQuantity:
		sub.SeatQuantity = n.SeatQuantity
	case marketplace.OperationRenew:
		// The marketplace rolls the term forward on its side; the local
		// record keeps its status and picks up new term dates on next fetch.
	default:
		return fmt.Errorf("%w: %q", marketplace.ErrUnknownOperationType, opType)
	}

	sub.UpdatedAt = now
	return nil
}

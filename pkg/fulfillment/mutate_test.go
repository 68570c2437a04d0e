package fulfillment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/marketbridge/pkg/marketplace"
)

func TestApplyOperation(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seats := int64(5)

	baseSub := func() *marketplace.Subscription {
		q := int64(3)
		return &marketplace.Subscription{
			ID:           "sub-1",
			PlanID:       "basic",
			SeatQuantity: &q,
			Status:       marketplace.StatusActive,
		}
	}

	cases := []struct {
		name   string
		opType marketplace.OperationType
		n      *marketplace.WebhookNotification
		check  func(t *testing.T, sub *marketplace.Subscription)
	}{
		{
			name:   "cancel",
			opType: marketplace.OperationCancel,
			n:      &marketplace.WebhookNotification{},
			check: func(t *testing.T, sub *marketplace.Subscription) {
				assert.Equal(t, marketplace.StatusCancelled, sub.Status)
			},
		},
		{
			name:   "suspend",
			opType: marketplace.OperationSuspend,
			n:      &marketplace.WebhookNotification{},
			check: func(t *testing.T, sub *marketplace.Subscription) {
				assert.Equal(t, marketplace.StatusSuspended, sub.Status)
			},
		},
		{
			name:   "reinstate",
			opType: marketplace.OperationReinstate,
			n:      &marketplace.WebhookNotification{},
			check: func(t *testing.T, sub *marketplace.Subscription) {
				assert.Equal(t, marketplace.StatusActive, sub.Status)
			},
		},
		{
			name:   "plan change",
			opType: marketplace.OperationChangePlan,
			n:      &marketplace.WebhookNotification{PlanID: "enterprise"},
			check: func(t *testing.T, sub *marketplace.Subscription) {
				assert.Equal(t, "enterprise", sub.PlanID)
				assert.Equal(t, marketplace.StatusActive, sub.Status)
			},
		},
		{
			name:   "seat quantity change",
			opType: marketplace.OperationChangeSeatQuantity,
			n:      &marketplace.WebhookNotification{SeatQuantity: &seats},
			check: func(t *testing.T, sub *marketplace.Subscription) {
				require.NotNil(t, sub.SeatQuantity)
				assert.Equal(t, int64(5), *sub.SeatQuantity)
			},
		},
		{
			name:   "renew leaves status",
			opType: marketplace.OperationRenew,
			n:      &marketplace.WebhookNotification{},
			check: func(t *testing.T, sub *marketplace.Subscription) {
				assert.Equal(t, marketplace.StatusActive, sub.Status)
				assert.Equal(t, "basic", sub.PlanID)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sub := baseSub()
			require.NoError(t, applyOperation(sub, tc.opType, tc.n, now))
			tc.check(t, sub)
			assert.Equal(t, now, sub.UpdatedAt)

			// Re-applying the same operation is a no-op state-wise.
			require.NoError(t, applyOperation(sub, tc.opType, tc.n, now))
			tc.check(t, sub)
		})
	}

	t.Run("unknown operation rejected", func(t *testing.T) {
		t.Parallel()

		sub := baseSub()
		err := applyOperation(sub, marketplace.OperationUnknown, &marketplace.WebhookNotification{}, now)
		assert.ErrorIs(t, err, marketplace.ErrUnknownOperationType)
		assert.Equal(t, marketplace.StatusActive, sub.Status)
	})

	t.Run("suspend after cancel is a status overwrite", func(t *testing.T) {
		t.Parallel()

		sub := baseSub()
		require.NoError(t, applyOperation(sub, marketplace.OperationCancel, &marketplace.WebhookNotification{}, now))
		require.NoError(t, applyOperation(sub, marketplace.OperationSuspend, &marketplace.WebhookNotification{}, now))
		assert.Equal(t, marketplace.StatusSuspended, sub.Status)
	})
}

package fulfillment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/marketbridge/pkg/events"
	"github.com/dmitrymomot/marketbridge/pkg/fulfillment"
	"github.com/dmitrymomot/marketbridge/pkg/marketplace"
	"github.com/dmitrymomot/marketbridge/pkg/publisher"
	"github.com/dmitrymomot/marketbridge/pkg/staging"
	"github.com/dmitrymomot/marketbridge/pkg/storage"
)

// webhookFixture wires a live-mode service whose marketplace ledger is backed
// by a simulation client, so verification runs against recorded operations.
type webhookFixture struct {
	service *fulfillment.Service
	market  *marketplace.SimulationClient
	store   *storage.MemoryStore
	pub     *capturePublisher
}

func newWebhookFixture(t *testing.T, opts ...fulfillment.Option) *webhookFixture {
	t.Helper()

	composer, err := events.NewComposer(events.SchemaVersionHierarchical)
	require.NoError(t, err)

	f := &webhookFixture{
		market: marketplace.NewSimulationClient(marketplace.SimulationConfig{}),
		store:  storage.NewMemoryStore(),
		pub:    &capturePublisher{},
	}
	f.service = fulfillment.NewService(
		f.market, f.store, staging.NewMemoryCache(time.Hour),
		publisher.NewStaticStore(testPublisherConfig()), composer, f.pub, opts...,
	)
	return f
}

// seed persists a known subscription the webhook flow can act on.
func (f *webhookFixture) seed(t *testing.T, ctx context.Context, sub *marketplace.Subscription) {
	t.Helper()
	require.NoError(t, f.store.Save(ctx, sub))
}

func activeSubscription() *marketplace.Subscription {
	seats := int64(3)
	return &marketplace.Subscription{
		ID:           "S1",
		Name:         "Contoso Prod",
		PlanID:       "basic",
		SeatQuantity: &seats,
		Status:       marketplace.StatusActive,
	}
}

func TestHandleNotification(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("invalid notification", func(t *testing.T) {
		t.Parallel()

		f := newWebhookFixture(t)
		assert.ErrorIs(t, f.service.HandleNotification(ctx, nil), fulfillment.ErrInvalidNotification)
		assert.ErrorIs(t, f.service.HandleNotification(ctx, &marketplace.WebhookNotification{
			OperationID: "O1",
		}), fulfillment.ErrInvalidNotification)
		assert.ErrorIs(t, f.service.HandleNotification(ctx, &marketplace.WebhookNotification{
			SubscriptionID: "S1",
		}), fulfillment.ErrInvalidNotification)
	})

	t.Run("unknown subscription", func(t *testing.T) {
		t.Parallel()

		f := newWebhookFixture(t)
		err := f.service.HandleNotification(ctx, &marketplace.WebhookNotification{
			SubscriptionID: "S1",
			OperationID:    "O1",
			Action:         marketplace.ActionSuspend,
		})
		assert.ErrorIs(t, err, fulfillment.ErrSubscriptionNotKnown)
		assert.Empty(t, f.pub.published())
	})

	t.Run("unrecognized action aborts before mutation", func(t *testing.T) {
		t.Parallel()

		f := newWebhookFixture(t)
		f.seed(t, ctx, activeSubscription())

		err := f.service.HandleNotification(ctx, &marketplace.WebhookNotification{
			SubscriptionID: "S1",
			OperationID:    "O1",
			Action:         "unsubscribe", // wrong case
		})
		assert.ErrorIs(t, err, marketplace.ErrUnknownOperationType)

		stored, err := f.store.Get(ctx, "S1")
		require.NoError(t, err)
		assert.Equal(t, marketplace.StatusActive, stored.Status)
		assert.Empty(t, f.pub.published())
	})

	t.Run("verification fails when the ledger has no record", func(t *testing.T) {
		t.Parallel()

		f := newWebhookFixture(t)
		f.seed(t, ctx, activeSubscription())

		err := f.service.HandleNotification(ctx, &marketplace.WebhookNotification{
			SubscriptionID: "S1",
			OperationID:    "O-forged",
			Action:         marketplace.ActionUnsubscribe,
		})
		assert.ErrorIs(t, err, fulfillment.ErrVerificationFailed)

		stored, err := f.store.Get(ctx, "S1")
		require.NoError(t, err)
		assert.Equal(t, marketplace.StatusActive, stored.Status)
		assert.Empty(t, f.pub.published())
	})

	t.Run("verification fails on operation type disagreement", func(t *testing.T) {
		t.Parallel()

		f := newWebhookFixture(t)
		f.seed(t, ctx, activeSubscription())
		f.market.RecordOperation(marketplace.SubscriptionOperation{
			SubscriptionID: "S1",
			OperationID:    "O1",
			Action:         marketplace.ActionSuspend,
		})

		// Notification claims a cancellation the ledger recorded as a suspend.
		err := f.service.HandleNotification(ctx, &marketplace.WebhookNotification{
			SubscriptionID: "S1",
			OperationID:    "O1",
			Action:         marketplace.ActionUnsubscribe,
		})
		assert.ErrorIs(t, err, fulfillment.ErrVerificationFailed)

		stored, err := f.store.Get(ctx, "S1")
		require.NoError(t, err)
		assert.Equal(t, marketplace.StatusActive, stored.Status)
	})

	t.Run("verified seat quantity change", func(t *testing.T) {
		t.Parallel()

		f := newWebhookFixture(t)
		f.seed(t, ctx, activeSubscription())
		f.market.RecordOperation(marketplace.SubscriptionOperation{
			SubscriptionID: "S1",
			OperationID:    "O1",
			Action:         marketplace.ActionChangeQuantity,
		})

		seats := int64(5)
		err := f.service.HandleNotification(ctx, &marketplace.WebhookNotification{
			SubscriptionID: "S1",
			OperationID:    "O1",
			Action:         marketplace.ActionChangeQuantity,
			SeatQuantity:   &seats,
		})
		require.NoError(t, err)

		stored, err := f.store.Get(ctx, "S1")
		require.NoError(t, err)
		require.NotNil(t, stored.SeatQuantity)
		assert.Equal(t, int64(5), *stored.SeatQuantity)

		published := f.pub.published()
		require.Len(t, published, 1)
		assert.Equal(t, events.TypeSubscriptionSeatQuantityChanged, published[0].Type)
		assert.Equal(t, "O1", published[0].OperationID)

		data, ok := published[0].Data.(events.HierarchicalData)
		require.True(t, ok)
		require.NotNil(t, data.NewSeatQuantity)
		assert.Equal(t, int64(5), *data.NewSeatQuantity)
	})

	t.Run("verified cancellation notifies the purchaser", func(t *testing.T) {
		t.Parallel()

		notifier := &recordNotifier{}
		f := newWebhookFixture(t, fulfillment.WithNotifier(notifier))
		f.seed(t, ctx, activeSubscription())
		f.market.RecordOperation(marketplace.SubscriptionOperation{
			SubscriptionID: "S1",
			OperationID:    "O1",
			Action:         marketplace.ActionUnsubscribe,
		})

		err := f.service.HandleNotification(ctx, &marketplace.WebhookNotification{
			SubscriptionID: "S1",
			OperationID:    "O1",
			Action:         marketplace.ActionUnsubscribe,
		})
		require.NoError(t, err)

		stored, err := f.store.Get(ctx, "S1")
		require.NoError(t, err)
		assert.Equal(t, marketplace.StatusCancelled, stored.Status)
		assert.Equal(t, []string{"S1"}, notifier.cancelled)
	})

	t.Run("publish failure keeps the stored record untouched", func(t *testing.T) {
		t.Parallel()

		f := newWebhookFixture(t)
		f.pub.err = assert.AnError
		f.seed(t, ctx, activeSubscription())
		f.market.RecordOperation(marketplace.SubscriptionOperation{
			SubscriptionID: "S1",
			OperationID:    "O1",
			Action:         marketplace.ActionSuspend,
		})

		err := f.service.HandleNotification(ctx, &marketplace.WebhookNotification{
			SubscriptionID: "S1",
			OperationID:    "O1",
			Action:         marketplace.ActionSuspend,
		})
		require.Error(t, err)

		stored, err := f.store.Get(ctx, "S1")
		require.NoError(t, err)
		assert.Equal(t, marketplace.StatusActive, stored.Status)
	})

	t.Run("simulation mode skips verification", func(t *testing.T) {
		t.Parallel()

		sim := marketplace.NewSimulationClient(marketplace.SimulationConfig{})
		f := newWebhookFixture(t, fulfillment.WithSimulationMode(sim))
		f.seed(t, ctx, activeSubscription())

		// No ledger record exists, still processed.
		err := f.service.HandleNotification(ctx, &marketplace.WebhookNotification{
			SubscriptionID: "S1",
			OperationID:    "O1",
			Action:         marketplace.ActionSuspend,
		})
		require.NoError(t, err)

		stored, err := f.store.Get(ctx, "S1")
		require.NoError(t, err)
		assert.Equal(t, marketplace.StatusSuspended, stored.Status)
	})
}

func TestHandleNotificationAcknowledgement(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newMockedService := func(t *testing.T, market *MockMarketplaceClient, store *storage.MemoryStore, pub *capturePublisher) *fulfillment.Service {
		t.Helper()
		composer, err := events.NewComposer(events.SchemaVersionHierarchical)
		require.NoError(t, err)
		return fulfillment.NewService(
			market, store, staging.NewMemoryCache(time.Hour),
			publisher.NewStaticStore(testPublisherConfig()), composer, pub,
		)
	}

	t.Run("plan change reports success to the marketplace", func(t *testing.T) {
		t.Parallel()

		market := &MockMarketplaceClient{}
		store := storage.NewMemoryStore()
		require.NoError(t, store.Save(ctx, activeSubscription()))

		market.On("GetOperation", mock.Anything, "S1", "O1").Return(&marketplace.SubscriptionOperation{
			SubscriptionID: "S1",
			OperationID:    "O1",
			Type:           marketplace.OperationChangePlan,
			Action:         marketplace.ActionChangePlan,
		}, nil)
		market.On("UpdateOperationStatus", mock.Anything, "S1", "O1", true).Return(nil)

		service := newMockedService(t, market, store, &capturePublisher{})
		err := service.HandleNotification(ctx, &marketplace.WebhookNotification{
			SubscriptionID: "S1",
			OperationID:    "O1",
			Action:         marketplace.ActionChangePlan,
			PlanID:         "enterprise",
		})
		require.NoError(t, err)

		stored, err := store.Get(ctx, "S1")
		require.NoError(t, err)
		assert.Equal(t, "enterprise", stored.PlanID)
		market.AssertExpectations(t)
	})

	t.Run("suspend completes without a status update", func(t *testing.T) {
		t.Parallel()

		market := &MockMarketplaceClient{}
		store := storage.NewMemoryStore()
		require.NoError(t, store.Save(ctx, activeSubscription()))

		market.On("GetOperation", mock.Anything, "S1", "O1").Return(&marketplace.SubscriptionOperation{
			SubscriptionID: "S1",
			OperationID:    "O1",
			Type:           marketplace.OperationSuspend,
			Action:         marketplace.ActionSuspend,
		}, nil)

		service := newMockedService(t, market, store, &capturePublisher{})
		err := service.HandleNotification(ctx, &marketplace.WebhookNotification{
			SubscriptionID: "S1",
			OperationID:    "O1",
			Action:         marketplace.ActionSuspend,
		})
		require.NoError(t, err)

		market.AssertNotCalled(t, "UpdateOperationStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ledger identifiers must match the notification", func(t *testing.T) {
		t.Parallel()

		market := &MockMarketplaceClient{}
		store := storage.NewMemoryStore()
		require.NoError(t, store.Save(ctx, activeSubscription()))

		// Ledger record exists but belongs to a different subscription.
		market.On("GetOperation", mock.Anything, "S1", "O1").Return(&marketplace.SubscriptionOperation{
			SubscriptionID: "S2",
			OperationID:    "O1",
			Type:           marketplace.OperationSuspend,
			Action:         marketplace.ActionSuspend,
		}, nil)

		service := newMockedService(t, market, store, &capturePublisher{})
		err := service.HandleNotification(ctx, &marketplace.WebhookNotification{
			SubscriptionID: "S1",
			OperationID:    "O1",
			Action:         marketplace.ActionSuspend,
		})
		assert.ErrorIs(t, err, fulfillment.ErrVerificationFailed)

		stored, err := store.Get(ctx, "S1")
		require.NoError(t, err)
		assert.Equal(t, marketplace.StatusActive, stored.Status)
	})

	t.Run("ledger transport failure propagates without mutation", func(t *testing.T) {
		t.Parallel()

		market := &MockMarketplaceClient{}
		store := storage.NewMemoryStore()
		require.NoError(t, store.Save(ctx, activeSubscription()))

		market.On("GetOperation", mock.Anything, "S1", "O1").Return(nil, marketplace.ErrMarketplaceUnavailable)

		service := newMockedService(t, market, store, &capturePublisher{})
		err := service.HandleNotification(ctx, &marketplace.WebhookNotification{
			SubscriptionID: "S1",
			OperationID:    "O1",
			Action:         marketplace.ActionSuspend,
		})
		assert.ErrorIs(t, err, marketplace.ErrMarketplaceUnavailable)
		assert.NotErrorIs(t, err, fulfillment.ErrVerificationFailed)

		stored, err := store.Get(ctx, "S1")
		require.NoError(t, err)
		assert.Equal(t, marketplace.StatusActive, stored.Status)
	})
}

package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/marketbridge/pkg/marketplace"
	"github.com/dmitrymomot/marketbridge/pkg/storage"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("save then get", func(t *testing.T) {
		t.Parallel()

		store := storage.NewMemoryStore()
		require.NoError(t, store.Save(ctx, &marketplace.Subscription{
			ID:     "sub-1",
			PlanID: "basic",
			Status: marketplace.StatusActive,
		}))

		got, err := store.Get(ctx, "sub-1")
		require.NoError(t, err)
		assert.Equal(t, "basic", got.PlanID)
		assert.Equal(t, marketplace.StatusActive, got.Status)
	})

	t.Run("save upserts", func(t *testing.T) {
		t.Parallel()

		store := storage.NewMemoryStore()
		require.NoError(t, store.Save(ctx, &marketplace.Subscription{ID: "sub-1", PlanID: "basic"}))
		require.NoError(t, store.Save(ctx, &marketplace.Subscription{ID: "sub-1", PlanID: "premium"}))

		got, err := store.Get(ctx, "sub-1")
		require.NoError(t, err)
		assert.Equal(t, "premium", got.PlanID)
	})

	t.Run("returned copy is isolated", func(t *testing.T) {
		t.Parallel()

		store := storage.NewMemoryStore()
		require.NoError(t, store.Save(ctx, &marketplace.Subscription{ID: "sub-1", PlanID: "basic"}))

		got, err := store.Get(ctx, "sub-1")
		require.NoError(t, err)
		got.PlanID = "mutated"

		again, err := store.Get(ctx, "sub-1")
		require.NoError(t, err)
		assert.Equal(t, "basic", again.PlanID)
	})

	t.Run("unknown subscription", func(t *testing.T) {
		t.Parallel()

		store := storage.NewMemoryStore()
		_, err := store.Get(ctx, "absent")
		assert.ErrorIs(t, err, storage.ErrSubscriptionNotFound)
	})

	t.Run("invalid input", func(t *testing.T) {
		t.Parallel()

		store := storage.NewMemoryStore()

		_, err := store.Get(ctx, "")
		assert.ErrorIs(t, err, storage.ErrInvalidSubscription)

		assert.ErrorIs(t, store.Save(ctx, nil), storage.ErrInvalidSubscription)
		assert.ErrorIs(t, store.Save(ctx, &marketplace.Subscription{}), storage.ErrInvalidSubscription)
	})
}

package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrymomot/marketbridge/pkg/marketplace"
)

// MemoryStore is the in-memory SubscriptionStore for tests and simulation
// deployments.
type MemoryStore struct {
	mu            sync.RWMutex
	subscriptions map[string]marketplace.Subscription
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subscriptions: make(map[string]marketplace.Subscription)}
}

func (s *MemoryStore) Get(ctx context.Context, subscriptionID string) (*marketplace.Subscription, error) {
	if subscriptionID == "" {
		return nil, fmt.Errorf("%w: subscription ID is required", ErrInvalidSubscription)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subscriptions[subscriptionID]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	cp := sub
	return &cp, nil
}

func (s *MemoryStore) Save(ctx context.Context, sub *marketplace.Subscription) error {
	if sub == nil || sub.ID == "" {
		return fmt.Errorf("%w: subscription with ID is required", ErrInvalidSubscription)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[sub.ID] = *sub
	return nil
}

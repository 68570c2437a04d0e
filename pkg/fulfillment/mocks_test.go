package fulfillment_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/marketbridge/pkg/events"
	"github.com/dmitrymomot/marketbridge/pkg/marketplace"
)

// MockMarketplaceClient is a mock implementation of marketplace.Client.
type MockMarketplaceClient struct {
	mock.Mock
}

func (m *MockMarketplaceClient) GetSubscription(ctx context.Context, subscriptionID string) (*marketplace.Subscription, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Subscription), args.Error(1)
}

func (m *MockMarketplaceClient) ResolveToken(ctx context.Context, token string) (*marketplace.Subscription, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Subscription), args.Error(1)
}

func (m *MockMarketplaceClient) ActivateSubscription(ctx context.Context, subscriptionID, planID string) error {
	args := m.Called(ctx, subscriptionID, planID)
	return args.Error(0)
}

func (m *MockMarketplaceClient) GetOperation(ctx context.Context, subscriptionID, operationID string) (*marketplace.SubscriptionOperation, error) {
	args := m.Called(ctx, subscriptionID, operationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.SubscriptionOperation), args.Error(1)
}

func (m *MockMarketplaceClient) UpdateOperationStatus(ctx context.Context, subscriptionID, operationID string, success bool) error {
	args := m.Called(ctx, subscriptionID, operationID, success)
	return args.Error(0)
}

// capturePublisher records every published event and optionally fails.
type capturePublisher struct {
	mu     sync.Mutex
	events []*events.Event
	err    error
}

func (p *capturePublisher) Publish(ctx context.Context, event *events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) published() []*events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*events.Event(nil), p.events...)
}

// recordNotifier counts notification calls and optionally fails.
type recordNotifier struct {
	mu        sync.Mutex
	purchased []string
	cancelled []string
	err       error
}

func (n *recordNotifier) SubscriptionPurchased(ctx context.Context, sub *marketplace.Subscription) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.purchased = append(n.purchased, sub.ID)
	return n.err
}

func (n *recordNotifier) SubscriptionCancelled(ctx context.Context, sub *marketplace.Subscription) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, sub.ID)
	return n.err
}

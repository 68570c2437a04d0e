package staging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/marketbridge/pkg/marketplace"
)

type memoryEntry struct {
	sub       marketplace.Subscription
	expiresAt time.Time
}

// MemoryCache is the in-memory Cache implementation for tests and
// single-instance simulation deployments.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	tokens  map[string]string
	now     func() time.Time
}

// NewMemoryCache creates an in-memory staging cache with the given TTL.
// A zero TTL defaults to one hour.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl == 0 {
		ttl = time.Hour
	}
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		tokens:  make(map[string]string),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (c *MemoryCache) PutSubscription(ctx context.Context, sub *marketplace.Subscription) (string, error) {
	if sub == nil || sub.ID == "" {
		return "", fmt.Errorf("%w: subscription with ID is required", ErrInvalidSubscription)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	token := uuid.NewString()
	c.entries[sub.ID] = memoryEntry{sub: *sub, expiresAt: c.now().Add(c.ttl)}
	c.tokens[token] = sub.ID
	return token, nil
}

func (c *MemoryCache) GetSubscription(ctx context.Context, subscriptionID string) (*marketplace.Subscription, error) {
	if subscriptionID == "" {
		return nil, fmt.Errorf("%w: subscription ID is required", ErrInvalidSubscription)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[subscriptionID]
	if !ok || c.now().After(entry.expiresAt) {
		return nil, ErrNotStaged
	}
	cp := entry.sub
	return &cp, nil
}

func (c *MemoryCache) GetSubscriptionByToken(ctx context.Context, token string) (*marketplace.Subscription, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", ErrInvalidSubscription)
	}

	c.mu.RLock()
	id, ok := c.tokens[token]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrNotStaged
	}
	return c.GetSubscription(ctx, id)
}

package staging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/marketbridge/pkg/marketplace"
)

const (
	subscriptionKeyPrefix = "staging:subscription:"
	tokenKeyPrefix        = "staging:token:"
)

// RedisConfig configures the Redis-backed staging cache.
type RedisConfig struct {
	TTL time.Duration `env:"STAGING_TTL" envDefault:"1h"`
}

// RedisCache is the Redis-backed Cache implementation. Entries expire after
// the configured TTL; the token and the snapshot share one lifetime.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a Redis staging cache. Panics on a nil client to
// fail fast during initialization.
func NewRedisCache(client *redis.Client, cfg RedisConfig) *RedisCache {
	if client == nil {
		panic("staging: redis client is required")
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = time.Hour
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) PutSubscription(ctx context.Context, sub *marketplace.Subscription) (string, error) {
	if sub == nil || sub.ID == "" {
		return "", fmt.Errorf("%w: subscription with ID is required", ErrInvalidSubscription)
	}

	raw, err := json.Marshal(sub)
	if err != nil {
		return "", errors.Join(ErrFailedToStage, err)
	}

	token := uuid.NewString()
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, subscriptionKeyPrefix+sub.ID, raw, c.ttl)
	pipe.Set(ctx, tokenKeyPrefix+token, sub.ID, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", errors.Join(ErrFailedToStage, err)
	}
	return token, nil
}

func (c *RedisCache) GetSubscription(ctx context.Context, subscriptionID string) (*marketplace.Subscription, error) {
	if subscriptionID == "" {
		return nil, fmt.Errorf("%w: subscription ID is required", ErrInvalidSubscription)
	}

	raw, err := c.client.Get(ctx, subscriptionKeyPrefix+subscriptionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotStaged
		}
		return nil, errors.Join(ErrFailedToStage, err)
	}

	var sub marketplace.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, errors.Join(ErrFailedToStage, err)
	}
	return &sub, nil
}

func (c *RedisCache) GetSubscriptionByToken(ctx context.Context, token string) (*marketplace.Subscription, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", ErrInvalidSubscription)
	}

	id, err := c.client.Get(ctx, tokenKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotStaged
		}
		return nil, errors.Join(ErrFailedToStage, err)
	}
	return c.GetSubscription(ctx, id)
}

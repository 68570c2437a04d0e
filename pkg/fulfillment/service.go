package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/marketbridge/pkg/events"
	"github.com/dmitrymomot/marketbridge/pkg/marketplace"
	"github.com/dmitrymomot/marketbridge/pkg/publisher"
	"github.com/dmitrymomot/marketbridge/pkg/staging"
	"github.com/dmitrymomot/marketbridge/pkg/storage"
)

// Notifier optionally informs the purchaser about lifecycle milestones.
// Failures are logged, never propagated: notification email is auxiliary to
// the fulfillment contract.
type Notifier interface {
	SubscriptionPurchased(ctx context.Context, sub *marketplace.Subscription) error
	SubscriptionCancelled(ctx context.Context, sub *marketplace.Subscription) error
}

// Service is the lifecycle orchestrator tying the resolver, verifier,
// composer, stores and publisher together. Each Landing or HandleNotification
// call is an independent, stateless unit of work; the persisted subscription
// record is the only shared resource.
type Service struct {
	market    marketplace.Client
	store     storage.SubscriptionStore
	stage     staging.Cache
	config    publisher.Store
	composer  *events.Composer
	publisher events.Publisher

	log      *slog.Logger
	notifier Notifier

	// simulation synthesizes subscriptions instead of resolving tokens and
	// bypasses notification verification. Only settable through the
	// explicit WithSimulationMode option, never a fallback.
	simulation bool
	sim        *marketplace.SimulationClient
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithNotifier enables purchaser notifications.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithSimulationMode switches the service into test/simulation mode: landing
// requests synthesize a subscription through the given client instead of
// resolving a marketplace token, and webhook verification always succeeds.
// Never enable this on a deployment facing the real marketplace.
func WithSimulationMode(sim *marketplace.SimulationClient) Option {
	return func(s *Service) {
		if sim != nil {
			s.simulation = true
			s.sim = sim
			s.market = sim
		}
	}
}

// NewService creates the orchestrator. Panics on nil required dependencies
// to fail fast during initialization.
func NewService(market marketplace.Client, store storage.SubscriptionStore, stage staging.Cache, config publisher.Store, composer *events.Composer, pub events.Publisher, opts ...Option) *Service {
	if market == nil {
		panic("fulfillment: marketplace client is required")
	}
	if store == nil {
		panic("fulfillment: subscription store is required")
	}
	if stage == nil {
		panic("fulfillment: staging cache is required")
	}
	if config == nil {
		panic("fulfillment: publisher configuration store is required")
	}
	if composer == nil {
		panic("fulfillment: event composer is required")
	}
	if pub == nil {
		panic("fulfillment: event publisher is required")
	}

	s := &Service{
		market:    market,
		store:     store,
		stage:     stage,
		config:    config,
		composer:  composer,
		publisher: pub,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveToken exchanges a marketplace purchase token for the canonical
// subscription snapshot. Read-only; the landing flow layers persistence and
// event publication on top.
func (s *Service) ResolveToken(ctx context.Context, token string) (*marketplace.Subscription, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", marketplace.ErrInvalidArgument)
	}
	return s.market.ResolveToken(ctx, token)
}

// GetSubscription fetches the canonical subscription snapshot by ID.
func (s *Service) GetSubscription(ctx context.Context, subscriptionID string) (*marketplace.Subscription, error) {
	if subscriptionID == "" {
		return nil, fmt.Errorf("%w: subscription ID is required", marketplace.ErrInvalidArgument)
	}
	return s.market.GetSubscription(ctx, subscriptionID)
}

// publishEvent publishes and logs failures with full context before
// propagating them. No error is ever converted into a false success.
func (s *Service) publishEvent(ctx context.Context, event *events.Event) error {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.ErrorContext(ctx, "failed to publish lifecycle event",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", string(event.Type)),
			slog.String("operation_id", event.OperationID),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

func (s *Service) notifyPurchased(ctx context.Context, sub *marketplace.Subscription) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SubscriptionPurchased(ctx, sub); err != nil {
		s.log.WarnContext(ctx, "purchase notification failed",
			slog.String("subscription_id", sub.ID),
			slog.Any("error", err),
		)
	}
}

func (s *Service) notifyCancelled(ctx context.Context, sub *marketplace.Subscription) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SubscriptionCancelled(ctx, sub); err != nil {
		s.log.WarnContext(ctx, "cancellation notification failed",
			slog.String("subscription_id", sub.ID),
			slog.Any("error", err),
		)
	}
}

// errIsNotFound reports whether err is any of the collaborator not-found
// sentinels.
func errIsNotFound(err error) bool {
	return errors.Is(err, marketplace.ErrSubscriptionNotFound) ||
		errors.Is(err, storage.ErrSubscriptionNotFound) ||
		errors.Is(err, staging.ErrNotStaged)
}

package fulfillment

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/marketbridge/pkg/marketplace"
	"github.com/dmitrymomot/marketbridge/pkg/publisher"
)

// LandingOutcome classifies the terminal state of a landing request.
type LandingOutcome string

const (
	// LandingSetupRequired means the publisher has not finished setup; the
	// caller defers to the setup journey.
	LandingSetupRequired LandingOutcome = "setup_required"
	// LandingRedirect carries the buyer to the substituted redirect URL.
	LandingRedirect LandingOutcome = "redirect"
	// LandingNotFound means there is nothing to show: no token and no
	// marketing page, or a token that resolved to nothing.
	LandingNotFound LandingOutcome = "not_found"
)

// LandingResult is the orchestrator's decision for one landing request.
type LandingResult struct {
	Outcome      LandingOutcome
	RedirectURL  string
	Subscription *marketplace.Subscription
	StagingToken string
}

// LandingParams carries the request inputs. SubscriptionName and PlanID are
// honored only in simulation mode, where they seed the synthesized
// subscription.
type LandingParams struct {
	Token            string
	SubscriptionName string
	PlanID           string
}

// Landing runs the purchase/configuration flow for a buyer arriving from
// the marketplace.
//
// The publisher configuration is fetched exactly once per invocation and
// threaded through explicitly. The critical branch is the subscription
// status: PendingActivation means a first visit (publish the purchase event,
// then route to purchase confirmation); every other status means a repeat
// visit (no event, route to configuration).
func (s *Service) Landing(ctx context.Context, params LandingParams) (*LandingResult, error) {
	cfg, err := s.config.GetConfiguration(ctx)
	if err != nil {
		if errors.Is(err, publisher.ErrNotConfigured) {
			return &LandingResult{Outcome: LandingSetupRequired}, nil
		}
		s.log.ErrorContext(ctx, "failed to load publisher configuration", slog.Any("error", err))
		return nil, err
	}

	if s.simulation {
		sub, _ := s.sim.SynthesizeSubscription(params.SubscriptionName, params.PlanID)
		// Simulation always takes the first-visit branch.
		return s.landFirstVisit(ctx, cfg, sub)
	}

	if params.Token == "" {
		if cfg.MarketingPageURL != "" {
			return &LandingResult{Outcome: LandingRedirect, RedirectURL: cfg.MarketingPageURL}, nil
		}
		return &LandingResult{Outcome: LandingNotFound}, nil
	}

	sub, err := s.ResolveToken(ctx, params.Token)
	if err != nil {
		if errIsNotFound(err) {
			s.log.WarnContext(ctx, "landing token did not resolve to a subscription", slog.Any("error", err))
			return &LandingResult{Outcome: LandingNotFound}, nil
		}
		s.log.ErrorContext(ctx, "failed to resolve landing token", slog.Any("error", err))
		return nil, err
	}

	if sub.IsPendingActivation() {
		return s.landFirstVisit(ctx, cfg, sub)
	}
	return s.landRepeatVisit(ctx, cfg, sub)
}

// landFirstVisit publishes the purchase event, persists the subscription and
// routes to purchase confirmation. Event publication precedes persistence;
// on a mid-flow failure the marketplace token remains resolvable and the
// buyer retries the landing.
func (s *Service) landFirstVisit(ctx context.Context, cfg *publisher.Configuration, sub *marketplace.Subscription) (*LandingResult, error) {
	event, err := s.composer.ComposePurchase(sub)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to compose purchase event",
			slog.String("subscription_id", sub.ID),
			slog.Any("error", err),
		)
		return nil, err
	}
	if err := s.publishEvent(ctx, event); err != nil {
		return nil, err
	}

	token, err := s.persistSubscription(ctx, sub)
	if err != nil {
		return nil, err
	}

	s.notifyPurchased(ctx, sub)

	s.log.InfoContext(ctx, "purchase landing completed",
		slog.String("subscription_id", sub.ID),
		slog.String("event_id", event.ID.String()),
	)

	return &LandingResult{
		Outcome:      LandingRedirect,
		RedirectURL:  publisher.SubstituteSubscriptionID(cfg.PurchaseConfirmationURL, sub.ID),
		Subscription: sub,
		StagingToken: token,
	}, nil
}

// landRepeatVisit re-stages the already-known subscription and routes to the
// configuration page. No event is published: a repeat visit is not a
// lifecycle transition.
func (s *Service) landRepeatVisit(ctx context.Context, cfg *publisher.Configuration, sub *marketplace.Subscription) (*LandingResult, error) {
	token, err := s.persistSubscription(ctx, sub)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "configuration landing completed",
		slog.String("subscription_id", sub.ID),
		slog.String("status", string(sub.Status)),
	)

	return &LandingResult{
		Outcome:      LandingRedirect,
		RedirectURL:  publisher.SubstituteSubscriptionID(cfg.SubscriptionConfigurationURL, sub.ID),
		Subscription: sub,
		StagingToken: token,
	}, nil
}

// persistSubscription saves the durable record and stages the snapshot for
// the follow-up page, returning the scoped staging token.
func (s *Service) persistSubscription(ctx context.Context, sub *marketplace.Subscription) (string, error) {
	if err := s.store.Save(ctx, sub); err != nil {
		s.log.ErrorContext(ctx, "failed to persist subscription",
			slog.String("subscription_id", sub.ID),
			slog.Any("error", err),
		)
		return "", err
	}

	token, err := s.stage.PutSubscription(ctx, sub)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to stage subscription",
			slog.String("subscription_id", sub.ID),
			slog.Any("error", err),
		)
		return "", err
	}
	return token, nil
}

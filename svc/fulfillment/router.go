package fulfillment

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/marketbridge/pkg/fulfillment"
	"github.com/dmitrymomot/marketbridge/pkg/httpserver"
	"github.com/dmitrymomot/marketbridge/pkg/staging"
)

// RouterOptions configures the HTTP surface of the bridge.
type RouterOptions struct {
	Service *fulfillment.Service
	Stage   staging.Cache
	Logger  *slog.Logger

	// Healthchecks are run by the readiness probe.
	Healthchecks []func(context.Context) error
}

// Router mounts the bridge's routes:
//
//	GET  /                       landing (purchase/configuration) flow
//	POST /api/webhook            marketplace webhook notifications
//	GET  /api/subscriptions/{token}  staged snapshot exchange
//	GET  /healthz                liveness probe
//	GET  /readyz                 readiness probe
func Router(opts RouterOptions) chi.Router {
	if opts.Service == nil {
		panic("fulfillment: service is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	h := &handlers{
		svc:   opts.Service,
		stage: opts.Stage,
		log:   opts.Logger,
	}

	r := chi.NewRouter()
	r.Get("/", h.landing)
	r.Post("/api/webhook", h.webhook)
	if opts.Stage != nil {
		r.Get("/api/subscriptions/{token}", h.stagedSubscription)
	}
	r.Get("/healthz", httpserver.HealthCheckHandler(opts.Logger))
	r.Get("/readyz", httpserver.HealthCheckHandler(opts.Logger, opts.Healthchecks...))

	return r
}

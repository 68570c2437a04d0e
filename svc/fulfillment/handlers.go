package fulfillment

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/marketbridge/pkg/fulfillment"
	"github.com/dmitrymomot/marketbridge/pkg/logger"
	"github.com/dmitrymomot/marketbridge/pkg/marketplace"
	"github.com/dmitrymomot/marketbridge/pkg/staging"
)

type handlers struct {
	svc   *fulfillment.Service
	stage staging.Cache
	log   *slog.Logger
}

// landing runs the purchase/configuration flow. The marketplace sends the
// buyer here with the purchase token in the "token" query parameter.
func (h *handlers) landing(w http.ResponseWriter, r *http.Request) {
	params := fulfillment.LandingParams{
		Token:            r.URL.Query().Get("token"),
		SubscriptionName: r.URL.Query().Get("name"),
		PlanID:           r.URL.Query().Get("plan"),
	}

	result, err := h.svc.Landing(r.Context(), params)
	if err != nil {
		h.log.ErrorContext(r.Context(), "landing flow failed", slog.Any("error", err))
		http.Error(w, "landing failed", http.StatusInternalServerError)
		return
	}

	switch result.Outcome {
	case fulfillment.LandingRedirect:
		http.Redirect(w, r, result.RedirectURL, http.StatusFound)
	case fulfillment.LandingSetupRequired:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("publisher setup is not complete"))
	default:
		http.NotFound(w, r)
	}
}

// webhook receives marketplace lifecycle notifications. The marketplace
// retries on any non-2xx, so the status mapping is strict: 404 for
// subscriptions the bridge does not know (stop retrying), 400 for payloads
// that can never parse, 500 for everything that may succeed on retry.
func (h *handlers) webhook(w http.ResponseWriter, r *http.Request) {
	var notification marketplace.WebhookNotification
	if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	ctx := logger.WithSubscriptionID(r.Context(), notification.SubscriptionID)
	ctx = logger.WithOperationID(ctx, notification.OperationID)

	if err := h.svc.HandleNotification(ctx, &notification); err != nil {
		switch {
		case errors.Is(err, fulfillment.ErrSubscriptionNotKnown):
			http.NotFound(w, r)
		case errors.Is(err, fulfillment.ErrInvalidNotification):
			http.Error(w, "invalid notification", http.StatusBadRequest)
		default:
			http.Error(w, "notification processing failed", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

// stagedSubscription exchanges a scoped staging token for the subscription
// snapshot, so the configuration page renders without calling the
// marketplace again.
func (h *handlers) stagedSubscription(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	sub, err := h.stage.GetSubscriptionByToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, staging.ErrNotStaged) {
			http.NotFound(w, r)
			return
		}
		h.log.ErrorContext(r.Context(), "staged subscription lookup failed", slog.Any("error", err))
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(sub); err != nil {
		h.log.ErrorContext(r.Context(), "failed to encode staged subscription", slog.Any("error", err))
	}
}

package events_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/marketbridge/pkg/events"
)

func senderConfig(endpoint string) events.SenderConfig {
	return events.SenderConfig{
		EndpointURL:     endpoint,
		SigningSecret:   "test-secret",
		Timeout:         5 * time.Second,
		RetryAttempts:   3,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}
}

func testEvent() *events.Event {
	return &events.Event{
		ID:        uuid.MustParse("11111111-2222-3333-4444-555555555555"),
		Type:      events.TypeSubscriptionCancelled,
		Version:   events.SchemaVersionHierarchical,
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Data:      events.FlattenedData{"subscriptionId": "sub-1"},
	}
}

func TestNewWebhookSender(t *testing.T) {
	t.Parallel()

	t.Run("missing endpoint", func(t *testing.T) {
		t.Parallel()

		_, err := events.NewWebhookSender(events.SenderConfig{SigningSecret: "s"})
		assert.ErrorIs(t, err, events.ErrInvalidConfiguration)
	})

	t.Run("non-http scheme", func(t *testing.T) {
		t.Parallel()

		cfg := senderConfig("ftp://example.test/hook")
		_, err := events.NewWebhookSender(cfg)
		assert.ErrorIs(t, err, events.ErrInvalidConfiguration)
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Parallel()

		cfg := senderConfig("https://example.test/hook")
		cfg.SigningSecret = ""
		_, err := events.NewWebhookSender(cfg)
		assert.ErrorIs(t, err, events.ErrInvalidConfiguration)
	})
}

func TestWebhookSenderPublish(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("signed delivery", func(t *testing.T) {
		t.Parallel()

		var (
			gotBody      []byte
			gotSignature string
			gotTimestamp string
			gotID        string
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			gotBody, _ = io.ReadAll(r.Body)
			gotSignature = r.Header.Get("X-Webhook-Signature")
			gotTimestamp = r.Header.Get("X-Webhook-Timestamp")
			gotID = r.Header.Get("X-Webhook-ID")
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		sender, err := events.NewWebhookSender(senderConfig(srv.URL))
		require.NoError(t, err)
		require.NoError(t, sender.Publish(ctx, testEvent()))

		require.NotEmpty(t, gotTimestamp)
		_, err = uuid.Parse(gotID)
		assert.NoError(t, err)
		assert.Contains(t, string(gotBody), `"eventType":"SubscriptionCancelled"`)

		h := hmac.New(sha256.New, []byte("test-secret"))
		fmt.Fprintf(h, "%s.%s", gotTimestamp, gotBody)
		assert.Equal(t, hex.EncodeToString(h.Sum(nil)), gotSignature)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		sender, err := events.NewWebhookSender(senderConfig(srv.URL))
		require.NoError(t, err)

		require.NoError(t, sender.Publish(ctx, testEvent()))
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("retry exhaustion", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		sender, err := events.NewWebhookSender(senderConfig(srv.URL))
		require.NoError(t, err)

		err = sender.Publish(ctx, testEvent())
		assert.ErrorIs(t, err, events.ErrPublishFailed)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("client error fails immediately", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnprocessableEntity)
		}))
		defer srv.Close()

		sender, err := events.NewWebhookSender(senderConfig(srv.URL))
		require.NoError(t, err)

		err = sender.Publish(ctx, testEvent())
		assert.ErrorIs(t, err, events.ErrPublishFailed)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("nil event", func(t *testing.T) {
		t.Parallel()

		sender, err := events.NewWebhookSender(senderConfig("https://example.test/hook"))
		require.NoError(t, err)
		assert.ErrorIs(t, sender.Publish(ctx, nil), events.ErrPublishFailed)
	})
}

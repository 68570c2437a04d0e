package events

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// SenderConfig configures outbound webhook delivery of events.
type SenderConfig struct {
	EndpointURL   string        `env:"EVENT_WEBHOOK_URL,required"`
	SigningSecret string        `env:"EVENT_WEBHOOK_SECRET,required"`
	Timeout       time.Duration `env:"EVENT_WEBHOOK_TIMEOUT" envDefault:"30s"`

	RetryAttempts   int           `env:"EVENT_WEBHOOK_RETRY_ATTEMPTS" envDefault:"3"`
	InitialInterval time.Duration `env:"EVENT_WEBHOOK_RETRY_INTERVAL" envDefault:"1s"`
	MaxInterval     time.Duration `env:"EVENT_WEBHOOK_RETRY_MAX_INTERVAL" envDefault:"30s"`
}

// WebhookSender publishes events to a downstream integration endpoint as
// signed JSON POSTs. Signatures are HMAC-SHA256 over "timestamp.payload",
// timestamp-bound to prevent replay.
type WebhookSender struct {
	client *http.Client
	config SenderConfig
}

// NewWebhookSender creates a webhook-backed Publisher.
func NewWebhookSender(cfg SenderConfig, opts ...SenderOption) (*WebhookSender, error) {
	if cfg.EndpointURL == "" {
		return nil, fmt.Errorf("%w: endpoint URL is required", ErrInvalidConfiguration)
	}
	if u, err := url.Parse(cfg.EndpointURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: endpoint URL must be a valid http(s) URL", ErrInvalidConfiguration)
	}
	if cfg.SigningSecret == "" {
		return nil, fmt.Errorf("%w: signing secret is required", ErrInvalidConfiguration)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	s := &WebhookSender{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		config: cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SenderOption configures the webhook sender.
type SenderOption func(*WebhookSender)

// WithSenderHTTPClient overrides the underlying http.Client, used in tests.
func WithSenderHTTPClient(client *http.Client) SenderOption {
	return func(s *WebhookSender) {
		if client != nil {
			s.client = client
		}
	}
}

// Publish delivers the event with bounded exponential backoff on transient
// failures (connection errors, HTTP 429/5xx). 4xx responses other than 429
// fail immediately: the payload will not become acceptable by retrying.
func (s *WebhookSender) Publish(ctx context.Context, event *Event) error {
	if event == nil {
		return fmt.Errorf("%w: event is required", ErrPublishFailed)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: marshal: %w", ErrPublishFailed, err)
	}

	attempts := s.config.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.backoffInterval(attempt - 1)):
			}
		}

		retryable, err := s.deliver(ctx, payload)
		if err == nil {
			return nil
		}
		if !retryable {
			return errors.Join(ErrPublishFailed, err)
		}
		lastErr = err
	}

	return errors.Join(ErrPublishFailed, lastErr)
}

func (s *WebhookSender) deliver(ctx context.Context, payload []byte) (retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.EndpointURL, bytes.NewReader(payload))
	if err != nil {
		return false, err
	}

	timestamp := time.Now().Unix()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", s.sign(timestamp, payload))
	req.Header.Set("X-Webhook-Timestamp", strconv.FormatInt(timestamp, 10))
	req.Header.Set("X-Webhook-ID", uuid.NewString())

	resp, err := s.client.Do(req)
	if err != nil {
		return true, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return false, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return true, fmt.Errorf("endpoint returned %d", resp.StatusCode)
	default:
		return false, fmt.Errorf("endpoint returned %d", resp.StatusCode)
	}
}

// sign computes HMAC-SHA256 over "timestamp.payload", matching the signature
// scheme downstream integrations already verify.
func (s *WebhookSender) sign(timestamp int64, payload []byte) string {
	h := hmac.New(sha256.New, []byte(s.config.SigningSecret))
	fmt.Fprintf(h, "%d.%s", timestamp, payload)
	return hex.EncodeToString(h.Sum(nil))
}

func (s *WebhookSender) backoffInterval(retry int) time.Duration {
	initial := s.config.InitialInterval
	if initial == 0 {
		initial = time.Second
	}
	max := s.config.MaxInterval
	if max == 0 {
		max = 30 * time.Second
	}

	interval := float64(initial) * math.Pow(2, float64(retry-1))
	interval *= 1 + (rand.Float64()*0.4 - 0.2)
	if interval > float64(max) {
		interval = float64(max)
	}
	return time.Duration(interval)
}

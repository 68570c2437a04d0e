package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config holds configuration for the live marketplace fulfillment API client.
type Config struct {
	BaseURL     string        `env:"MARKETPLACE_API_URL,required"`
	APIVersion  string        `env:"MARKETPLACE_API_VERSION" envDefault:"2018-08-31"`
	BearerToken string        `env:"MARKETPLACE_API_TOKEN,required"`
	Timeout     time.Duration `env:"MARKETPLACE_API_TIMEOUT" envDefault:"30s"`

	// Bounded retry on transient failures (HTTP 429 and 5xx). All other
	// failures propagate immediately.
	RetryAttempts   int           `env:"MARKETPLACE_RETRY_ATTEMPTS" envDefault:"3"`
	InitialInterval time.Duration `env:"MARKETPLACE_RETRY_INTERVAL" envDefault:"1s"`
	MaxInterval     time.Duration `env:"MARKETPLACE_RETRY_MAX_INTERVAL" envDefault:"30s"`
}

// HTTPClient is the live implementation of Client over the marketplace
// fulfillment REST API.
type HTTPClient struct {
	client *http.Client
	config Config
}

// NewHTTPClient creates a live marketplace client. Fails fast on missing
// required configuration rather than surfacing auth errors at request time.
func NewHTTPClient(cfg Config, opts ...ClientOption) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if cfg.BearerToken == "" {
		return nil, ErrMissingCredentials
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, errors.Join(ErrMissingBaseURL, err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	c := &HTTPClient{
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
		opt(c)
	}
	return c, nil
}

// ClientOption configures the HTTP client.
type ClientOption func(*HTTPClient)

// WithHTTPClient overrides the underlying http.Client, used in tests and for
// custom transports.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		if client != nil {
			c.client = client
		}
	}
}

func (c *HTTPClient) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	if subscriptionID == "" {
		return nil, fmt.Errorf("%w: subscription ID is required", ErrInvalidArgument)
	}

	var sub Subscription
	err := c.do(ctx, http.MethodGet, "/subscriptions/"+url.PathEscape(subscriptionID), nil, nil, &sub)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (c *HTTPClient) ResolveToken(ctx context.Context, token string) (*Subscription, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", ErrInvalidArgument)
	}

	// The marketplace resolves a purchase token passed via header, not body.
	headers := map[string]string{"x-marketplace-token": token}

	var resolved struct {
		ID               string       `json:"id"`
		SubscriptionName string       `json:"subscriptionName"`
		OfferID          string       `json:"offerId"`
		PlanID           string       `json:"planId"`
		Quantity         *int64       `json:"quantity"`
		Subscription     Subscription `json:"subscription"`
	}
	if err := c.do(ctx, http.MethodPost, "/subscriptions/resolve", headers, nil, &resolved); err != nil {
		return nil, err
	}

	sub := resolved.Subscription
	if sub.ID == "" {
		sub.ID = resolved.ID
	}
	if sub.Name == "" {
		sub.Name = resolved.SubscriptionName
	}
	if sub.OfferID == "" {
		sub.OfferID = resolved.OfferID
	}
	if sub.PlanID == "" {
		sub.PlanID = resolved.PlanID
	}
	if sub.SeatQuantity == nil {
		sub.SeatQuantity = resolved.Quantity
	}
	return &sub, nil
}

func (c *HTTPClient) ActivateSubscription(ctx context.Context, subscriptionID, planID string) error {
	if subscriptionID == "" {
		return fmt.Errorf("%w: subscription ID is required", ErrInvalidArgument)
	}

	body := map[string]any{"planId": planID}
	return c.do(ctx, http.MethodPost, "/subscriptions/"+url.PathEscape(subscriptionID)+"/activate", nil, body, nil)
}

func (c *HTTPClient) GetOperation(ctx context.Context, subscriptionID, operationID string) (*SubscriptionOperation, error) {
	if subscriptionID == "" || operationID == "" {
		return nil, fmt.Errorf("%w: subscription ID and operation ID are required", ErrInvalidArgument)
	}

	var op SubscriptionOperation
	path := "/subscriptions/" + url.PathEscape(subscriptionID) + "/operations/" + url.PathEscape(operationID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &op); err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return nil, errors.Join(ErrOperationNotFound, err)
		}
		return nil, err
	}
	if op.Action != "" {
		// Classification failures are the verifier's concern, not transport's.
		if mapped, err := ParseAction(op.Action); err == nil {
			op.Type = mapped
		}
	}
	return &op, nil
}

func (c *HTTPClient) UpdateOperationStatus(ctx context.Context, subscriptionID, operationID string, success bool) error {
	if subscriptionID == "" || operationID == "" {
		return fmt.Errorf("%w: subscription ID and operation ID are required", ErrInvalidArgument)
	}

	status := "Success"
	if !success {
		status = "Failure"
	}
	path := "/subscriptions/" + url.PathEscape(subscriptionID) + "/operations/" + url.PathEscape(operationID)
	return c.do(ctx, http.MethodPatch, path, nil, map[string]any{"status": status}, nil)
}

// do executes one API call with bounded exponential backoff on HTTP 429/5xx.
// Non-transient failures and context cancellation propagate immediately.
func (c *HTTPClient) do(ctx context.Context, method, path string, headers map[string]string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marketplace: failed to marshal request body: %w", err)
		}
	}

	attempts := c.config.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoffInterval(attempt - 1)):
			}
		}

		retryable, err := c.doOnce(ctx, method, path, headers, payload, out)
		if err == nil {
			return nil
		}
		if !retryable {
			return err
		}
		lastErr = err
	}

	return errors.Join(ErrMarketplaceUnavailable, lastErr)
}

func (c *HTTPClient) doOnce(ctx context.Context, method, path string, headers map[string]string, payload []byte, out any) (retryable bool, err error) {
	endpoint := strings.TrimSuffix(c.config.BaseURL, "/") + path + "?api-version=" + url.QueryEscape(c.config.APIVersion)

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return false, fmt.Errorf("marketplace: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.BearerToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// Network-level failures are transient from the caller's perspective.
		return true, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return false, nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, fmt.Errorf("marketplace: failed to decode response: %w", err)
		}
		return false, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, ErrSubscriptionNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return true, fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(respBody)))
	default:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return false, fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
}

// backoffInterval computes the delay before retry n with jitter to avoid
// synchronized retry storms across bridge instances.
func (c *HTTPClient) backoffInterval(retry int) time.Duration {
	initial := c.config.InitialInterval
	if initial == 0 {
		initial = time.Second
	}
	max := c.config.MaxInterval
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

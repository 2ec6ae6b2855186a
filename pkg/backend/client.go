// Package backend implements the JSON/HTTP client for the app backend's
// billing operations: receipt validation, subscription status, interval
// switches, checkout sessions and billing-portal sessions. It satisfies
// the narrow interfaces the engine packages declare (receipt.API,
// status.Fetcher, hosted.Backend, hosted.PortalBackend, planswitch.API),
// so the same client wires the whole engine in on-device deployments.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/billingkit/pkg/billing"
)

var (
	ErrMissingBaseURL = errors.New("backend: base URL is required")
	ErrRequestFailed  = errors.New("backend: request failed")
)

// Config holds backend client configuration.
type Config struct {
	BaseURL string        `env:"BILLING_BACKEND_URL,required"`
	Token   string        `env:"BILLING_BACKEND_TOKEN"`
	Timeout time.Duration `env:"BILLING_BACKEND_TIMEOUT" envDefault:"30s"`
}

// APIError is a non-2xx backend response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %d %s", e.Status, e.Message)
}

// Client talks to the app backend's billing endpoints.
type Client struct {
	baseURL *url.URL
	token   string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom http.Client. Nil clients are ignored.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient creates a backend client from config.
func NewClient(config Config, opts ...ClientOption) (*Client, error) {
	if config.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}

	base, err := url.Parse(strings.TrimRight(config.BaseURL, "/"))
	if err != nil {
		return nil, errors.Join(ErrMissingBaseURL, err)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		baseURL: base,
		token:   config.Token,
		http:    &http.Client{Timeout: timeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// ValidateReceipt submits a transaction identifier and returns the
// canonical subscription record.
func (c *Client) ValidateReceipt(ctx context.Context, transactionID string) (*billing.SubscriptionRecord, error) {
	var record billing.SubscriptionRecord
	err := c.do(ctx, http.MethodPost, "/billing/receipts/validate",
		map[string]string{"transaction_id": transactionID}, &record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetSubscriptionStatus fetches the canonical subscription record.
func (c *Client) GetSubscriptionStatus(ctx context.Context) (*billing.SubscriptionRecord, error) {
	var record billing.SubscriptionRecord
	if err := c.do(ctx, http.MethodGet, "/billing/subscription", nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// SwitchPlan changes the billing interval; the backend applies proration
// and returns the updated record.
func (c *Client) SwitchPlan(ctx context.Context, interval billing.BillingInterval) (*billing.SubscriptionRecord, error) {
	var record billing.SubscriptionRecord
	err := c.do(ctx, http.MethodPost, "/billing/subscription/switch",
		map[string]string{"interval": string(interval)}, &record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// CreateCheckoutSession asks the backend for payment-UI secrets and a
// provisional subscription identifier.
func (c *Client) CreateCheckoutSession(ctx context.Context, interval billing.BillingInterval) (*billing.CheckoutSession, error) {
	var session billing.CheckoutSession
	err := c.do(ctx, http.MethodPost, "/billing/checkout/session",
		map[string]string{"interval": string(interval)}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateBillingPortalSession returns a subscription-management link.
func (c *Client) CreateBillingPortalSession(ctx context.Context, returnURL string) (*billing.PortalSession, error) {
	body := map[string]string{}
	if returnURL != "" {
		body["return_url"] = returnURL
	}

	var session billing.PortalSession
	if err := c.do(ctx, http.MethodPost, "/billing/portal/session", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Join(ErrRequestFailed, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return errors.Join(ErrRequestFailed, err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Join(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var msg struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&msg); err == nil {
			if msg.Error != "" {
				apiErr.Message = msg.Error
			} else {
				apiErr.Message = msg.Message
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Join(ErrRequestFailed, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

package hosted

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/billingkit/pkg/billing"
	"github.com/dmitrymomot/billingkit/pkg/logger"
)

var (
	ErrCheckoutSession = errors.New("hosted: creating checkout session failed")
	ErrPaymentFailed   = errors.New("hosted: payment UI reported failure")
	ErrNoPortal        = errors.New("hosted: no billing portal backend configured")
)

// Backend creates checkout sessions. In on-device deployments this is the
// app backend's REST API; server-side it can be a provider SDK directly.
type Backend interface {
	CreateCheckoutSession(ctx context.Context, interval billing.BillingInterval) (*billing.CheckoutSession, error)
}

// PortalBackend creates billing-portal sessions for subscription
// management.
type PortalBackend interface {
	CreateBillingPortalSession(ctx context.Context, returnURL string) (*billing.PortalSession, error)
}

// PresentResult reports how the externally supplied payment UI ended.
type PresentResult int

const (
	PresentCompleted PresentResult = iota
	PresentCancelled
	PresentFailed
)

// Presenter drives the payment UI handle to completion. The engine does
// not render payment UI itself; the embedding application supplies the
// presenter.
type Presenter interface {
	Present(ctx context.Context, session *billing.CheckoutSession) (PresentResult, error)
}

// Refresher forces a fresh status fetch, bypassing the staleness window.
// status.Cache satisfies it.
type Refresher interface {
	Refresh(ctx context.Context) (*billing.SubscriptionRecord, error)
}

// Client is the hosted-checkout billing provider.
type Client struct {
	backend   Backend
	presenter Presenter
	refresher Refresher
	portal    PortalBackend
	log       *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the diagnostics logger. Nil loggers are ignored.
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithPortal attaches a billing-portal backend.
func WithPortal(portal PortalBackend) ClientOption {
	return func(c *Client) {
		if portal != nil {
			c.portal = portal
		}
	}
}

// NewClient creates a hosted checkout client. Panics on nil dependencies
// to fail fast during initialization.
func NewClient(backend Backend, presenter Presenter, refresher Refresher, opts ...ClientOption) *Client {
	if backend == nil {
		panic("hosted: Backend is required")
	}
	if presenter == nil {
		panic("hosted: Presenter is required")
	}
	if refresher == nil {
		panic("hosted: Refresher is required")
	}

	c := &Client{
		backend:   backend,
		presenter: presenter,
		refresher: refresher,
		log:       slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Platform reports the hosted billing platform.
func (c *Client) Platform() billing.Platform {
	return billing.PlatformHosted
}

// StartSubscription creates a checkout session, drives the payment UI and,
// on success, forces a fresh status fetch. A cancelled payment UI returns
// billing.ErrUserCancelled before any status mutation is attempted.
func (c *Client) StartSubscription(ctx context.Context, interval billing.BillingInterval) (*billing.SubscriptionRecord, error) {
	session, err := c.backend.CreateCheckoutSession(ctx, interval)
	if err != nil {
		return nil, errors.Join(ErrCheckoutSession, billing.ErrNetwork, err)
	}

	result, err := c.presenter.Present(ctx, session)
	if err != nil {
		return nil, errors.Join(ErrPaymentFailed, err)
	}

	switch result {
	case PresentCancelled:
		return nil, billing.ErrUserCancelled
	case PresentFailed:
		return nil, ErrPaymentFailed
	}

	c.log.InfoContext(ctx, "hosted checkout completed, refreshing status",
		logger.Component("billing.hosted"),
		logger.Interval(string(interval)))

	// The backend's record write is webhook-driven and asynchronous; the
	// local cache cannot be trusted yet.
	return c.refresher.Refresh(ctx)
}

// BillingPortal returns a pre-authenticated subscription-management link.
func (c *Client) BillingPortal(ctx context.Context, returnURL string) (*billing.PortalSession, error) {
	if c.portal == nil {
		return nil, ErrNoPortal
	}
	return c.portal.CreateBillingPortalSession(ctx, returnURL)
}

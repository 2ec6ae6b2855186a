package native

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/billingkit/pkg/billing"
	"github.com/dmitrymomot/billingkit/pkg/lifecycle"
	"github.com/dmitrymomot/billingkit/pkg/logger"
)

var (
	ErrConnect  = errors.New("native: store connection failed")
	ErrPurchase = errors.New("native: store purchase failed")
	ErrRestore  = errors.New("native: listing available purchases failed")
)

// Validator submits a resolved transaction identifier to the backend.
// receipt.Validator satisfies it.
type Validator interface {
	Validate(ctx context.Context, transactionID string) (*billing.SubscriptionRecord, error)
}

// Client is the native-store billing provider.
type Client struct {
	sdk       StoreSDK
	catalog   billing.ProductCatalog
	validator Validator
	settler   *Settler
	log       *slog.Logger

	mu        sync.Mutex
	connected bool
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

// WithSettler overrides the settler, e.g. to share one across clients.
func WithSettler(settler *Settler) ClientOption {
	return func(c *Client) {
		if settler != nil {
			c.settler = settler
		}
	}
}

// NewClient creates a native billing client. Panics on nil dependencies or
// an invalid catalog to fail fast during initialization.
func NewClient(sdk StoreSDK, catalog billing.ProductCatalog, validator Validator, opts ...ClientOption) *Client {
	if sdk == nil {
		panic("native: StoreSDK is required")
	}
	if validator == nil {
		panic("native: Validator is required")
	}
	if err := catalog.Validate(); err != nil {
		panic(fmt.Sprintf("native: %v", err))
	}

	c := &Client{
		sdk:       sdk,
		catalog:   catalog,
		validator: validator,
		log:       slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.settler == nil {
		c.settler = NewSettler(sdk, WithSettlerLogger(c.log))
	}

	return c
}

// Platform reports the native billing platform.
func (c *Client) Platform() billing.Platform {
	return billing.PlatformNative
}

// connect establishes the store connection once. The connected flag is
// never reset: the SDK connection survives for the process lifetime.
func (c *Client) connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	if err := c.sdk.Connect(ctx); err != nil {
		return errors.Join(ErrConnect, err)
	}

	c.connected = true
	return nil
}

// StartSubscription purchases the subscription for an interval through the
// store and validates the resulting transaction with the backend.
//
// If neither the purchase response nor the latest-transaction query yields
// a transaction identifier, the attempt is classified as user cancellation
// and no validation call is made. After a successful validation the
// transaction is acknowledged; acknowledgment failure is logged and
// otherwise ignored since the entitlement is already recorded server-side.
func (c *Client) StartSubscription(ctx context.Context, interval billing.BillingInterval) (*billing.SubscriptionRecord, error) {
	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	sku, err := c.catalog.SKU(interval)
	if err != nil {
		return nil, err
	}

	// Catalog probe is diagnostics only: a miss is logged but never
	// aborts the purchase, the store itself decides whether the SKU is
	// purchasable.
	if products, err := c.sdk.FetchProducts(ctx, []string{sku}); err != nil {
		c.log.WarnContext(ctx, "product catalog probe failed",
			logger.Component("billing.native"),
			logger.SKU(sku),
			logger.Error(err))
	} else if len(products) == 0 {
		c.log.WarnContext(ctx, "product missing from store catalog",
			logger.Component("billing.native"),
			logger.SKU(sku))
	}

	// The machine mirrors this method's control flow; transitions are
	// fired at the points the flow commits to them.
	txn := lifecycle.NewMachine()

	purchase, err := c.sdk.RequestPurchase(ctx, sku)
	if err != nil {
		_ = txn.Fire(lifecycle.EventProviderFailed)
		return nil, errors.Join(ErrPurchase, err)
	}

	transactionID := ""
	if purchase != nil {
		transactionID = purchase.ID
	}
	if transactionID == "" {
		if latest, err := c.sdk.LatestTransaction(ctx, sku); err != nil {
			c.log.WarnContext(ctx, "latest-transaction fallback failed",
				logger.Component("billing.native"),
				logger.SKU(sku),
				logger.Error(err))
		} else if latest != nil {
			transactionID = latest.ID
		}
	}
	if transactionID == "" {
		// No purchase object from either path is indistinguishable from
		// the user dismissing the purchase sheet.
		_ = txn.Fire(lifecycle.EventCancel)
		return nil, billing.ErrUserCancelled
	}

	_ = txn.Fire(lifecycle.EventProviderReturned)
	_ = txn.Fire(lifecycle.EventBeginValidation)

	record, err := c.validator.Validate(ctx, transactionID)
	if err != nil {
		_ = txn.Fire(lifecycle.EventValidationFailed)
		return nil, err
	}

	_ = txn.Fire(lifecycle.EventValidationSucceeded)
	_ = txn.Fire(lifecycle.EventBeginAcknowledge)

	if err := c.settler.Finish(ctx, transactionID); err != nil {
		c.log.WarnContext(ctx, "transaction acknowledgment failed",
			logger.Component("billing.native"),
			logger.TransactionID(transactionID),
			logger.Error(err))
	}
	_ = txn.Fire(lifecycle.EventAcknowledged)

	return record, nil
}

// Restore validates the first purchase on the device matching a known SKU.
// Zero matches returns billing.ErrNoMatchingPurchase without any
// validation call.
func (c *Client) Restore(ctx context.Context) (*billing.SubscriptionRecord, error) {
	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	purchases, err := c.sdk.AvailablePurchases(ctx)
	if err != nil {
		return nil, errors.Join(ErrRestore, err)
	}

	known := c.catalog.KnownSKUs()
	for _, purchase := range purchases {
		if slices.Contains(known, purchase.SKU) {
			return c.validator.Validate(ctx, purchase.ID)
		}
	}

	return nil, billing.ErrNoMatchingPurchase
}

// SettlePending flushes transactions left unacknowledged by a prior
// session. Run at app start.
func (c *Client) SettlePending(ctx context.Context) (int, error) {
	if err := c.connect(ctx); err != nil {
		return 0, err
	}
	return c.settler.SettlePending(ctx)
}

package status

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/billingkit/pkg/billing"
	"github.com/dmitrymomot/billingkit/pkg/entitlement"
	"github.com/dmitrymomot/billingkit/pkg/logger"
)

// Fetcher retrieves the canonical subscription record from the backend.
type Fetcher interface {
	GetSubscriptionStatus(ctx context.Context) (*billing.SubscriptionRecord, error)
}

// Store holds the cached record. Implementations decide the staleness
// bound; a Get after the bound reports a miss, never a stale record.
type Store interface {
	// Get returns the cached record and whether a fresh one was present.
	Get(ctx context.Context) (*billing.SubscriptionRecord, bool, error)

	// Set replaces the cached record wholesale.
	Set(ctx context.Context, record *billing.SubscriptionRecord) error

	// Invalidate drops the cached record.
	Invalidate(ctx context.Context) error
}

// Cache is the staleness-bound reader over a Fetcher and a Store.
type Cache struct {
	fetcher Fetcher
	store   Store
	log     *slog.Logger
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithLogger sets the diagnostics logger. Nil loggers are ignored.
func WithLogger(log *slog.Logger) CacheOption {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

// NewCache creates a Cache. Panics if fetcher or store is nil to fail fast
// during initialization.
func NewCache(fetcher Fetcher, store Store, opts ...CacheOption) *Cache {
	if fetcher == nil {
		panic("status: Fetcher is required")
	}
	if store == nil {
		panic("status: Store is required")
	}

	c := &Cache{
		fetcher: fetcher,
		store:   store,
		log:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Current returns the subscription record, serving from the cache while it
// is fresh and fetching otherwise. Fetch failures are wrapped in
// billing.ErrNetwork.
func (c *Cache) Current(ctx context.Context) (*billing.SubscriptionRecord, error) {
	record, ok, err := c.store.Get(ctx)
	if err != nil {
		// A broken store is a cache problem, not a status problem: fall
		// through to a fetch so the caller still gets an answer.
		c.log.WarnContext(ctx, "status cache read failed",
			logger.Component("billing.status"),
			logger.Error(err))
	} else if ok {
		return record, nil
	}

	return c.Refresh(ctx)
}

// Refresh bypasses the cache, fetches a fresh record and replaces the
// cached one wholesale. Callers use it after any successful validation,
// hosted checkout or plan switch, when the staleness window cannot be
// trusted.
func (c *Cache) Refresh(ctx context.Context) (*billing.SubscriptionRecord, error) {
	record, err := c.fetcher.GetSubscriptionStatus(ctx)
	if err != nil {
		return nil, errors.Join(billing.ErrNetwork, err)
	}

	if err := c.store.Set(ctx, record); err != nil {
		// The fetched record is still authoritative; a cache write
		// failure only costs the next read a fetch.
		c.log.WarnContext(ctx, "status cache write failed",
			logger.Component("billing.status"),
			logger.Error(err))
	}

	return record, nil
}

// Replace stores a record obtained elsewhere (e.g. returned by receipt
// validation) wholesale, without a fetch.
func (c *Cache) Replace(ctx context.Context, record *billing.SubscriptionRecord) error {
	return c.store.Set(ctx, record)
}

// Invalidate drops the cached record so the next read fetches.
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.store.Invalidate(ctx)
}

// Entitlement fetches the current record and derives the entitlement view
// in one step, translating a failed fetch into the fail-closed flag. It
// never returns an error: on failure the view simply denies access.
func (c *Cache) Entitlement(ctx context.Context, cachedPlan billing.Plan) entitlement.View {
	record, err := c.Current(ctx)
	return entitlement.Derive(cachedPlan, record, err != nil)
}

// Package planswitch coordinates mid-cycle billing-interval changes
// (monthly to annual and back). Switching is only possible on the hosted
// billing platform; native store subscriptions can only be changed through
// the store's own subscription-management surface, so a switch attempted
// there fails with billing.ErrProviderUnavailable without contacting the
// backend and the caller redirects the user to the store.
//
// The backend applies proration immediately: it charges the difference on
// upgrade and credits it on downgrade. The coordinator surfaces a
// direction-based explanation rather than computing the exact proration
// amount; the backend's interface does not expose the computed amount.
package planswitch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/billingkit/pkg/billing"
	"github.com/dmitrymomot/billingkit/pkg/logger"
)

var ErrSwitchFailed = errors.New("planswitch: interval switch failed")

// API is the backend boundary for interval switches.
type API interface {
	SwitchPlan(ctx context.Context, interval billing.BillingInterval) (*billing.SubscriptionRecord, error)
}

// Sink receives the updated record for wholesale replacement of the local
// cache. status.Cache satisfies it.
type Sink interface {
	Replace(ctx context.Context, record *billing.SubscriptionRecord) error
}

// Result is the outcome of a successful switch.
type Result struct {
	Record *billing.SubscriptionRecord

	// Explanation is a human-readable description of the proration the
	// backend applied, chosen by switch direction.
	Explanation string
}

// Coordinator performs interval switches on the hosted platform.
type Coordinator struct {
	platform billing.Platform
	api      API
	sink     Sink
	log      *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithSink sets the record sink updated after each successful switch.
func WithSink(sink Sink) Option {
	return func(c *Coordinator) {
		if sink != nil {
			c.sink = sink
		}
	}
}

// WithLogger sets the diagnostics logger. Nil loggers are ignored.
func WithLogger(log *slog.Logger) Option {
	return func(c *Coordinator) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a Coordinator for the active billing platform. Panics on a
// nil API to fail fast during initialization.
func New(platform billing.Platform, api API, opts ...Option) *Coordinator {
	if api == nil {
		panic("planswitch: API is required")
	}

	c := &Coordinator{
		platform: platform,
		api:      api,
		log:      slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Switch changes the billing interval. current is the interval of the
// active subscription, used only to choose the explanation direction.
func (c *Coordinator) Switch(ctx context.Context, current, target billing.BillingInterval) (*Result, error) {
	if target != billing.IntervalMonthly && target != billing.IntervalAnnual {
		return nil, errors.Join(billing.ErrUnknownInterval, fmt.Errorf("interval %q", target))
	}

	if c.platform != billing.PlatformHosted {
		// Native subscriptions cannot be changed in-app; the backend is
		// never contacted.
		return nil, errors.Join(billing.ErrProviderUnavailable,
			fmt.Errorf("interval switch not available on %s billing", c.platform))
	}

	record, err := c.api.SwitchPlan(ctx, target)
	if err != nil {
		return nil, errors.Join(ErrSwitchFailed, err)
	}

	if c.sink != nil {
		if err := c.sink.Replace(ctx, record); err != nil {
			c.log.WarnContext(ctx, "failed to cache switched record",
				logger.Component("planswitch"),
				logger.Error(err))
		}
	}

	c.log.InfoContext(ctx, "billing interval switched",
		logger.Component("planswitch"),
		logger.Interval(string(target)))

	return &Result{
		Record:      record,
		Explanation: explanation(current, target),
	}, nil
}

// explanation picks the proration message by switch direction. The exact
// amount is computed by the backend and not exposed here.
func explanation(current, target billing.BillingInterval) string {
	switch {
	case current == billing.IntervalMonthly && target == billing.IntervalAnnual:
		return "You were charged the prorated difference for the annual plan. Your subscription now renews yearly."
	case current == billing.IntervalAnnual && target == billing.IntervalMonthly:
		return "The unused part of your annual plan was credited to your account. Your subscription now renews monthly."
	default:
		return "Your billing interval was updated."
	}
}

package billing

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/logger"
)

// Gateway fronts the platform-specific purchase providers with a uniform
// error taxonomy. The provider is fixed at construction time; platform
// dispatch is a static capability lookup, not a per-call decision.
//
// The gateway does not enforce mutual exclusion between purchase attempts.
// A purchase flow is a single logical in-flight operation and the UI layer
// is responsible for disabling re-entrant triggers while one is
// outstanding.
type Gateway struct {
	provider Provider
	log      *slog.Logger
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithGatewayLogger sets the diagnostics logger. Nil loggers are ignored.
func WithGatewayLogger(log *slog.Logger) GatewayOption {
	return func(g *Gateway) {
		if log != nil {
			g.log = log
		}
	}
}

// NewGateway creates a Gateway over the provider selected for this
// platform. Panics on a nil provider to fail fast during initialization.
func NewGateway(provider Provider, opts ...GatewayOption) *Gateway {
	if provider == nil {
		panic("billing: Provider is required")
	}

	g := &Gateway{
		provider: provider,
		log:      slog.Default(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Platform reports which billing backend is active.
func (g *Gateway) Platform() Platform {
	return g.provider.Platform()
}

// StartSubscription delegates to the selected provider and classifies its
// result into the shared taxonomy. Cancellations are logged at debug level
// only; they are normal flow, not errors.
func (g *Gateway) StartSubscription(ctx context.Context, interval BillingInterval) (*SubscriptionRecord, error) {
	attemptID := uuid.NewString()

	g.log.DebugContext(ctx, "starting subscription purchase",
		logger.Component("billing.gateway"),
		logger.AttemptID(attemptID),
		logger.Interval(string(interval)),
		logger.PlatformName(string(g.provider.Platform())))

	record, err := g.provider.StartSubscription(ctx, interval)
	if err != nil {
		err = Classify(err)
		if IsUserCancelled(err) {
			g.log.DebugContext(ctx, "subscription purchase cancelled by user",
				logger.Component("billing.gateway"),
				logger.AttemptID(attemptID))
		} else {
			g.log.ErrorContext(ctx, "subscription purchase failed",
				logger.Component("billing.gateway"),
				logger.AttemptID(attemptID),
				logger.Error(err))
		}
		return nil, err
	}

	g.log.InfoContext(ctx, "subscription purchase completed",
		logger.Component("billing.gateway"),
		logger.AttemptID(attemptID),
		logger.PlanName(string(record.Plan)),
		logger.Interval(string(record.CurrentInterval)))

	return record, nil
}

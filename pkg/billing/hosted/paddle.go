package hosted

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"

	"github.com/dmitrymomot/billingkit/pkg/billing"
)

var (
	ErrMissingPaddleKey         = errors.New("hosted: paddle API key is required")
	ErrInvalidPaddleEnvironment = errors.New("hosted: invalid paddle environment")
	ErrNoPortalURL              = errors.New("hosted: no portal URL returned from paddle")
)

// PaddleConfig holds configuration for the Paddle portal source.
type PaddleConfig struct {
	APIKey      string `env:"PADDLE_API_KEY,required"`
	Environment string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
}

// PaddlePortal implements PortalBackend against Paddle's customer portal,
// for deployments whose hosted subscriptions are billed through Paddle.
// Paddle portal sessions have no return-URL concept; the argument is
// ignored.
type PaddlePortal struct {
	client          *paddle.SDK
	resolveCustomer CustomerResolver
}

// NewPaddlePortal creates a Paddle portal source. The resolver must return
// the Paddle customer ID (ctm_xxx).
func NewPaddlePortal(config PaddleConfig, resolver CustomerResolver) (*PaddlePortal, error) {
	if config.APIKey == "" {
		return nil, ErrMissingPaddleKey
	}
	if resolver == nil {
		return nil, ErrNoCustomer
	}

	var client *paddle.SDK
	var err error

	switch strings.ToLower(config.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(config.APIKey)
	case "production", "":
		client, err = paddle.New(config.APIKey)
	default:
		return nil, errors.Join(ErrInvalidPaddleEnvironment, fmt.Errorf("environment %q", config.Environment))
	}
	if err != nil {
		return nil, fmt.Errorf("create paddle client: %w", err)
	}

	return &PaddlePortal{
		client:          client,
		resolveCustomer: resolver,
	}, nil
}

// CreateBillingPortalSession returns the customer portal overview link.
func (p *PaddlePortal) CreateBillingPortalSession(ctx context.Context, _ string) (*billing.PortalSession, error) {
	customerID, _, err := p.resolveCustomer(ctx)
	if err != nil || customerID == "" {
		return nil, errors.Join(ErrNoCustomer, err)
	}

	session, err := p.client.CustomerPortalSessionsClient.CreateCustomerPortalSession(ctx, &paddle.CreateCustomerPortalSessionRequest{
		CustomerID: customerID,
	})
	if err != nil {
		return nil, fmt.Errorf("create paddle portal session: %w", err)
	}

	if session.URLs.General.Overview == "" {
		return nil, ErrNoPortalURL
	}

	return &billing.PortalSession{
		URL: session.URLs.General.Overview,
		// Paddle portal links expire after roughly a day.
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}, nil
}

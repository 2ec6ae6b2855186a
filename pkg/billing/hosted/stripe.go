package hosted

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/ephemeralkey"
	"github.com/stripe/stripe-go/v82/subscription"

	"github.com/dmitrymomot/billingkit/pkg/billing"
)

var (
	ErrMissingStripeKey   = errors.New("hosted: stripe secret key is required")
	ErrMissingStripePrice = errors.New("hosted: stripe price IDs are required")
	ErrNoPaymentSecret    = errors.New("hosted: no payment secret returned from stripe")
	ErrNoCustomer         = errors.New("hosted: stripe customer could not be resolved")
)

// StripeConfig holds configuration for the Stripe session source.
type StripeConfig struct {
	SecretKey       string `env:"STRIPE_SECRET_KEY,required"`
	MonthlyPriceID  string `env:"STRIPE_PRICE_MONTHLY,required"`
	AnnualPriceID   string `env:"STRIPE_PRICE_ANNUAL,required"`
	PortalReturnURL string `env:"STRIPE_PORTAL_RETURN_URL"`
}

// CustomerResolver maps the current caller to an existing Stripe customer.
// When nil, CreateCheckoutSession creates a fresh customer per session and
// portal sessions are unavailable.
type CustomerResolver func(ctx context.Context) (customerID string, email string, err error)

// StripeBackend implements Backend and PortalBackend against Stripe. The
// checkout session carries the secrets a mobile payment sheet needs: the
// customer, an ephemeral key, and the client secret of the incomplete
// subscription's first invoice.
type StripeBackend struct {
	config          StripeConfig
	resolveCustomer CustomerResolver

	// Stripe calls are injected for testability.
	createCustomer      func(*stripe.CustomerParams) (*stripe.Customer, error)
	createEphemeralKey  func(*stripe.EphemeralKeyParams) (*stripe.EphemeralKey, error)
	createSubscription  func(*stripe.SubscriptionParams) (*stripe.Subscription, error)
	createPortalSession func(*stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error)
}

// StripeOption configures a StripeBackend.
type StripeOption func(*StripeBackend)

// WithCustomerResolver sets the resolver for existing Stripe customers.
func WithCustomerResolver(resolver CustomerResolver) StripeOption {
	return func(b *StripeBackend) {
		if resolver != nil {
			b.resolveCustomer = resolver
		}
	}
}

// NewStripeBackend creates a Stripe-backed session source.
func NewStripeBackend(config StripeConfig, opts ...StripeOption) (*StripeBackend, error) {
	if config.SecretKey == "" {
		return nil, ErrMissingStripeKey
	}
	if config.MonthlyPriceID == "" || config.AnnualPriceID == "" {
		return nil, ErrMissingStripePrice
	}

	stripe.Key = config.SecretKey

	b := &StripeBackend{
		config:              config,
		createCustomer:      customer.New,
		createEphemeralKey:  ephemeralkey.New,
		createSubscription:  subscription.New,
		createPortalSession: portalsession.New,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

func (b *StripeBackend) priceID(interval billing.BillingInterval) (string, error) {
	switch interval {
	case billing.IntervalMonthly:
		return b.config.MonthlyPriceID, nil
	case billing.IntervalAnnual:
		return b.config.AnnualPriceID, nil
	default:
		return "", errors.Join(billing.ErrUnknownInterval, fmt.Errorf("interval %q", interval))
	}
}

// CreateCheckoutSession provisions an incomplete subscription and returns
// the payment-UI secrets. The subscription stays incomplete until the
// payment sheet confirms the payment; Stripe's webhook then flips the
// canonical record, which is why callers refetch status instead of
// trusting this response.
func (b *StripeBackend) CreateCheckoutSession(ctx context.Context, interval billing.BillingInterval) (*billing.CheckoutSession, error) {
	priceID, err := b.priceID(interval)
	if err != nil {
		return nil, err
	}

	customerID, email := "", ""
	if b.resolveCustomer != nil {
		customerID, email, err = b.resolveCustomer(ctx)
		if err != nil {
			return nil, errors.Join(ErrNoCustomer, err)
		}
	}

	if customerID == "" {
		custParams := &stripe.CustomerParams{}
		custParams.Context = ctx
		custParams.IdempotencyKey = stripe.String(uuid.NewString())
		if email != "" {
			custParams.Email = stripe.String(email)
		}

		cust, err := b.createCustomer(custParams)
		if err != nil {
			return nil, fmt.Errorf("create stripe customer: %w", err)
		}
		customerID = cust.ID
	}

	keyParams := &stripe.EphemeralKeyParams{
		Customer:      stripe.String(customerID),
		StripeVersion: stripe.String(stripe.APIVersion),
	}
	keyParams.Context = ctx

	key, err := b.createEphemeralKey(keyParams)
	if err != nil {
		return nil, fmt.Errorf("create stripe ephemeral key: %w", err)
	}

	subParams := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
		PaymentSettings: &stripe.SubscriptionPaymentSettingsParams{
			SaveDefaultPaymentMethod: stripe.String(string(stripe.SubscriptionPaymentSettingsSaveDefaultPaymentMethodOnSubscription)),
		},
	}
	subParams.Context = ctx
	subParams.IdempotencyKey = stripe.String(uuid.NewString())
	subParams.AddExpand("latest_invoice.confirmation_secret")

	sub, err := b.createSubscription(subParams)
	if err != nil {
		return nil, fmt.Errorf("create stripe subscription: %w", err)
	}

	paymentSecret := ""
	if sub.LatestInvoice != nil && sub.LatestInvoice.ConfirmationSecret != nil {
		paymentSecret = sub.LatestInvoice.ConfirmationSecret.ClientSecret
	}
	if paymentSecret == "" {
		return nil, ErrNoPaymentSecret
	}

	return &billing.CheckoutSession{
		CustomerID:         customerID,
		EphemeralKeySecret: key.Secret,
		PaymentSecret:      paymentSecret,
		SubscriptionID:     sub.ID,
	}, nil
}

// CreateBillingPortalSession returns a pre-authenticated Stripe customer
// portal link. Requires a customer resolver.
func (b *StripeBackend) CreateBillingPortalSession(ctx context.Context, returnURL string) (*billing.PortalSession, error) {
	if b.resolveCustomer == nil {
		return nil, ErrNoCustomer
	}

	customerID, _, err := b.resolveCustomer(ctx)
	if err != nil || customerID == "" {
		return nil, errors.Join(ErrNoCustomer, err)
	}

	if returnURL == "" {
		returnURL = b.config.PortalReturnURL
	}

	params := &stripe.BillingPortalSessionParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx
	if returnURL != "" {
		params.ReturnURL = stripe.String(returnURL)
	}

	session, err := b.createPortalSession(params)
	if err != nil {
		return nil, fmt.Errorf("create stripe portal session: %w", err)
	}

	return &billing.PortalSession{URL: session.URL}, nil
}

package billing

import "time"

// SubscriptionStatus is the backend-reported state of a subscription.
type SubscriptionStatus string

const (
	StatusTrialing    SubscriptionStatus = "trialing"
	StatusActive      SubscriptionStatus = "active"
	StatusGracePeriod SubscriptionStatus = "in_grace_period"
	StatusExpired     SubscriptionStatus = "expired"
	StatusRevoked     SubscriptionStatus = "revoked"
	StatusFree        SubscriptionStatus = "free"

	// StatusUnknown covers records fetched before the backend's status
	// write is visible. Entitlement derivation heals it to active for
	// paid plans.
	StatusUnknown SubscriptionStatus = ""
)

// Plan identifies the subscription tier.
type Plan string

const (
	PlanFree     Plan = "free"
	PlanPro      Plan = "pro"
	PlanLifetime Plan = "lifetime"
)

// IsPaid reports whether the plan grants paid access when healthy.
func (p Plan) IsPaid() bool {
	return p == PlanPro || p == PlanLifetime
}

// BillingInterval is the renewal cadence of a paid subscription.
type BillingInterval string

const (
	IntervalMonthly BillingInterval = "monthly"
	IntervalAnnual  BillingInterval = "annual"
	IntervalNone    BillingInterval = ""
)

// Platform identifies which billing backend owns a subscription.
type Platform string

const (
	PlatformNative Platform = "native"
	PlatformHosted Platform = "hosted"
)

// SubscriptionRecord is the server-authoritative subscription state,
// fetched on demand. Records are replaced wholesale on every successful
// fetch or receipt validation and never merged field-by-field, which keeps
// concurrent readers away from partially-updated state.
type SubscriptionRecord struct {
	Status              SubscriptionStatus `json:"status"`
	Plan                Plan               `json:"plan"`
	CurrentInterval     BillingInterval    `json:"current_interval,omitempty"`
	TrialEndsAt         *time.Time         `json:"trial_ends_at,omitempty"`
	CurrentPeriodEnd    *time.Time         `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd   bool               `json:"cancel_at_period_end,omitempty"`
	Platform            Platform           `json:"billing_platform,omitempty"`
	PlatformEnvironment string             `json:"platform_environment,omitempty"`
}

func (r *SubscriptionRecord) IsTrialing() bool {
	return r.Status == StatusTrialing
}

func (r *SubscriptionRecord) IsActive() bool {
	return r.Status == StatusActive
}

func (r *SubscriptionRecord) IsGracePeriod() bool {
	return r.Status == StatusGracePeriod
}

// TrialDaysRemainingAt returns the number of days remaining in the trial at
// a given time. Returns 0 if no trial end is known or the trial has ended.
// Useful for testing with fixed time values.
func (r *SubscriptionRecord) TrialDaysRemainingAt(now time.Time) int {
	if r.TrialEndsAt == nil {
		return 0
	}

	remaining := r.TrialEndsAt.Sub(now)
	if remaining <= 0 {
		return 0
	}

	// Round up partial days for better UX
	days := remaining.Hours() / 24
	return int(days + 0.5)
}

// TrialDaysRemaining returns the number of days remaining in the trial.
func (r *SubscriptionRecord) TrialDaysRemaining() int {
	return r.TrialDaysRemainingAt(time.Now().UTC())
}

// CheckoutSession carries the payment-UI secrets returned by the backend
// for a hosted checkout. Completion of the payment UI does not itself yield
// a validated SubscriptionRecord; the backend updates the canonical record
// asynchronously and the caller must force a fresh status fetch afterwards.
type CheckoutSession struct {
	CustomerID         string `json:"customer_id"`
	EphemeralKeySecret string `json:"ephemeral_key_secret"`
	PaymentSecret      string `json:"payment_secret"`
	SubscriptionID     string `json:"subscription_id"`
}

// PortalSession is a pre-authenticated link to the billing provider's
// subscription-management surface.
type PortalSession struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

package billing

import "context"

// Provider is one purchase backend: the native on-device store or the
// hosted web checkout. Exactly one provider is selected at process start
// based on platform capability; the choice is never revisited per call.
//
// StartSubscription drives the provider-specific purchase to completion and
// returns the canonical subscription record once the backend has recorded
// the entitlement. A user dismissing the provider's purchase UI returns
// ErrUserCancelled before any network validation call is made.
type Provider interface {
	Platform() Platform
	StartSubscription(ctx context.Context, interval BillingInterval) (*SubscriptionRecord, error)
}

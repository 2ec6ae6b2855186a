// Package entitlement derives the access decision for premium features
// from the reconciled billing signals: the locally cached plan, the latest
// server-reported subscription record, and whether the latest status fetch
// failed.
//
// Derive is pure and synchronous with no suspension points, so it is safe
// to invoke on every UI render or poll tick. The derivation fails closed:
// when the subscription record could not be fetched, access resolves to
// denied regardless of any cached plan, so stale local data can never grant
// access.
package entitlement

import (
	"time"

	"github.com/dmitrymomot/billingkit/pkg/billing"
)

// View is the derived entitlement state. It is recomputed on every read
// and never stored.
type View struct {
	HasProAccess bool
	IsTrial      bool
	IsGrace      bool
	IsExpired    bool

	TrialEndsAt      *time.Time
	CurrentPeriodEnd *time.Time
	ExpiredOn        *time.Time
}

// Derive computes the entitlement view.
//
// The plan resolves from the record when present, else from the cached
// plan, else free. A paid plan with a missing or "free" status is healed to
// active: that covers the window where a purchase is cached locally before
// the backend's status write is visible. hasFetchError forces HasProAccess
// to false last, after all other resolution.
func Derive(cachedPlan billing.Plan, record *billing.SubscriptionRecord, hasFetchError bool) View {
	plan := cachedPlan
	if record != nil && record.Plan != "" {
		plan = record.Plan
	}
	if plan == "" {
		plan = billing.PlanFree
	}
	hasPaidPlan := plan.IsPaid()

	status := billing.StatusUnknown
	if record != nil {
		status = record.Status
	}
	if hasPaidPlan && (status == billing.StatusUnknown || status == billing.StatusFree) {
		status = billing.StatusActive
	}

	view := View{
		IsGrace:   status == billing.StatusGracePeriod,
		IsExpired: status == billing.StatusExpired || status == billing.StatusRevoked,
		IsTrial:   status == billing.StatusTrialing,
	}

	if record != nil {
		if record.TrialEndsAt != nil {
			view.IsTrial = true
			view.TrialEndsAt = record.TrialEndsAt
		}
		view.CurrentPeriodEnd = record.CurrentPeriodEnd
		if view.IsExpired {
			view.ExpiredOn = record.CurrentPeriodEnd
		}
	}

	view.HasProAccess = hasPaidPlan && !view.IsGrace && !view.IsExpired
	if hasFetchError {
		view.HasProAccess = false
	}

	return view
}

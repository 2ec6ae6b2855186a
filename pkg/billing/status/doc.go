// Package status maintains the staleness-bound cache of the canonical
// subscription record. Reads are served from a short-lived cache; any flow
// that just changed the subscription (a successful validation, a completed
// hosted checkout, a plan switch) must call Refresh or Replace instead of
// relying on the staleness window, otherwise the UI can show stale "free"
// state immediately after a successful purchase.
//
// The record is always replaced wholesale, never merged field-by-field.
// Failed fetches surface as billing.ErrNetwork so entitlement derivation
// fails closed.
package status

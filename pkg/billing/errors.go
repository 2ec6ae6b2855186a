package billing

import (
	"errors"
	"fmt"
)

var (
	// ErrUserCancelled is the silent sentinel: the user dismissed a
	// purchase sheet or payment UI. Normal flow, never surfaced as an
	// alert and never logged as an error.
	ErrUserCancelled = errors.New("billing: purchase cancelled by user")

	// ErrProviderUnavailable means the selected provider cannot service
	// this request on this platform (e.g. a plan switch attempted while
	// on native billing).
	ErrProviderUnavailable = errors.New("billing: provider unavailable on this platform")

	// ErrValidationFailed means the backend rejected the receipt.
	// Surfaced with a retry affordance.
	ErrValidationFailed = errors.New("billing: receipt validation failed")

	// ErrNoMatchingPurchase means restore found nothing to restore.
	// Surfaced as an informational message, not an error banner.
	ErrNoMatchingPurchase = errors.New("billing: no matching purchase to restore")

	// ErrNetwork means a status fetch failed. Entitlement resolves to
	// no access (fail-closed) with a retry affordance.
	ErrNetwork = errors.New("billing: network error")

	// ErrAcknowledgeFailed means a store transaction could not be
	// acknowledged. Logged only; never surfaced and never reverses a
	// successful validation.
	ErrAcknowledgeFailed = errors.New("billing: transaction acknowledgment failed")

	ErrUnknownInterval = errors.New("billing: unknown billing interval")
	ErrInvalidCatalog  = errors.New("billing: invalid product catalog")
)

// Kind classifies a billing failure for UI handling. It is determined once
// at the Gateway boundary rather than by inspecting provider errors ad hoc.
type Kind string

const (
	KindUserCancelled       Kind = "user_cancelled"
	KindProviderUnavailable Kind = "provider_unavailable"
	KindValidationFailed    Kind = "validation_failed"
	KindNoMatchingPurchase  Kind = "no_matching_purchase"
	KindNetwork             Kind = "network_error"
	KindAcknowledgeFailed   Kind = "acknowledge_failed"

	// KindUnknown passes unrecognized provider errors through with their
	// original message for diagnostics.
	KindUnknown Kind = "unknown"
)

// Error is a classified billing failure. Provider-specific errors are
// reclassified into the taxonomy at the Gateway boundary before reaching
// UI code; the original error remains reachable through Unwrap.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("billing [%s]: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var kindSentinels = map[Kind]error{
	KindUserCancelled:       ErrUserCancelled,
	KindProviderUnavailable: ErrProviderUnavailable,
	KindValidationFailed:    ErrValidationFailed,
	KindNoMatchingPurchase:  ErrNoMatchingPurchase,
	KindNetwork:             ErrNetwork,
	KindAcknowledgeFailed:   ErrAcknowledgeFailed,
}

// Classify wraps err in an Error with the Kind matching the first taxonomy
// sentinel found in its chain. Already-classified errors are returned
// unchanged; unrecognized errors are wrapped with KindUnknown so their
// original message survives for diagnostics. Returns nil for nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return err
	}

	for kind, sentinel := range kindSentinels {
		if errors.Is(err, sentinel) {
			return &Error{Kind: kind, Err: err}
		}
	}

	return &Error{Kind: KindUnknown, Err: err}
}

// KindOf returns the classified kind of err, classifying on the fly if the
// Gateway boundary has not done so yet. Returns an empty Kind for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}

	for kind, sentinel := range kindSentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}

	return KindUnknown
}

// IsUserCancelled reports whether err is the silent cancellation path.
// Callers use it to suppress alerts without inspecting error text.
func IsUserCancelled(err error) bool {
	return KindOf(err) == KindUserCancelled
}

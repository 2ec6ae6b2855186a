// Package lifecycle models the state machine of a single purchase
// transaction. A transaction is created at purchase request and destroyed
// at settlement or cancellation; it is never partially updated.
//
// The transition table:
//
//	Requested         → ProviderReturned | Cancelled | ProviderError
//	ProviderReturned  → Validating
//	Validating        → Validated | ValidationFailed
//	ValidationFailed  → Validating            (retryable)
//	Validated         → Acknowledging
//	Acknowledging     → Settled
//
// A user cancellation and an unresolved transaction identifier both
// terminate at Cancelled without ever reaching Validating, so no partial
// or speculative entitlement request is ever sent.
package lifecycle

import (
	"errors"
	"fmt"
)

// State is the position of a purchase transaction in its lifecycle.
type State string

const (
	StateRequested        State = "requested"
	StateProviderReturned State = "provider_returned"
	StateValidating       State = "validating"
	StateValidated        State = "validated"
	StateAcknowledging    State = "acknowledging"
	StateSettled          State = "settled"
	StateValidationFailed State = "validation_failed"
	StateCancelled        State = "cancelled"
	StateProviderError    State = "provider_error"
)

// Event triggers a state transition.
type Event string

const (
	EventProviderReturned    Event = "provider_returned"
	EventCancel              Event = "cancel"
	EventProviderFailed      Event = "provider_failed"
	EventBeginValidation     Event = "begin_validation"
	EventValidationSucceeded Event = "validation_succeeded"
	EventValidationFailed    Event = "validation_failed"
	EventBeginAcknowledge    Event = "begin_acknowledge"
	EventAcknowledged        Event = "acknowledged"
)

var ErrTerminalState = errors.New("lifecycle: transaction is in a terminal state")

// InvalidTransitionError reports an event that is not valid in the current
// state.
type InvalidTransitionError struct {
	State State
	Event Event
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("lifecycle: no transition from state %q for event %q", e.State, e.Event)
}

// IsInvalidTransition reports whether err is an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var e *InvalidTransitionError
	return errors.As(err, &e)
}

var transitions = map[State]map[Event]State{
	StateRequested: {
		EventProviderReturned: StateProviderReturned,
		EventCancel:           StateCancelled,
		EventProviderFailed:   StateProviderError,
	},
	StateProviderReturned: {
		EventBeginValidation: StateValidating,
	},
	StateValidating: {
		EventValidationSucceeded: StateValidated,
		EventValidationFailed:    StateValidationFailed,
	},
	StateValidationFailed: {
		EventBeginValidation: StateValidating,
	},
	StateValidated: {
		EventBeginAcknowledge: StateAcknowledging,
	},
	StateAcknowledging: {
		// Acknowledgment failure still settles: the backend record is
		// authoritative once validation succeeded, so the device-side
		// queue state never reverses entitlement.
		EventAcknowledged: StateSettled,
	},
}

// Machine tracks one purchase transaction through its lifecycle, starting
// at Requested. The zero value is not usable; create with NewMachine.
type Machine struct {
	current State
}

// NewMachine returns a machine positioned at StateRequested.
func NewMachine() *Machine {
	return &Machine{current: StateRequested}
}

// Current returns the machine's current state.
func (m *Machine) Current() State {
	return m.current
}

// IsTerminal reports whether the transaction has reached a final state.
func (m *Machine) IsTerminal() bool {
	switch m.current {
	case StateSettled, StateCancelled, StateProviderError:
		return true
	}
	return false
}

// CanFire reports whether event is valid in the current state.
func (m *Machine) CanFire(event Event) bool {
	_, ok := transitions[m.current][event]
	return ok
}

// Fire applies event, advancing the machine. Firing any event in a
// terminal state returns ErrTerminalState; an event with no transition
// from the current state returns an InvalidTransitionError.
func (m *Machine) Fire(event Event) error {
	if m.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrTerminalState, m.current)
	}

	next, ok := transitions[m.current][event]
	if !ok {
		return &InvalidTransitionError{State: m.current, Event: event}
	}

	m.current = next
	return nil
}

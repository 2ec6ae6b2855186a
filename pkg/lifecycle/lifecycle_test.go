package lifecycle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/pkg/lifecycle"
)

func TestMachine_HappyPath(t *testing.T) {
	t.Parallel()

	m := lifecycle.NewMachine()
	assert.Equal(t, lifecycle.StateRequested, m.Current())

	for _, event := range []lifecycle.Event{
		lifecycle.EventProviderReturned,
		lifecycle.EventBeginValidation,
		lifecycle.EventValidationSucceeded,
		lifecycle.EventBeginAcknowledge,
		lifecycle.EventAcknowledged,
	} {
		require.NoError(t, m.Fire(event), "event %s", event)
	}

	assert.Equal(t, lifecycle.StateSettled, m.Current())
	assert.True(t, m.IsTerminal())
}

func TestMachine_CancellationNeverReachesValidating(t *testing.T) {
	t.Parallel()

	m := lifecycle.NewMachine()
	require.NoError(t, m.Fire(lifecycle.EventCancel))

	assert.Equal(t, lifecycle.StateCancelled, m.Current())
	assert.True(t, m.IsTerminal())
	// A cancelled transaction can never start validating.
	assert.ErrorIs(t, m.Fire(lifecycle.EventBeginValidation), lifecycle.ErrTerminalState)
}

func TestMachine_ValidationFailureIsRetryable(t *testing.T) {
	t.Parallel()

	m := lifecycle.NewMachine()
	require.NoError(t, m.Fire(lifecycle.EventProviderReturned))
	require.NoError(t, m.Fire(lifecycle.EventBeginValidation))
	require.NoError(t, m.Fire(lifecycle.EventValidationFailed))

	assert.Equal(t, lifecycle.StateValidationFailed, m.Current())
	assert.False(t, m.IsTerminal())

	require.NoError(t, m.Fire(lifecycle.EventBeginValidation))
	assert.Equal(t, lifecycle.StateValidating, m.Current())
}

func TestMachine_InvalidTransition(t *testing.T) {
	t.Parallel()

	m := lifecycle.NewMachine()
	err := m.Fire(lifecycle.EventAcknowledged)

	require.Error(t, err)
	assert.True(t, lifecycle.IsInvalidTransition(err))

	var invalid *lifecycle.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, lifecycle.StateRequested, invalid.State)
	assert.Equal(t, lifecycle.EventAcknowledged, invalid.Event)

	// Failed fire leaves the state untouched.
	assert.Equal(t, lifecycle.StateRequested, m.Current())
}

func TestMachine_CanFire(t *testing.T) {
	t.Parallel()

	m := lifecycle.NewMachine()
	assert.True(t, m.CanFire(lifecycle.EventCancel))
	assert.True(t, m.CanFire(lifecycle.EventProviderReturned))
	assert.False(t, m.CanFire(lifecycle.EventValidationSucceeded))
}

func TestMachine_ProviderError(t *testing.T) {
	t.Parallel()

	m := lifecycle.NewMachine()
	require.NoError(t, m.Fire(lifecycle.EventProviderFailed))
	assert.Equal(t, lifecycle.StateProviderError, m.Current())
	assert.True(t, m.IsTerminal())
}

package billing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/pkg/billing"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Platform() billing.Platform {
	args := m.Called()
	return args.Get(0).(billing.Platform)
}

func (m *mockProvider) StartSubscription(ctx context.Context, interval billing.BillingInterval) (*billing.SubscriptionRecord, error) {
	args := m.Called(ctx, interval)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.SubscriptionRecord), args.Error(1)
}

func TestNewGateway_RequiresProvider(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		billing.NewGateway(nil)
	})
}

func TestGateway_Platform(t *testing.T) {
	t.Parallel()

	provider := new(mockProvider)
	provider.On("Platform").Return(billing.PlatformHosted)

	gateway := billing.NewGateway(provider)
	assert.Equal(t, billing.PlatformHosted, gateway.Platform())
}

func TestGateway_StartSubscription(t *testing.T) {
	t.Parallel()

	t.Run("delegates and returns record", func(t *testing.T) {
		t.Parallel()

		record := &billing.SubscriptionRecord{
			Plan:            billing.PlanPro,
			Status:          billing.StatusActive,
			CurrentInterval: billing.IntervalAnnual,
		}

		provider := new(mockProvider)
		provider.On("Platform").Return(billing.PlatformNative)
		provider.On("StartSubscription", mock.Anything, billing.IntervalAnnual).Return(record, nil)

		gateway := billing.NewGateway(provider)
		got, err := gateway.StartSubscription(context.Background(), billing.IntervalAnnual)

		require.NoError(t, err)
		assert.Equal(t, record, got)
		provider.AssertExpectations(t)
	})

	t.Run("classifies provider errors", func(t *testing.T) {
		t.Parallel()

		provider := new(mockProvider)
		provider.On("Platform").Return(billing.PlatformNative)
		provider.On("StartSubscription", mock.Anything, billing.IntervalMonthly).
			Return(nil, billing.ErrUserCancelled)

		gateway := billing.NewGateway(provider)
		_, err := gateway.StartSubscription(context.Background(), billing.IntervalMonthly)

		var classified *billing.Error
		require.ErrorAs(t, err, &classified)
		assert.Equal(t, billing.KindUserCancelled, classified.Kind)
	})

	t.Run("unrecognized errors pass through with message", func(t *testing.T) {
		t.Parallel()

		provider := new(mockProvider)
		provider.On("Platform").Return(billing.PlatformNative)
		provider.On("StartSubscription", mock.Anything, billing.IntervalMonthly).
			Return(nil, errors.New("SDK error 4711"))

		gateway := billing.NewGateway(provider)
		_, err := gateway.StartSubscription(context.Background(), billing.IntervalMonthly)

		assert.Equal(t, billing.KindUnknown, billing.KindOf(err))
		assert.Contains(t, err.Error(), "SDK error 4711")
	})
}

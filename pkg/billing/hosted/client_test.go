package hosted_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/pkg/billing"
	"github.com/dmitrymomot/billingkit/pkg/billing/hosted"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) CreateCheckoutSession(ctx context.Context, interval billing.BillingInterval) (*billing.CheckoutSession, error) {
	args := m.Called(ctx, interval)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.CheckoutSession), args.Error(1)
}

type mockPresenter struct {
	mock.Mock
}

func (m *mockPresenter) Present(ctx context.Context, session *billing.CheckoutSession) (hosted.PresentResult, error) {
	args := m.Called(ctx, session)
	return args.Get(0).(hosted.PresentResult), args.Error(1)
}

type mockRefresher struct {
	mock.Mock
}

func (m *mockRefresher) Refresh(ctx context.Context) (*billing.SubscriptionRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.SubscriptionRecord), args.Error(1)
}

type mockPortal struct {
	mock.Mock
}

func (m *mockPortal) CreateBillingPortalSession(ctx context.Context, returnURL string) (*billing.PortalSession, error) {
	args := m.Called(ctx, returnURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PortalSession), args.Error(1)
}

func testSession() *billing.CheckoutSession {
	return &billing.CheckoutSession{
		CustomerID:         "cus_123",
		EphemeralKeySecret: "ek_test",
		PaymentSecret:      "pi_secret",
		SubscriptionID:     "sub_123",
	}
}

func TestClient_StartSubscription(t *testing.T) {
	t.Parallel()

	t.Run("success forces a fresh status fetch", func(t *testing.T) {
		t.Parallel()

		backend := new(mockBackend)
		presenter := new(mockPresenter)
		refresher := new(mockRefresher)

		session := testSession()
		backend.On("CreateCheckoutSession", mock.Anything, billing.IntervalAnnual).Return(session, nil)
		presenter.On("Present", mock.Anything, session).Return(hosted.PresentCompleted, nil)
		refresher.On("Refresh", mock.Anything).Return(&billing.SubscriptionRecord{
			Plan:            billing.PlanPro,
			Status:          billing.StatusActive,
			CurrentInterval: billing.IntervalAnnual,
			Platform:        billing.PlatformHosted,
		}, nil).Once()

		client := hosted.NewClient(backend, presenter, refresher)
		record, err := client.StartSubscription(context.Background(), billing.IntervalAnnual)

		require.NoError(t, err)
		assert.Equal(t, billing.PlanPro, record.Plan)
		assert.Equal(t, billing.IntervalAnnual, record.CurrentInterval)
		refresher.AssertExpectations(t)
	})

	t.Run("cancelled payment UI short-circuits before any refetch", func(t *testing.T) {
		t.Parallel()

		backend := new(mockBackend)
		presenter := new(mockPresenter)
		refresher := new(mockRefresher)

		backend.On("CreateCheckoutSession", mock.Anything, billing.IntervalMonthly).Return(testSession(), nil)
		presenter.On("Present", mock.Anything, mock.Anything).Return(hosted.PresentCancelled, nil)

		client := hosted.NewClient(backend, presenter, refresher)
		_, err := client.StartSubscription(context.Background(), billing.IntervalMonthly)

		assert.ErrorIs(t, err, billing.ErrUserCancelled)
		refresher.AssertNotCalled(t, "Refresh", mock.Anything)
	})

	t.Run("failed payment UI is surfaced", func(t *testing.T) {
		t.Parallel()

		backend := new(mockBackend)
		presenter := new(mockPresenter)
		refresher := new(mockRefresher)

		backend.On("CreateCheckoutSession", mock.Anything, billing.IntervalMonthly).Return(testSession(), nil)
		presenter.On("Present", mock.Anything, mock.Anything).Return(hosted.PresentFailed, nil)

		client := hosted.NewClient(backend, presenter, refresher)
		_, err := client.StartSubscription(context.Background(), billing.IntervalMonthly)

		assert.ErrorIs(t, err, hosted.ErrPaymentFailed)
		refresher.AssertNotCalled(t, "Refresh", mock.Anything)
	})

	t.Run("session creation failure maps to network error", func(t *testing.T) {
		t.Parallel()

		backend := new(mockBackend)
		presenter := new(mockPresenter)
		refresher := new(mockRefresher)

		backend.On("CreateCheckoutSession", mock.Anything, billing.IntervalMonthly).
			Return(nil, errors.New("503"))

		client := hosted.NewClient(backend, presenter, refresher)
		_, err := client.StartSubscription(context.Background(), billing.IntervalMonthly)

		assert.ErrorIs(t, err, billing.ErrNetwork)
		presenter.AssertNotCalled(t, "Present", mock.Anything, mock.Anything)
	})
}

func TestClient_Platform(t *testing.T) {
	t.Parallel()

	client := hosted.NewClient(new(mockBackend), new(mockPresenter), new(mockRefresher))
	assert.Equal(t, billing.PlatformHosted, client.Platform())
}

func TestClient_BillingPortal(t *testing.T) {
	t.Parallel()

	t.Run("without portal backend", func(t *testing.T) {
		t.Parallel()

		client := hosted.NewClient(new(mockBackend), new(mockPresenter), new(mockRefresher))
		_, err := client.BillingPortal(context.Background(), "")
		assert.ErrorIs(t, err, hosted.ErrNoPortal)
	})

	t.Run("with portal backend", func(t *testing.T) {
		t.Parallel()

		portal := new(mockPortal)
		portal.On("CreateBillingPortalSession", mock.Anything, "app://settings").
			Return(&billing.PortalSession{URL: "https://portal.example.com/s/abc"}, nil)

		client := hosted.NewClient(new(mockBackend), new(mockPresenter), new(mockRefresher),
			hosted.WithPortal(portal))

		session, err := client.BillingPortal(context.Background(), "app://settings")
		require.NoError(t, err)
		assert.Equal(t, "https://portal.example.com/s/abc", session.URL)
	})
}

package native_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/pkg/billing"
	"github.com/dmitrymomot/billingkit/pkg/billing/native"
)

func TestSettler_FinishIsIdempotent(t *testing.T) {
	t.Parallel()

	sdk := new(mockSDK)
	sdk.On("FinishTransaction", mock.Anything, "txn_1").Return(nil).Once()

	settler := native.NewSettler(sdk)

	require.NoError(t, settler.Finish(context.Background(), "txn_1"))
	// Second call is a no-op, not an error; Once() above catches a
	// second store call.
	require.NoError(t, settler.Finish(context.Background(), "txn_1"))

	sdk.AssertExpectations(t)
}

func TestSettler_FinishEmptyIDIsNoop(t *testing.T) {
	t.Parallel()

	sdk := new(mockSDK)
	settler := native.NewSettler(sdk)

	require.NoError(t, settler.Finish(context.Background(), ""))
	sdk.AssertNotCalled(t, "FinishTransaction", mock.Anything, mock.Anything)
}

func TestSettler_FailedFinishCanBeRetried(t *testing.T) {
	t.Parallel()

	sdk := new(mockSDK)
	sdk.On("FinishTransaction", mock.Anything, "txn_1").Return(errors.New("queue busy")).Once()
	sdk.On("FinishTransaction", mock.Anything, "txn_1").Return(nil).Once()

	settler := native.NewSettler(sdk)

	err := settler.Finish(context.Background(), "txn_1")
	assert.ErrorIs(t, err, billing.ErrAcknowledgeFailed)

	// The failure did not mark the transaction finished.
	require.NoError(t, settler.Finish(context.Background(), "txn_1"))
	sdk.AssertExpectations(t)
}

func TestSettler_SettlePendingIsFaultIsolated(t *testing.T) {
	t.Parallel()

	sdk := new(mockSDK)
	sdk.On("PendingTransactions", mock.Anything).Return([]native.Transaction{
		{ID: "txn_1"},
		{ID: "txn_2"},
		{ID: "txn_3"},
	}, nil)
	sdk.On("FinishTransaction", mock.Anything, "txn_1").Return(nil).Once()
	sdk.On("FinishTransaction", mock.Anything, "txn_2").Return(errors.New("poisoned")).Once()
	sdk.On("FinishTransaction", mock.Anything, "txn_3").Return(nil).Once()

	settler := native.NewSettler(sdk)
	settled, err := settler.SettlePending(context.Background())

	// The middle failure neither stopped the batch nor masked the
	// remaining acknowledgments.
	assert.Equal(t, 2, settled)
	assert.ErrorIs(t, err, billing.ErrAcknowledgeFailed)
	sdk.AssertExpectations(t)
}

func TestSettler_SettlePendingEmptyQueue(t *testing.T) {
	t.Parallel()

	sdk := new(mockSDK)
	sdk.On("PendingTransactions", mock.Anything).Return([]native.Transaction{}, nil)

	settler := native.NewSettler(sdk)
	settled, err := settler.SettlePending(context.Background())

	require.NoError(t, err)
	assert.Zero(t, settled)
}

func TestSettler_SettlePendingListFailure(t *testing.T) {
	t.Parallel()

	sdk := new(mockSDK)
	sdk.On("PendingTransactions", mock.Anything).Return(nil, errors.New("store offline"))

	settler := native.NewSettler(sdk)
	_, err := settler.SettlePending(context.Background())

	assert.ErrorIs(t, err, billing.ErrAcknowledgeFailed)
}

func TestClient_SettlePending(t *testing.T) {
	t.Parallel()

	sdk := new(mockSDK)
	validator := new(mockValidator)

	sdk.On("Connect", mock.Anything).Return(nil).Once()
	sdk.On("PendingTransactions", mock.Anything).Return([]native.Transaction{{ID: "txn_old"}}, nil)
	sdk.On("FinishTransaction", mock.Anything, "txn_old").Return(nil)

	client := native.NewClient(sdk, testCatalog, validator)
	settled, err := client.SettlePending(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, settled)
}

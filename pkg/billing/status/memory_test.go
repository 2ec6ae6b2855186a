package status

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/pkg/billing"
)

func TestMemoryStore_TTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Minute)
	store.now = func() time.Time { return now }

	ctx := context.Background()

	_, ok, err := store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	record := &billing.SubscriptionRecord{Plan: billing.PlanPro, Status: billing.StatusActive}
	require.NoError(t, store.Set(ctx, record))

	got, ok, err := store.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, billing.PlanPro, got.Plan)

	// Within the staleness bound the record is served.
	now = now.Add(59 * time.Second)
	_, ok, _ = store.Get(ctx)
	assert.True(t, ok)

	// At the bound it is a miss, never a stale hit.
	now = now.Add(time.Second)
	_, ok, _ = store.Get(ctx)
	assert.False(t, ok)
}

func TestMemoryStore_ReturnsCopy(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	record := &billing.SubscriptionRecord{Plan: billing.PlanPro}
	require.NoError(t, store.Set(ctx, record))

	got, ok, err := store.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// Mutating the returned record must not affect the cached one.
	got.Plan = billing.PlanFree

	again, _, _ := store.Get(ctx)
	assert.Equal(t, billing.PlanPro, again.Plan)
}

func TestMemoryStore_Invalidate(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, &billing.SubscriptionRecord{Plan: billing.PlanPro}))
	require.NoError(t, store.Invalidate(ctx))

	_, ok, err := store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewMemoryStore_RequiresPositiveTTL(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewMemoryStore(0) })
}

package billing_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/pkg/billing"
)

func TestProductCatalog_SKU(t *testing.T) {
	t.Parallel()

	catalog := billing.ProductCatalog{
		Monthly: "app.pro.monthly",
		Annual:  "app.pro.annual",
	}

	sku, err := catalog.SKU(billing.IntervalMonthly)
	require.NoError(t, err)
	assert.Equal(t, "app.pro.monthly", sku)

	sku, err = catalog.SKU(billing.IntervalAnnual)
	require.NoError(t, err)
	assert.Equal(t, "app.pro.annual", sku)

	_, err = catalog.SKU(billing.IntervalNone)
	assert.ErrorIs(t, err, billing.ErrUnknownInterval)
}

func TestProductCatalog_Interval(t *testing.T) {
	t.Parallel()

	catalog := billing.ProductCatalog{Monthly: "m", Annual: "a"}

	interval, ok := catalog.Interval("m")
	assert.True(t, ok)
	assert.Equal(t, billing.IntervalMonthly, interval)

	_, ok = catalog.Interval("other")
	assert.False(t, ok)
}

func TestProductCatalog_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, billing.ProductCatalog{Monthly: "m", Annual: "a"}.Validate())
	assert.ErrorIs(t, billing.ProductCatalog{Monthly: "m"}.Validate(), billing.ErrInvalidCatalog)
	assert.ErrorIs(t, billing.ProductCatalog{Monthly: "m", Annual: "m"}.Validate(), billing.ErrInvalidCatalog)
}

func TestLoadCatalog(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		catalog, err := billing.LoadCatalog(strings.NewReader("monthly: app.pro.monthly\nannual: app.pro.annual\n"))
		require.NoError(t, err)
		assert.Equal(t, "app.pro.monthly", catalog.Monthly)
		assert.Equal(t, "app.pro.annual", catalog.Annual)
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		t.Parallel()

		_, err := billing.LoadCatalog(strings.NewReader("monthly: m\nannual: a\nweekly: w\n"))
		assert.ErrorIs(t, err, billing.ErrInvalidCatalog)
	})

	t.Run("incomplete rejected", func(t *testing.T) {
		t.Parallel()

		_, err := billing.LoadCatalog(strings.NewReader("monthly: m\n"))
		assert.ErrorIs(t, err, billing.ErrInvalidCatalog)
	})
}

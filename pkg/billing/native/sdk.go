package native

import (
	"context"
	"time"
)

// Product is a catalog entry reported by the store.
type Product struct {
	SKU          string
	Title        string
	DisplayPrice string
}

// Transaction is a purchase transaction known to the store.
type Transaction struct {
	ID           string
	SKU          string
	PurchasedAt  time.Time
	Acknowledged bool
}

// StoreSDK is the boundary to the on-device store. Implementations bridge
// the platform billing SDK; tests substitute a mock.
//
// Connect may be called more than once; the Client guards it behind an
// idempotent connected flag, so implementations only see the first call
// per process.
type StoreSDK interface {
	// Connect establishes the store connection.
	Connect(ctx context.Context) error

	// FetchProducts returns the catalog entries for the given SKUs.
	// Unknown SKUs are simply absent from the result.
	FetchProducts(ctx context.Context, skus []string) ([]Product, error)

	// RequestPurchase presents the purchase sheet for a SKU. A nil
	// transaction with a nil error means the store produced no purchase
	// object, which the Client resolves through LatestTransaction before
	// classifying as cancellation.
	RequestPurchase(ctx context.Context, sku string) (*Transaction, error)

	// LatestTransaction returns the most recent transaction for a SKU,
	// or nil when there is none.
	LatestTransaction(ctx context.Context, sku string) (*Transaction, error)

	// AvailablePurchases lists all purchases currently known to the
	// store for this account.
	AvailablePurchases(ctx context.Context) ([]Transaction, error)

	// PendingTransactions lists transactions not yet acknowledged.
	PendingTransactions(ctx context.Context) ([]Transaction, error)

	// FinishTransaction acknowledges a transaction, removing it from the
	// pending queue.
	FinishTransaction(ctx context.Context, transactionID string) error
}

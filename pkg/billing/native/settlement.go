package native

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/billingkit/pkg/billing"
	"github.com/dmitrymomot/billingkit/pkg/logger"
)

// Settler performs idempotent transaction acknowledgment. Per-transaction
// state lives in the store's own pending queue; the settler only remembers
// which identifiers it already finished so a repeated Finish is a no-op
// rather than an error.
type Settler struct {
	sdk StoreSDK
	log *slog.Logger

	mu       sync.Mutex
	finished map[string]struct{}
}

// SettlerOption configures a Settler.
type SettlerOption func(*Settler)

// WithSettlerLogger sets the diagnostics logger. Nil loggers are ignored.
func WithSettlerLogger(log *slog.Logger) SettlerOption {
	return func(s *Settler) {
		if log != nil {
			s.log = log
		}
	}
}

// NewSettler creates a Settler. Panics on a nil SDK to fail fast during
// initialization.
func NewSettler(sdk StoreSDK, opts ...SettlerOption) *Settler {
	if sdk == nil {
		panic("native: StoreSDK is required")
	}

	s := &Settler{
		sdk:      sdk,
		log:      slog.Default(),
		finished: make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Finish acknowledges a transaction. Calling Finish again for an
// already-finished identifier returns nil without contacting the store.
// Failures are wrapped in billing.ErrAcknowledgeFailed; callers log them
// and move on, they never reverse a validation.
func (s *Settler) Finish(ctx context.Context, transactionID string) error {
	if transactionID == "" {
		return nil
	}

	s.mu.Lock()
	if _, done := s.finished[transactionID]; done {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if err := s.sdk.FinishTransaction(ctx, transactionID); err != nil {
		return errors.Join(billing.ErrAcknowledgeFailed, err)
	}

	s.mu.Lock()
	s.finished[transactionID] = struct{}{}
	s.mu.Unlock()

	return nil
}

// SettlePending enumerates unacknowledged transactions and finishes each
// independently. A failure on one transaction is logged and does not
// prevent attempting the remaining ones; the joined failures are returned
// alongside the count of transactions actually settled.
func (s *Settler) SettlePending(ctx context.Context) (int, error) {
	pending, err := s.sdk.PendingTransactions(ctx)
	if err != nil {
		return 0, errors.Join(billing.ErrAcknowledgeFailed, err)
	}

	if len(pending) == 0 {
		return 0, nil
	}

	s.log.InfoContext(ctx, "settling pending transactions",
		logger.Component("billing.settlement"),
		logger.Pending(len(pending)))

	var errs []error
	settled := 0
	for _, txn := range pending {
		if err := s.Finish(ctx, txn.ID); err != nil {
			s.log.WarnContext(ctx, "pending transaction settlement failed",
				logger.Component("billing.settlement"),
				logger.TransactionID(txn.ID),
				logger.Error(err))
			errs = append(errs, err)
			continue
		}
		settled++
	}

	return settled, errors.Join(errs...)
}

// Package receipt submits proof of purchase to the backend and records the
// canonical subscription record it returns. Validation is the step that
// makes an entitlement real: the backend record, once written, is
// authoritative regardless of the device-side transaction queue, which is
// why every purchase flow validates before it acknowledges.
package receipt

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/billingkit/pkg/billing"
	"github.com/dmitrymomot/billingkit/pkg/logger"
)

var ErrMissingTransactionID = errors.New("receipt: transaction ID is required")

// API is the backend boundary for receipt validation.
type API interface {
	ValidateReceipt(ctx context.Context, transactionID string) (*billing.SubscriptionRecord, error)
}

// Sink receives the validated record for wholesale replacement of the
// local cache. status.Cache satisfies it.
type Sink interface {
	Replace(ctx context.Context, record *billing.SubscriptionRecord) error
}

// Validator submits transaction identifiers to the backend and stores the
// returned record.
type Validator struct {
	api  API
	sink Sink
	log  *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithSink sets the record sink updated after each successful validation.
func WithSink(sink Sink) Option {
	return func(v *Validator) {
		if sink != nil {
			v.sink = sink
		}
	}
}

// WithLogger sets the diagnostics logger. Nil loggers are ignored.
func WithLogger(log *slog.Logger) Option {
	return func(v *Validator) {
		if log != nil {
			v.log = log
		}
	}
}

// New creates a Validator. Panics on a nil API to fail fast during
// initialization.
func New(api API, opts ...Option) *Validator {
	if api == nil {
		panic("receipt: API is required")
	}

	v := &Validator{
		api: api,
		log: slog.Default(),
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Validate submits the transaction identifier and returns the canonical
// record. Backend rejections and transport failures both surface as
// billing.ErrValidationFailed; the caller offers a retry, never a partial
// entitlement.
func (v *Validator) Validate(ctx context.Context, transactionID string) (*billing.SubscriptionRecord, error) {
	if transactionID == "" {
		return nil, ErrMissingTransactionID
	}

	record, err := v.api.ValidateReceipt(ctx, transactionID)
	if err != nil {
		return nil, errors.Join(billing.ErrValidationFailed, err)
	}

	if v.sink != nil {
		if err := v.sink.Replace(ctx, record); err != nil {
			// The backend has the entitlement; a failed cache write only
			// delays the UI until the next fetch.
			v.log.WarnContext(ctx, "failed to cache validated record",
				logger.Component("receipt"),
				logger.TransactionID(transactionID),
				logger.Error(err))
		}
	}

	v.log.InfoContext(ctx, "receipt validated",
		logger.Component("receipt"),
		logger.TransactionID(transactionID),
		logger.PlanName(string(record.Plan)))

	return record, nil
}

package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// TransactionID records a store transaction identifier.
func TransactionID(id string) slog.Attr {
	return slog.String("transaction_id", id)
}

// SKU records a store product identifier.
func SKU(sku string) slog.Attr {
	return slog.String("sku", sku)
}

// AttemptID records the purchase attempt identifier.
func AttemptID(id string) slog.Attr {
	return slog.String("attempt_id", id)
}

// Interval records a billing interval under the key "interval".
func Interval(interval string) slog.Attr {
	return slog.String("interval", interval)
}

// PlanName records the subscription plan under the key "plan".
func PlanName(plan string) slog.Attr {
	return slog.String("plan", plan)
}

// PlatformName records the billing platform under the key "platform".
func PlatformName(platform string) slog.Attr {
	return slog.String("platform", platform)
}

// Pending records the number of unsettled transactions.
func Pending(n int) slog.Attr {
	return slog.Int("pending", n)
}

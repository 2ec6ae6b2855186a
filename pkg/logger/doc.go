// Package logger provides a small slog factory plus typed attribute
// helpers for the billing engine's diagnostics port. Every client in the
// engine accepts a *slog.Logger through a constructor option; "log and
// continue" side effects (acknowledgment failures, per-transaction
// settlement failures) report through it so tests can assert on reported
// failures without capturing console state.
package logger

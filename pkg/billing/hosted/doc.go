// Package hosted drives subscription purchases through the web checkout:
// the backend issues payment-UI secrets for a provisional subscription, an
// externally supplied payment UI is driven to completion, and the
// canonical record is then refetched.
//
// Completion of the payment UI does not itself return a validated
// subscription record. The backend updates the canonical record
// asynchronously from provider webhooks, so the client always forces a
// fresh status fetch after a successful presentation instead of trusting
// the staleness window.
//
// Two concrete server-side session sources are included for deployments
// embedding the engine next to their backend: StripeBackend (checkout
// secrets and billing-portal sessions) and PaddlePortal (billing-portal
// sessions only).
package hosted

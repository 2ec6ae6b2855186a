// Package billing defines the shared vocabulary of the purchase engine:
// the server-authoritative subscription record, plan and status enums, the
// product catalog mapping billing intervals to store SKUs, the classified
// error taxonomy, and the Gateway that fronts the platform-specific
// purchase providers.
//
// The engine reconciles partial and asynchronously-arriving billing signals
// (a locally cached plan, a server-reported subscription record, trial
// windows, grace periods) into a single access decision. Purchase
// operations are not safely retryable by default, so every money-bearing
// flow in this module is built around three rules:
//
//   - Validation always precedes acknowledgment. Once the backend has
//     recorded an entitlement, a device-side acknowledgment failure can
//     never reverse it.
//   - Ambiguous "no purchase object" results are treated as user
//     cancellation, never as an error, and never reach the backend.
//   - On any failed or ambiguous status read the engine fails closed:
//     access resolves to denied, never to "maybe subscribed".
//
// # Architecture
//
//   - SubscriptionRecord: canonical subscription state, replaced wholesale
//     on every successful fetch or validation, never merged field-by-field
//   - ProductCatalog: fixed interval-to-SKU table, loadable from YAML
//   - Provider: one purchase backend (native store or hosted checkout),
//     selected once at process start
//   - Gateway: delegates StartSubscription to the selected provider and
//     classifies its errors into the shared taxonomy
//
// Concrete providers live in the billing/native and billing/hosted
// subpackages; entitlement derivation lives in pkg/entitlement.
//
// # Quick Start
//
//	catalog := billing.ProductCatalog{
//		Monthly: "app.pro.monthly",
//		Annual:  "app.pro.annual",
//	}
//
//	provider := native.NewClient(sdk, catalog, validator)
//	gateway := billing.NewGateway(provider)
//
//	record, err := gateway.StartSubscription(ctx, billing.IntervalAnnual)
//	if billing.IsUserCancelled(err) {
//		return nil // silent, no alert
//	}
package billing

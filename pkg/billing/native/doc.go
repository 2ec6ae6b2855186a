// Package native drives subscription purchases through the on-device
// store. The store SDK is an injected interface carrying its own connected
// flag behind an idempotent connect, so there is no hidden global handle
// and the client is mockable in tests.
//
// The purchase flow is deliberately conservative about money:
//
//   - A purchase response with no resolvable transaction identifier is
//     indistinguishable from the user dismissing the purchase sheet, so it
//     is treated as cancellation, not as an error, and no validation call
//     is made.
//   - Receipt validation always precedes acknowledgment. Once validation
//     has recorded the entitlement server-side, an acknowledgment failure
//     is logged and otherwise ignored: finishing the transaction is queue
//     hygiene on the device, not part of the entitlement.
//   - SettlePending flushes transactions left unacknowledged by a prior
//     session, attempting each independently so one bad transaction never
//     blocks the rest of the batch.
package native

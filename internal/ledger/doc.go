// Package ledger records finalized sales and settles their payment.
//
// A Sale stores denormalized Item snapshots (name and unit price as they
// were at sale time), so later catalog edits or deletions never rewrite
// history.
//
// Settle holds the payment rules:
//   - cash: paid defaults to the total when nothing was tendered, a tender
//     below the total is INSUFFICIENT_PAYMENT, change = max(0, paid - total)
//   - wallet-transfer: paid = total, change = 0, and the wallet account
//     falls back to the store's configured account
//
// Amend overwrites fields of an existing sale for after-the-fact fixes.
// It never recomputes totals or touches stock, even when items, totals or
// the payment method are overwritten. Such amends are logged at warn.
package ledger

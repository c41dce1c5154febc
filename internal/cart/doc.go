// Package cart is the in-memory staging area for one sale in progress.
//
// Lines snapshot the product's name and price when first added; later
// catalog edits do not touch them. Quantities are checked against the
// live stock reported by a StockLookup, with a single rule for both Add
// and AdjustQuantity: a line may grow to n units only if n <= stock.
// Growth past that is refused and the line is left untouched.
//
// A Cart is owned by one sale session and is not safe for concurrent use.
package cart

// Package catalog owns product definitions and stock counts.
//
// A Catalog keeps products in insertion order. It performs no locking;
// the store facade serializes access.
//
// Stock accounting:
//   - InitialStock is the cumulative number of units ever made available.
//     It grows on restock and is never decreased.
//   - Stock is what is left to sell. Finalized sales decrement it.
//   - Units sold is InitialStock - Stock.
//
// Add does not reject negative prices or stock; validating operator input
// is the caller's job. Intended invariants are price >= 0, stock >= 0 and
// stock <= initial stock.
package catalog

// Package pos is the store facade: the single owner of a popstand
// catalog, ledger and configuration.
//
// Every public mutation runs as mutate-then-persist under one mutex. The
// in-memory state changes first, then the whole root is saved. If the
// save fails the mutation stays applied in memory and a PERSISTENCE error
// is returned, so the operator can be warned the change may not survive a
// restart.
//
// Finalize is the one compound operation. Stock decrements, the ledger
// append and the cart reset happen inside the same critical section, and
// every check runs before the first write, so a refused sale leaves
// nothing behind.
//
// Reads (Products, Sales, Report, ...) return copies and may be called
// from any goroutine.
package pos

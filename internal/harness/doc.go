// Package harness runs popstand scenarios.
//
// A scenario is a YAML script of stand operations: seed a catalog, fill
// a cart, finalize sales, restock, amend. Each scenario runs against a
// fresh in-memory store with sequential ids and a deterministic clock, so
// the same file always produces the same sales, the same trace and the
// same closing report.
//
// Every step records a TraceEvent with its outcome: "ok", "refused" for
// a request the cart or catalog declined without error, or the error
// kind. A step's expect_error names the outcome it should produce.
//
// After the steps run, the scenario's expect block is checked and the
// stand invariants are verified (stock never negative, stock consumed
// equals units sold, cash reconciliation adds up).
//
// RunWithGolden additionally renders the closing report and compares it
// with testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness

// Package poserr defines the error kinds shared by the popstand core.
//
// Every failure surfaced by the catalog, ledger and store facade is an
// *Error carrying one Kind. Callers branch on the kind with IsKind or
// errors.As; message text is for operators only.
//
// No error is fatal. PERSISTENCE in particular means the in-memory state
// already reflects the mutation but may not survive a restart.
package poserr

// Package store provides the persistence collaborator for popstand.
//
// The core only needs an opaque key/value blob store with
// load-at-start and save-on-change semantics:
//   - Store: SQLite-backed blobs table on the local device
//   - MemoryBlobs: in-process map for tests and dry runs
//   - Snapshotter: encodes and decodes a state.Root under one key on
//     any Blobs backend
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - Single open connection: SQLite allows one writer
package store

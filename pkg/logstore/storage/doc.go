// Package storage provides persistence backends for log records.
//
// # Overview
//
// The package implements the logstore.Storage interface twice:
//
//   - SQLite: durable file-based persistence (WAL mode, busy timeout)
//   - Memory: in-memory fallback for degraded mode and tests
//
// # Ordering
//
// Both backends return records ordered by CreatedAt ascending with ties
// broken by insertion order. SQLite keeps a monotonic seq column for the
// tie-break; the memory backend relies on stable sorting of its
// insertion-ordered slice.
//
// # Bulk Deletes
//
// DeleteBefore and DeleteOldest remove matching records by identifier
// without materializing record bodies (DELETE ... RETURNING id). The
// returned identifiers are the tombstones the engine merges into its
// read view.
//
// # Thread Safety
//
// All storage backends are thread-safe and support concurrent access
// from multiple goroutines. Locking is handled internally by each backend.
package storage

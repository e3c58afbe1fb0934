// Package store provides a SQLite cache of normal forms.
//
// Entries map a source tree, identified by its content hash, and the
// namespace it was normalized under to the canonical JSON of its normal
// form. Writes are idempotent; re-normalizing the same tree is a cache hit.
//
// # Determinism
//
//   - Trees are stored as canonical JSON (sorted keys, NFC strings), so the
//     same tree always has the same hash and the same stored text.
//   - Listings order by seq, a logical clock, then by hash.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - One connection: SQLite allows one writer at a time
//
// Replay re-normalizes every cached source and reports entries whose stored
// normal form no longer matches, which detects behavior changes of the
// normalizer between versions.
package store

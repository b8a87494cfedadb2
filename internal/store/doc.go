// Package store persists streak snapshots and manual recovery requests in
// SQLite.
//
// This package is the caller side of the engine's persistence boundary:
// the engine computes over in-memory StreakData and the store keeps the
// canonical JSON form durable between sessions. Snapshots are whole-value
// rows - one per user, replaced on every accepted operation - because the
// engine's contract is snapshot-in/snapshot-out, not incremental updates.
package store

// Package streak implements the habit-streak state-transition engine.
//
// The engine is a pure function library over StreakData snapshots: every
// operation takes a snapshot plus an explicit instant (and timezone where
// calendar-day math applies) and returns a new snapshot or a typed refusal.
// Nothing in this package reads the wall clock, performs I/O, or mutates
// its input.
//
// ARCHITECTURE:
//
// Snapshot-in / snapshot-out:
// Callers hold the authoritative StreakData, pass it by value, and replace
// it with the returned value on success. Append-only sequences
// (StreakHistory, StreakShields) are copied before appending so the input
// snapshot is never aliased by the result.
//
// Explicit time:
// "now" is captured once per logical operation by the caller and threaded
// through every computation. Re-sampling mid-operation would make results
// depend on evaluation order; with a single instant, every operation is a
// deterministic function of (snapshot, now, location).
//
// Window model:
// A check-in opens a 24-hour window, followed by a 2-hour grace period.
// Past the combined 26-hour window the streak is broken; a shield can still
// repair it for up to 48 further hours, subject to a 3-per-month quota and
// a 7-day cooldown. Boundary comparisons are inclusive on the low side
// (elapsed <= 24 is active, <= 25 warning, <= 26 critical) - these exact
// comparisons decide user-visible streak survival, so they must not drift.
package streak

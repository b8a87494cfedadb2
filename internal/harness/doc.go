// Package harness provides a conformance testing framework for the streak
// engine.
//
// Scenarios are YAML files describing a timeline: a fixed start instant, a
// timezone, and a sequence of steps that advance a deterministic clock and
// invoke engine operations. Each step may declare the expected outcome (a
// refusal code, or a status state); the full execution trace is compared
// against a golden file so that any behavioral drift in window math, quota
// enforcement, or scoring shows up as a readable diff.
//
// Scenarios never touch the wall clock or the store: they run the pure
// engine over an in-memory snapshot, which is what makes golden traces
// byte-stable across runs and machines.
package harness

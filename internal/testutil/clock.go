package testutil

import (
	"sync"
	"time"
)

// Clock provides a thread-safe deterministic time source for tests.
//
// The engine takes every instant as an explicit parameter, so tests drive
// time by advancing a Clock instead of sleeping. Reset enables the same
// scenario to run multiple times from the same start instant.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Clock struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
}

// NewClock creates a clock pinned at the given start instant.
func NewClock(start time.Time) *Clock {
	return &Clock{start: start, now: start}
}

// Now returns the current instant without advancing.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward and returns the new instant.
//
// Monotonic: negative durations are rejected with a panic because a clock
// that can rewind would mask ordering bugs the engine is meant to surface.
func (c *Clock) Advance(d time.Duration) time.Time {
	if d < 0 {
		panic("testutil: clock cannot rewind")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Reset returns the clock to its start instant.
//
// Used for test reuse. After Reset(), Now() reports the original start.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}

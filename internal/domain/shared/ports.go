package shared

import (
	"sync"
	"time"
)

// Clock abstracts the current time so that day keys and schedules are testable.
type Clock interface {
	Now() time.Time
}

// SystemClock returns the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock is a settable clock for tests and replays.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a FixedClock set to now.
func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now}
}

// Now implements Clock.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// IDGenerator produces unique identifiers for profiles, clans and invites.
type IDGenerator interface {
	NewID() string
}

// IDFunc adapts a function to IDGenerator.
type IDFunc func() string

// NewID implements IDGenerator.
func (f IDFunc) NewID() string { return f() }

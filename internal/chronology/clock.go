package chronology

import (
	"sync/atomic"
	"time"
)

// Clock supplies the current time for timer-deadline checks. Deadlines
// (timerExpiresAt) are opaque integers; deployments choose the unit by
// choosing the clock.
type Clock interface {
	Now() int64
}

// TickClock is a manually advanced logical clock. Tests and
// deterministic runs drive it explicitly.
type TickClock struct {
	now atomic.Int64
}

// NewTickClock creates a tick clock starting at 0.
func NewTickClock() *TickClock {
	return &TickClock{}
}

// Now implements Clock.
func (c *TickClock) Now() int64 {
	return c.now.Load()
}

// Advance moves the clock forward by n ticks.
func (c *TickClock) Advance(n int64) {
	c.now.Add(n)
}

// WallClock reads the system clock in unix seconds.
type WallClock struct{}

// Now implements Clock.
func (WallClock) Now() int64 {
	return time.Now().Unix()
}

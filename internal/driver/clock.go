package driver

import "sync/atomic"

// Clock is the monotonic logical clock stamping receipt seq numbers.
// Every receipt carries a strictly increasing seq, so replayed chains
// reproduce the exact execution order without wall-clock races.
//
// Safe for concurrent use, though the driver's single-writer section
// means one goroutine normally calls Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at a specific seq. Used when
// resuming execution against an existing chain.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next seq and increments the clock. Linearizable:
// each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current seq without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

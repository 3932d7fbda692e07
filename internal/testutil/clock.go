package testutil

import "sync/atomic"

// DeterministicClock hands out trace sequence numbers starting at 1.
// A fresh or reset clock always issues the same sequence, so a scenario run
// twice stamps its events identically.
type DeterministicClock struct {
	seq atomic.Int64
}

// NewDeterministicClock returns a clock that has issued nothing yet.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Next issues the next sequence number.
func (c *DeterministicClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number, 0 if none.
func (c *DeterministicClock) Current() int64 {
	return c.seq.Load()
}

// Reset forgets every issued number.
func (c *DeterministicClock) Reset() {
	c.seq.Store(0)
}

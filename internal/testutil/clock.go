package testutil

import (
	"sync"
	"time"
)

// DefaultEpoch is the first instant a DeterministicClock reports.
var DefaultEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// DefaultStep separates consecutive timestamps.
const DefaultStep = time.Minute

// DeterministicClock hands out strictly increasing ISO-8601 UTC timestamps
// for tests. PK1 never reads the wall clock; request timestamps are inputs,
// and this clock makes them reproducible.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu   sync.Mutex
	seq  int64
	base time.Time
	step time.Duration
}

// NewDeterministicClock creates a clock at DefaultEpoch advancing by DefaultStep.
//
// The first call to Next() returns "2025-01-01T00:01:00Z".
func NewDeterministicClock() *DeterministicClock {
	return NewDeterministicClockAt(DefaultEpoch, DefaultStep)
}

// NewDeterministicClockAt creates a clock with an explicit base and step.
func NewDeterministicClockAt(base time.Time, step time.Duration) *DeterministicClock {
	return &DeterministicClock{base: base.UTC(), step: step}
}

// Next advances the clock and returns the new timestamp.
func (c *DeterministicClock) Next() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.format()
}

// Current returns the current timestamp without advancing.
func (c *DeterministicClock) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.format()
}

// Seq returns how many times Next has been called since the last Reset.
func (c *DeterministicClock) Seq() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset rewinds the clock to its base.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}

func (c *DeterministicClock) format() string {
	return c.base.Add(time.Duration(c.seq) * c.step).Format(time.RFC3339)
}

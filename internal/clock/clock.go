package clock

import (
	"sync"
	"time"
)

// Clock supplies timestamps for records and queue entries.
type Clock interface {
	Now() time.Time
}

// Monotonic is a device clock whose readings strictly increase, even if the
// wall clock stalls or steps backwards. Readings are UTC without a monotonic
// component so they compare the same after a JSON round trip.
type Monotonic struct {
	last   time.Time        // last reading handed out or observed
	source func() time.Time // wall clock
	mu     sync.Mutex
}

// New creates a monotonic clock over the system wall clock.
func New() *Monotonic {
	return NewWithSource(time.Now)
}

// NewWithSource creates a monotonic clock over an arbitrary time source.
// Used by tests to pin the wall clock.
func NewWithSource(source func() time.Time) *Monotonic {
	return &Monotonic{source: source}
}

// Now returns a timestamp strictly greater than every previous reading and
// every observed timestamp.
func (c *Monotonic) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.source().UTC().Round(0)
	if !now.After(c.last) {
		now = c.last.Add(time.Nanosecond)
	}
	c.last = now
	return now
}

// Observe advances the clock past t. Called with the timestamp of a record
// before stamping a new version of it, so the new version always wins LWW
// against the one it replaces.
func (c *Monotonic) Observe(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t = t.UTC().Round(0)
	if t.After(c.last) {
		c.last = t
	}
}

// Fake is a manually driven clock for tests. Zero value starts at the Unix epoch.
type Fake struct {
	now time.Time
	mu  sync.Mutex
}

// NewFake creates a fake clock set to start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start.UTC()}
}

// Now returns the current fake time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the fake time forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// Set pins the fake time to t.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t.UTC()
}

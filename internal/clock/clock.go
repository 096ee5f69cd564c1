// Package clock abstracts the current time so stores can be driven by a
// deterministic clock in tests.
package clock

import (
	"sync"
	"time"
)

// Clock returns the current time. Stores stamp createdAt with it.
type Clock interface {
	Now() time.Time
}

// Real reads the system clock, in UTC.
type Real struct{}

func NewReal() Real {
	return Real{}
}

func (Real) Now() time.Time {
	return time.Now().UTC()
}

// Stub is a settable clock for tests. The zero value is not usable; use NewStub.
type Stub struct {
	mu  sync.Mutex
	now time.Time
}

// NewStub returns a Stub starting at start.
func NewStub(start time.Time) *Stub {
	return &Stub{now: start.UTC()}
}

func (c *Stub) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Stub) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now.UTC()
}

// Advance moves the clock forward by d and returns the new time.
func (c *Stub) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Ticking wraps a Stub so every Now call advances it by step first.
// Handy when each created entity needs a distinct timestamp.
type Ticking struct {
	stub *Stub
	step time.Duration
}

func NewTicking(start time.Time, step time.Duration) *Ticking {
	return &Ticking{stub: NewStub(start), step: step}
}

func (c *Ticking) Now() time.Time {
	return c.stub.Advance(c.step)
}

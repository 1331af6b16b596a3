package timing

import (
	"sync"
	"time"
)

// Clock tells the main loop what time it is.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// SimulatedClock only moves when advanced. Headless runs and tests use it to
// step the main loop and the hardware in lockstep.
type SimulatedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewSimulatedClock starts a simulated clock at the given instant.
func NewSimulatedClock(start time.Time) *SimulatedClock {
	return &SimulatedClock{now: start}
}

func (c *SimulatedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *SimulatedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// CyclesFor converts a duration into clock cycles at hz without overflowing
// for long durations.
func CyclesFor(d time.Duration, hz uint32) uint64 {
	if d <= 0 {
		return 0
	}
	ns := uint64(d)
	secs := ns / uint64(time.Second)
	rem := ns % uint64(time.Second)
	return secs*uint64(hz) + rem*uint64(hz)/uint64(time.Second)
}

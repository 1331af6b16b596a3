package timing

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCyclesFor(t *testing.T) {
	tests := []struct {
		name     string
		d        time.Duration
		hz       uint32
		expected uint64
	}{
		{name: "one millisecond at 16MHz", d: time.Millisecond, hz: 16_000_000, expected: 16_000},
		{name: "one hour does not overflow", d: time.Hour, hz: 16_000_000, expected: 57_600_000_000},
		{name: "fractional cycles truncate", d: 100 * time.Nanosecond, hz: 1_000_000, expected: 0},
		{name: "negative duration", d: -time.Second, hz: 16_000_000, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CyclesFor(tt.d, tt.hz))
		})
	}
}

func TestSimulatedClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewSimulatedClock(start)
	assert.Equal(t, start, c.Now())

	c.Advance(75 * time.Millisecond)
	assert.Equal(t, start.Add(75*time.Millisecond), c.Now())
}

type countingTicker struct {
	cycles atomic.Uint64
}

func (c *countingTicker) Tick(cycles int) {
	c.cycles.Add(uint64(cycles))
}

func TestTickDriver_FeedsRealTime(t *testing.T) {
	target := &countingTicker{}
	d := NewTickDriver(target, 1_000_000, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	d.Run(ctx)

	// 100ms at 1MHz, with generous slack for scheduler jitter
	fed := target.cycles.Load()
	assert.Greater(t, fed, uint64(50_000))
	assert.LessOrEqual(t, fed, uint64(110_000))
}

func TestAdaptiveLimiter_Paces(t *testing.T) {
	l := NewAdaptiveLimiter(2 * time.Millisecond)
	start := time.Now()
	for i := 0; i < 10; i++ {
		l.Wait()
	}
	assert.GreaterOrEqual(t, time.Since(start), 18*time.Millisecond)
}

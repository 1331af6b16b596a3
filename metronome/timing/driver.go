package timing

import (
	"context"
	"log/slog"
	"time"
)

// Ticker consumes CPU cycles, the way a hardware timer does.
type Ticker interface {
	Tick(cycles int)
}

// maxCatchUp bounds how much missed time one driver step may replay.
const maxCatchUp = 250 * time.Millisecond

// TickDriver is the oscillator: it feeds a Ticker the cycles that elapsed in
// real time, from its own goroutine, so the timer's interrupt handler runs
// asynchronously to the main loop.
type TickDriver struct {
	target  Ticker
	clockHz uint32
	period  time.Duration
	clock   Clock
}

// NewTickDriver creates a driver delivering cycles every period.
func NewTickDriver(target Ticker, clockHz uint32, period time.Duration) *TickDriver {
	return &TickDriver{
		target:  target,
		clockHz: clockHz,
		period:  period,
		clock:   SystemClock{},
	}
}

// Run delivers cycles until the context is cancelled.
func (d *TickDriver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.period)
	defer ticker.Stop()

	start := d.clock.Now()
	var fed uint64
	var skipped time.Duration

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			elapsed := d.clock.Now().Sub(start) - skipped
			due := CyclesFor(elapsed, d.clockHz)
			if due <= fed {
				continue
			}

			behind := time.Duration((due - fed) * uint64(time.Second) / uint64(d.clockHz))
			if behind > maxCatchUp {
				// stalled (suspended process, debugger); resume from now
				// instead of firing a burst of stale interrupts
				skipped += behind - d.period
				slog.Debug("Tick driver skipped stalled time", "behind_ms", behind.Milliseconds())
				due = fed + CyclesFor(d.period, d.clockHz)
			}

			d.target.Tick(int(due - fed))
			fed = due
		}
	}
}

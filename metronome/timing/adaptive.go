package timing

import (
	"log/slog"
	"time"
)

// AdaptiveLimiter paces a loop to a fixed period with drift compensation.
// Combines sleep for efficiency with busy-waiting for accuracy.
type AdaptiveLimiter struct {
	period   time.Duration
	nextTick time.Time
	counter  int64
}

func NewAdaptiveLimiter(period time.Duration) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		period:   period,
		nextTick: time.Now(),
	}
}

// Wait blocks until the next period boundary.
func (a *AdaptiveLimiter) Wait() {
	now := time.Now()
	sleepTime := a.nextTick.Sub(now)

	if sleepTime > 0 {
		if sleepTime < 2*time.Millisecond {
			for time.Now().Before(a.nextTick) {
				// busy-wait for times under 2ms, higher accuracy.
			}
		} else {
			time.Sleep(sleepTime - time.Millisecond)
			for time.Now().Before(a.nextTick) {
			}
		}
	} else if sleepTime < -5*a.period {
		// fell far behind (suspended process, slow terminal): don't try to catch up
		a.nextTick = now
	}

	a.nextTick = a.nextTick.Add(a.period)
	a.counter++

	if a.counter%1000 == 0 {
		drift := time.Since(a.nextTick)
		if drift.Abs() > 10*a.period {
			a.nextTick = a.nextTick.Add(drift / 10)
			slog.Debug("Loop timing drift correction", "drift_ms", drift.Milliseconds(), "period", a.period)
		}
	}
}

func (a *AdaptiveLimiter) Reset() {
	a.nextTick = time.Now()
	a.counter = 0
}

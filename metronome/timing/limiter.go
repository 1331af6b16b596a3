package timing

// Limiter paces the main loop.
type Limiter interface {
	// Wait blocks until the next poll is due.
	// Returns immediately if timing is behind schedule.
	Wait()

	// Reset resets the timing state, useful after pauses.
	Reset()
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) Wait()  {}
func (n *noOpLimiter) Reset() {}

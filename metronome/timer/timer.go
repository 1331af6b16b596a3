package timer

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultClockHz is the CPU clock feeding the timer (16 MHz crystal).
	DefaultClockHz = 16_000_000
	// DefaultPrescaler divides the CPU clock before it reaches the counter (CS11).
	DefaultPrescaler = 8
	// MaxCompare is TOP for a 16-bit counter.
	MaxCompare = 0xFFFF
)

// MinFrequency is the lowest compare match rate a timer with the given clock
// and prescaler can produce without overflowing the compare register.
func MinFrequency(clockHz, prescaler uint32) uint32 {
	return clockHz/prescaler/(MaxCompare+2) + 1
}

// Timer models a 16-bit timer running in fast PWM mode with the output
// compare register as TOP (Timer1, WGM 15 on the ATmega16).
//
// The counter advances once every prescaler CPU cycles. When it passes the
// compare value it wraps to zero and a compare match happens:
//   - the OC output pin toggles if the comparator output is enabled (COM1A0)
//   - the compare interrupt handler runs if the interrupt is unmasked (OCIE1A)
//
// The match rate is therefore clock / prescaler / (OCR+1), which is both the
// interrupt tick rate and, halved by the toggle, the audible pitch on OC.
//
// Interrupt dispatch holds the interrupt lock, so handlers never overlap and
// never run while DisableInterrupt holds the mask. The compare and output
// registers are atomics: the handler reprograms them from inside dispatch and
// audio code samples them from its own goroutine.
type Timer struct {
	clockHz   uint32
	prescaler uint32

	mu               sync.Mutex
	interruptEnabled bool
	counter          uint32 // TCNT1
	residue          uint32 // CPU cycles not yet worth a counter increment

	cycles        atomic.Uint64
	ocr           atomic.Uint32
	outputEnabled atomic.Bool
	output        atomic.Bool

	// CompareMatchHandler is the compare interrupt service routine.
	CompareMatchHandler func()
}

// New returns a stopped timer with the compare register at its maximum.
func New(clockHz, prescaler uint32) *Timer {
	if clockHz == 0 || prescaler == 0 {
		panic("timer: clock and prescaler must be positive")
	}
	t := &Timer{
		clockHz:   clockHz,
		prescaler: prescaler,
	}
	t.ocr.Store(MaxCompare)
	return t
}

// ClockHz returns the CPU clock rate.
func (t *Timer) ClockHz() uint32 {
	return t.clockHz
}

// SetFrequency programs the compare register so matches occur at hz:
// OCR = clock/prescaler/hz - 1. Frequencies beyond the timer's resolution
// clamp to OCR 0. Zero, or anything below MinFrequency, is a programming
// error.
func (t *Timer) SetFrequency(hz uint32) {
	if hz == 0 {
		panic("timer: zero compare frequency")
	}
	div := t.clockHz / t.prescaler / hz
	if div == 0 {
		div = 1
	}
	if div-1 > MaxCompare {
		panic(fmt.Sprintf("timer: %d Hz needs OCR %d, above %d", hz, div-1, MaxCompare))
	}
	t.SetCompare(div - 1)
}

// Frequency returns the current compare match rate in Hz.
func (t *Timer) Frequency() uint32 {
	return t.clockHz / t.prescaler / (t.ocr.Load() + 1)
}

// SetCompare writes the output compare register directly. The register is
// 16 bits wide; larger values panic.
func (t *Timer) SetCompare(ocr uint32) {
	if ocr > MaxCompare {
		panic(fmt.Sprintf("timer: OCR %d above %d", ocr, MaxCompare))
	}
	t.ocr.Store(ocr)
}

// Compare returns the output compare register.
func (t *Timer) Compare() uint32 {
	return t.ocr.Load()
}

// SetOutputEnabled connects or disconnects the comparator from the OC pin.
func (t *Timer) SetOutputEnabled(enabled bool) {
	t.outputEnabled.Store(enabled)
}

// OutputEnabled reports whether the comparator drives the OC pin.
func (t *Timer) OutputEnabled() bool {
	return t.outputEnabled.Load()
}

// Output returns the OC pin level.
func (t *Timer) Output() bool {
	return t.output.Load()
}

// EnableInterrupt unmasks the compare interrupt.
func (t *Timer) EnableInterrupt() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.interruptEnabled = true
}

// DisableInterrupt masks the compare interrupt. When it returns no handler is
// running and none will start until EnableInterrupt.
func (t *Timer) DisableInterrupt() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.interruptEnabled = false
}

// InterruptEnabled reports the mask state.
func (t *Timer) InterruptEnabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.interruptEnabled
}

// ResetCounter restarts counting from zero (TCNT1 = 0).
func (t *Timer) ResetCounter() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counter = 0
	t.residue = 0
}

// Counter returns TCNT1.
func (t *Timer) Counter() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counter
}

// Cycles returns the total CPU cycles fed to the timer.
func (t *Timer) Cycles() uint64 {
	return t.cycles.Load()
}

// Elapsed converts Cycles to time.
func (t *Timer) Elapsed() time.Duration {
	c := t.cycles.Load()
	hz := uint64(t.clockHz)
	return time.Duration(c/hz)*time.Second + time.Duration(c%hz*uint64(time.Second)/hz)
}

// Tick advances the timer by the given number of CPU cycles, dispatching
// every compare match that falls inside them. While a handler runs, Cycles
// and Elapsed read the cycle of its match.
func (t *Timer) Tick(cycles int) {
	if cycles <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	start := t.cycles.Load()
	defer t.cycles.Store(start + uint64(cycles))

	prescaler := uint64(t.prescaler)
	residue := uint64(t.residue)
	total := residue + uint64(cycles)
	counts := total / prescaler
	t.residue = uint32(total % prescaler)

	var counted uint64
	for counts > 0 {
		top := uint64(t.ocr.Load())
		if uint64(t.counter) > top {
			// compare lowered below the running count: fast PWM restarts at BOTTOM
			t.counter = 0
		}

		untilMatch := top + 1 - uint64(t.counter)
		if counts < untilMatch {
			t.counter += uint32(counts)
			return
		}

		counts -= untilMatch
		counted += untilMatch
		t.counter = 0
		t.cycles.Store(start + counted*prescaler - residue)
		t.match()
	}
}

func (t *Timer) match() {
	if t.outputEnabled.Load() {
		t.output.Store(!t.output.Load())
	}

	if t.interruptEnabled && t.CompareMatchHandler != nil {
		t.CompareMatchHandler()
	}
}

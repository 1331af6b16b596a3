package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer_SetFrequency(t *testing.T) {
	tests := []struct {
		name        string
		hz          uint32
		expectedOCR uint32
	}{
		{name: "normal tone", hz: 2000, expectedOCR: 999},
		{name: "accent tone", hz: 1000, expectedOCR: 1999},
		{name: "above resolution clamps", hz: 4_000_000, expectedOCR: 0},
		{name: "lowest frequency", hz: 31, expectedOCR: 64_515},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := New(DefaultClockHz, DefaultPrescaler)
			tm.SetFrequency(tt.hz)
			assert.Equal(t, tt.expectedOCR, tm.Compare())
		})
	}
}

func TestTimer_OutOfRangePanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func(tm *Timer)
	}{
		{name: "zero frequency", fn: func(tm *Timer) { tm.SetFrequency(0) }},
		{name: "below 16-bit range", fn: func(tm *Timer) { tm.SetFrequency(30) }},
		{name: "far below range", fn: func(tm *Timer) { tm.SetFrequency(20) }},
		{name: "compare above TOP", fn: func(tm *Timer) { tm.SetCompare(MaxCompare + 1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := New(DefaultClockHz, DefaultPrescaler)
			assert.Panics(t, func() { tt.fn(tm) })
			assert.Equal(t, uint32(MaxCompare), tm.Compare(), "register untouched")
		})
	}
}

func TestMinFrequency(t *testing.T) {
	tests := []struct {
		name      string
		clockHz   uint32
		prescaler uint32
		expected  uint32
	}{
		{name: "16 MHz / 8", clockHz: DefaultClockHz, prescaler: DefaultPrescaler, expected: 31},
		{name: "exact multiple of the range", clockHz: 65_537 * 4, prescaler: 1, expected: 5},
		{name: "slow clock", clockHz: 1000, prescaler: 1, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			minHz := MinFrequency(tt.clockHz, tt.prescaler)
			assert.Equal(t, tt.expected, minHz)

			tm := New(tt.clockHz, tt.prescaler)
			assert.NotPanics(t, func() { tm.SetFrequency(minHz) })
			if minHz > 1 {
				assert.Panics(t, func() { tm.SetFrequency(minHz - 1) })
			}
		})
	}
}

func TestTimer_SetFrequencyRunsAtRate(t *testing.T) {
	tm := New(DefaultClockHz, DefaultPrescaler)
	tm.SetFrequency(40)
	assert.Equal(t, uint32(40), tm.Frequency())

	matches := 0
	tm.CompareMatchHandler = func() { matches++ }
	tm.EnableInterrupt()
	tm.Tick(DefaultClockHz)
	assert.Equal(t, 40, matches)
}

func TestTimer_TickDispatchesMatches(t *testing.T) {
	tm := New(DefaultClockHz, DefaultPrescaler)
	tm.SetFrequency(2000)

	matches := 0
	tm.CompareMatchHandler = func() { matches++ }
	tm.EnableInterrupt()

	// one second of CPU cycles
	tm.Tick(DefaultClockHz)
	assert.Equal(t, 2000, matches)
	assert.Equal(t, uint32(0), tm.Counter())
	assert.Equal(t, time.Second, tm.Elapsed())
}

func TestTimer_TickInSmallSteps(t *testing.T) {
	tm := New(DefaultClockHz, DefaultPrescaler)
	tm.SetFrequency(1000)

	matches := 0
	tm.CompareMatchHandler = func() { matches++ }
	tm.EnableInterrupt()

	// 3 cycles at a time leaves prescaler residue behind on every call
	for i := 0; i < DefaultClockHz/100/3; i++ {
		tm.Tick(3)
	}
	assert.Equal(t, 9, matches, "53333*3 cycles is just short of 10 matches")

	tm.Tick(16_000_000/100 - (DefaultClockHz/100/3)*3)
	assert.Equal(t, 10, matches)
}

func TestTimer_MaskedMatchesAreDropped(t *testing.T) {
	tm := New(DefaultClockHz, DefaultPrescaler)
	tm.SetFrequency(2000)

	matches := 0
	tm.CompareMatchHandler = func() { matches++ }

	tm.Tick(DefaultClockHz / 10)
	assert.Equal(t, 0, matches, "interrupt starts masked")

	tm.EnableInterrupt()
	tm.Tick(DefaultClockHz / 10)
	assert.Equal(t, 200, matches)

	tm.DisableInterrupt()
	assert.False(t, tm.InterruptEnabled())
	tm.Tick(DefaultClockHz / 10)
	assert.Equal(t, 200, matches)
}

func TestTimer_HandlerReprogramsCompare(t *testing.T) {
	tm := New(DefaultClockHz, DefaultPrescaler)
	tm.SetFrequency(2000)

	matches := 0
	tm.CompareMatchHandler = func() {
		matches++
		tm.SetFrequency(1000)
	}
	tm.EnableInterrupt()

	// first match at 2 kHz (1000 counts), then 1 kHz (2000 counts each)
	tm.Tick(8 * (1000 + 2000*3))
	assert.Equal(t, 4, matches)
	assert.Equal(t, uint32(1000), tm.Frequency())
}

func TestTimer_OutputToggle(t *testing.T) {
	tm := New(DefaultClockHz, DefaultPrescaler)
	tm.SetFrequency(2000)

	tm.Tick(8 * 1000)
	assert.False(t, tm.Output(), "disconnected comparator leaves OC alone")

	tm.SetOutputEnabled(true)
	tm.Tick(8 * 1000)
	assert.True(t, tm.Output())
	tm.Tick(8 * 1000)
	assert.False(t, tm.Output())
}

func TestTimer_ResetCounter(t *testing.T) {
	tm := New(DefaultClockHz, DefaultPrescaler)
	tm.SetFrequency(1000)

	tm.Tick(8 * 500)
	require.Equal(t, uint32(500), tm.Counter())

	tm.ResetCounter()
	assert.Equal(t, uint32(0), tm.Counter())
}

func TestTimer_LoweredCompareRestartsCount(t *testing.T) {
	tm := New(DefaultClockHz, DefaultPrescaler)
	tm.SetCompare(1999)
	tm.Tick(8 * 1500)

	matches := 0
	tm.CompareMatchHandler = func() { matches++ }
	tm.EnableInterrupt()

	tm.SetCompare(999)
	tm.Tick(8 * 1000)
	assert.Equal(t, 1, matches)
}

func TestTimer_ElapsedAtMatch(t *testing.T) {
	tm := New(DefaultClockHz, DefaultPrescaler)
	tm.SetFrequency(1000)

	var at []time.Duration
	tm.CompareMatchHandler = func() { at = append(at, tm.Elapsed()) }
	tm.EnableInterrupt()

	// leave residue behind so the next chunk starts mid-count
	tm.Tick(3)
	tm.Tick(DefaultClockHz / 100)

	require.Len(t, at, 10)
	for i, got := range at {
		assert.Equal(t, time.Duration(i+1)*time.Millisecond, got, "match %d", i)
	}
	assert.Equal(t, 10*time.Millisecond+3*time.Second/DefaultClockHz, tm.Elapsed())
}

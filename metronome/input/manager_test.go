package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-metronome/metronome/gpio"
	"github.com/valerio/go-metronome/metronome/input/action"
	"github.com/valerio/go-metronome/metronome/input/event"
)

func newTestManager() (*Manager, *gpio.Port, *time.Time) {
	port := gpio.NewPort()
	port.Write(gpio.ButtonMask)
	m := NewManager(map[action.Action]gpio.Button{
		action.TempoUp:            gpio.NewButton(port, gpio.ButtonUp, true),
		action.TempoDown:          gpio.NewButton(port, gpio.ButtonDown, true),
		action.TimeSignatureCycle: gpio.NewButton(port, gpio.ButtonTimeSignature, true),
	})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	return m, port, &now
}

func TestManager_ButtonsDriveLines(t *testing.T) {
	m, port, _ := newTestManager()

	m.Trigger(action.TempoUp, event.Press)
	assert.False(t, port.IsHigh(gpio.ButtonUp), "pressed line pulled low")
	assert.True(t, port.IsHigh(gpio.ButtonDown))

	// rapid release and re-press reach the line unfiltered
	m.Trigger(action.TempoUp, event.Release)
	assert.True(t, port.IsHigh(gpio.ButtonUp))
	m.Trigger(action.TempoUp, event.Press)
	assert.False(t, port.IsHigh(gpio.ButtonUp))

	m.ReleaseAll()
	assert.Equal(t, gpio.ButtonMask, port.Read()&gpio.ButtonMask)
}

func TestManager_AppActionsDebounced(t *testing.T) {
	tests := []struct {
		name        string
		eventType   event.Type
		timeBetween time.Duration
		expectCalls int
	}{
		{name: "rapid press is debounced", eventType: event.Press, timeBetween: 100 * time.Millisecond, expectCalls: 1},
		{name: "slow press passes", eventType: event.Press, timeBetween: 400 * time.Millisecond, expectCalls: 2},
		{name: "rapid release is debounced", eventType: event.Release, timeBetween: 10 * time.Millisecond, expectCalls: 1},
		{name: "hold is never debounced", eventType: event.Hold, timeBetween: 10 * time.Millisecond, expectCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, now := newTestManager()
			calls := 0
			m.On(action.ToggleMute, tt.eventType, func() { calls++ })

			m.Trigger(action.ToggleMute, tt.eventType)
			*now = now.Add(tt.timeBetween)
			m.Trigger(action.ToggleMute, tt.eventType)

			assert.Equal(t, tt.expectCalls, calls)
		})
	}
}

func TestManager_ActionsIndependent(t *testing.T) {
	m, _, _ := newTestManager()
	var fired []action.Action
	m.On(action.Snapshot, event.Press, func() { fired = append(fired, action.Snapshot) })
	m.On(action.Quit, event.Press, func() { fired = append(fired, action.Quit) })

	m.Trigger(action.Snapshot, event.Press)
	m.Trigger(action.Quit, event.Press)
	m.Trigger(action.Snapshot, event.Press)

	assert.Equal(t, []action.Action{action.Snapshot, action.Quit}, fired)
}

func TestDefaultKeyMap(t *testing.T) {
	tests := []struct {
		key    string
		action action.Action
	}{
		{"Up", action.TempoUp},
		{"Down", action.TempoDown},
		{"Space", action.TimeSignatureCycle},
		{"q", action.Quit},
		{"m", action.ToggleMute},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := GetDefaultMapping(tt.key)
			assert.True(t, ok)
			assert.Equal(t, tt.action, got)
		})
	}

	_, ok := GetDefaultMapping("F1")
	assert.False(t, ok)
}

func TestActionInfo(t *testing.T) {
	assert.True(t, action.TempoUp.IsButton())
	assert.True(t, action.TimeSignatureCycle.IsButton())
	assert.False(t, action.Quit.IsButton())

	info, ok := action.GetInfo(action.LogLevelIncrease)
	assert.True(t, ok)
	assert.Equal(t, action.CategoryDebug, info.Category)
	assert.Equal(t, "TempoDown", action.TempoDown.String())
}

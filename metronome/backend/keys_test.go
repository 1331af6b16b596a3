package backend_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-metronome/metronome/backend"
	"github.com/valerio/go-metronome/metronome/input/action"
	"github.com/valerio/go-metronome/metronome/input/event"
)

func TestKeyTracker_PressHoldRelease(t *testing.T) {
	k := backend.NewKeyTracker(100 * time.Millisecond)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	k.Press(action.TempoUp, now)
	assert.Equal(t, []backend.InputEvent{{Action: action.TempoUp, Type: event.Press}}, k.Events(now))

	// auto-repeat keeps it alive
	now = now.Add(50 * time.Millisecond)
	k.Press(action.TempoUp, now)
	assert.Equal(t, []backend.InputEvent{{Action: action.TempoUp, Type: event.Hold}}, k.Events(now))

	now = now.Add(80 * time.Millisecond)
	assert.Equal(t, []backend.InputEvent{{Action: action.TempoUp, Type: event.Hold}}, k.Events(now))

	now = now.Add(30 * time.Millisecond)
	assert.Equal(t, []backend.InputEvent{{Action: action.TempoUp, Type: event.Release}}, k.Events(now))
	assert.Empty(t, k.Events(now))
}

func TestKeyTracker_AppActionsAreOneShot(t *testing.T) {
	k := backend.NewKeyTracker(0)
	now := time.Now()

	k.Press(action.ToggleMute, now)
	k.Quit()
	assert.Equal(t, []backend.InputEvent{
		{Action: action.ToggleMute, Type: event.Press},
		{Action: action.Quit, Type: event.Press},
	}, k.Events(now))
	assert.Empty(t, k.Events(now))
}

//go:build sdl2

package sdl2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-metronome/metronome/backend"
	"github.com/valerio/go-metronome/metronome/input/action"
	"github.com/valerio/go-metronome/metronome/input/event"
	"github.com/veandco/go-sdl2/sdl"
)

func TestKeyMapping(t *testing.T) {
	assert.Equal(t, action.TempoUp, keyMapping[sdl.K_UP])
	assert.Equal(t, action.TempoDown, keyMapping[sdl.K_j])
	assert.Equal(t, action.TimeSignatureCycle, keyMapping[sdl.K_SPACE])
	assert.Equal(t, action.Quit, keyMapping[sdl.K_ESCAPE])
}

func TestHandleEventPressRelease(t *testing.T) {
	b := New()

	down := &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Sym: sdl.K_UP}}
	repeat := &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Repeat: 1, Keysym: sdl.Keysym{Sym: sdl.K_UP}}
	up := &sdl.KeyboardEvent{Type: sdl.KEYUP, Keysym: sdl.Keysym{Sym: sdl.K_UP}}
	muteUp := &sdl.KeyboardEvent{Type: sdl.KEYUP, Keysym: sdl.Keysym{Sym: sdl.K_m}}

	for _, e := range []sdl.Event{down, repeat, up, muteUp} {
		b.handleEvent(e)
	}

	assert.Equal(t, []backend.InputEvent{
		{Action: action.TempoUp, Type: event.Press},
		{Action: action.TempoUp, Type: event.Release},
	}, b.eventQueue)
}

func TestQuitEventCallsBack(t *testing.T) {
	quit := false
	b := New()
	b.running = true
	b.callbacks.OnQuit = func() { quit = true }

	b.handleEvent(&sdl.QuitEvent{Type: sdl.QUIT})

	assert.True(t, quit)
	assert.False(t, b.running)
}

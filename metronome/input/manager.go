package input

import (
	"time"

	"github.com/valerio/go-metronome/metronome/gpio"
	"github.com/valerio/go-metronome/metronome/input/action"
	"github.com/valerio/go-metronome/metronome/input/event"
)

const (
	// debounceDuration is the minimum time between debounced events
	debounceDuration = 300 * time.Millisecond
)

// Manager handles input actions and their associated callbacks
type Manager struct {
	handlers      map[action.Action]map[event.Type][]func()
	lastTriggered map[action.Action]map[event.Type]time.Time
	buttons       map[action.Action]gpio.Button
	now           func() time.Time
}

// NewManager wires front panel actions to the given buttons.
func NewManager(buttons map[action.Action]gpio.Button) *Manager {
	if buttons == nil {
		buttons = map[action.Action]gpio.Button{}
	}
	return &Manager{
		handlers:      make(map[action.Action]map[event.Type][]func()),
		lastTriggered: make(map[action.Action]map[event.Type]time.Time),
		buttons:       buttons,
		now:           time.Now,
	}
}

// On registers a callback for a specific action and event type
func (m *Manager) On(act action.Action, evt event.Type, callback func()) {
	if m.handlers[act] == nil {
		m.handlers[act] = make(map[event.Type][]func())
	}
	if m.lastTriggered[act] == nil {
		m.lastTriggered[act] = make(map[event.Type]time.Time)
	}

	m.handlers[act][evt] = append(m.handlers[act][evt], callback)
}

// Trigger handles the given action and event type.
func (m *Manager) Trigger(act action.Action, evt event.Type) {
	// Buttons go straight to the input lines: contact debouncing is the
	// firmware's job, and holds must reach it unfiltered.
	if button, ok := m.buttons[act]; ok {
		switch evt {
		case event.Press, event.Hold:
			button.Press()
		case event.Release:
			button.Release()
		}
		return
	}

	// Debounce Press and Release events
	if evt == event.Press || evt == event.Release {
		now := m.now()
		if m.lastTriggered[act] == nil {
			m.lastTriggered[act] = make(map[event.Type]time.Time)
		}
		lastTime := m.lastTriggered[act][evt]
		if now.Sub(lastTime) < debounceDuration {
			return
		}
		m.lastTriggered[act][evt] = now
	}

	if m.handlers[act] != nil && len(m.handlers[act][evt]) > 0 {
		for _, callback := range m.handlers[act][evt] {
			callback()
		}
	}
}

// ReleaseAll lets every button go, e.g. when a backend loses focus.
func (m *Manager) ReleaseAll() {
	for _, button := range m.buttons {
		button.Release()
	}
}

package backend

import (
	"log/slog"
	"time"

	"github.com/valerio/go-metronome/metronome/input/action"
	"github.com/valerio/go-metronome/metronome/input/event"
)

// KeyTracker turns press-only key reports (terminal auto-repeat) into
// Press, Hold and Release events. A key counts as held while presses keep
// arriving within the hold timeout.
type KeyTracker struct {
	timeout    time.Duration
	keyStates  map[action.Action]time.Time // Last time each key was pressed
	activeKeys map[action.Action]bool      // Keys active in previous update
	queue      []InputEvent                // One-shot events for non-button actions
}

func NewKeyTracker(timeout time.Duration) *KeyTracker {
	if timeout <= 0 {
		timeout = DefaultKeyHold
	}
	return &KeyTracker{
		timeout:    timeout,
		keyStates:  make(map[action.Action]time.Time),
		activeKeys: make(map[action.Action]bool),
	}
}

// Press records a key report.
func (k *KeyTracker) Press(act action.Action, now time.Time) {
	if !act.IsButton() {
		k.queue = append(k.queue, InputEvent{Action: act, Type: event.Press})
		return
	}
	k.keyStates[act] = now
}

// Events returns the events for this update.
func (k *KeyTracker) Events(now time.Time) []InputEvent {
	var events []InputEvent

	// Track which keys are currently active this update
	currentlyActive := make(map[action.Action]bool)

	for act, lastPressed := range k.keyStates {
		if now.Sub(lastPressed) < k.timeout {
			currentlyActive[act] = true

			if !k.activeKeys[act] {
				slog.Debug("Key press", "action", act)
				events = append(events, InputEvent{Action: act, Type: event.Press})
			} else {
				events = append(events, InputEvent{Action: act, Type: event.Hold})
			}
		} else {
			delete(k.keyStates, act)
		}
	}

	// Check for released keys (were active last update but not this one)
	for act := range k.activeKeys {
		if !currentlyActive[act] {
			slog.Debug("Key release", "action", act)
			events = append(events, InputEvent{Action: act, Type: event.Release})
		}
	}

	k.activeKeys = currentlyActive

	events = append(events, k.queue...)
	k.queue = nil
	return events
}

// Quit queues a quit request, e.g. from a signal handler running on the
// update goroutine.
func (k *KeyTracker) Quit() {
	k.queue = append(k.queue, InputEvent{Action: action.Quit, Type: event.Press})
}

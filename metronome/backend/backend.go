package backend

import (
	"log/slog"
	"time"

	"github.com/valerio/go-metronome/metronome/display"
	"github.com/valerio/go-metronome/metronome/input/action"
	"github.com/valerio/go-metronome/metronome/input/event"
	"github.com/valerio/go-metronome/metronome/rhythm"
)

// Backend represents a complete host platform for the metronome
// (rendering + input).
// Backends are responsible for:
// - Rendering the display, LED and beat state to their specific output
// - Translating platform-specific input events to InputEvents
// - Handling backend-specific features (log panes, test patterns)
type Backend interface {
	// Init configures the backend with the provided configuration.
	// This is a required step before calling Update.
	Init(config Config) error

	// Update renders the view and returns the input events collected since
	// the previous call.
	Update(view View) ([]InputEvent, error)

	// Cleanup resources when shutting down
	Cleanup() error
}

// Config holds configuration for backends
type Config struct {
	Title       string
	Scale       int
	TestPattern bool // Display the LCD self test instead of the metronome screen
	// KeyHold keeps a key down this long after its last press on platforms
	// that only report presses (terminals).
	KeyHold time.Duration
	// LogLevel is the shared log filter; the metronome adjusts it on
	// LogLevelIncrease and LogLevelDecrease.
	LogLevel  *slog.LevelVar
	Callbacks Callbacks
}

// Callbacks allows backends to communicate with the metronome
type Callbacks struct {
	OnQuit func() // Backend requests shutdown (e.g., window close, signal)
}

// InputEvent is a platform independent key event.
type InputEvent struct {
	Action action.Action
	Type   event.Type
}

// View is everything a backend draws.
type View struct {
	Lines         [display.Rows]string
	LCDVersion    uint64
	LED           bool
	Buzzer        bool
	Tempo         rhythm.Tempo
	TimeSignature rhythm.TimeSignature
	Beat          uint64
	Accent        bool
	Muted         bool
	Elapsed       time.Duration
	// Panel is the front panel debouncer phase, for status lines.
	Panel string
}

// DefaultKeyHold is slightly longer than a typical terminal key repeat interval.
const DefaultKeyHold = 100 * time.Millisecond

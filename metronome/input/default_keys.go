package input

import "github.com/valerio/go-metronome/metronome/input/action"

// DefaultKeyMap provides default key mappings that work across backends.
// Backends can use these mappings as a base and override/extend as needed.
var DefaultKeyMap = map[string]action.Action{
	// Front panel
	"Up":    action.TempoUp,
	"k":     action.TempoUp,
	"Right": action.TempoUp,
	"Down":  action.TempoDown,
	"j":     action.TempoDown,
	"Left":  action.TempoDown,
	"t":     action.TimeSignatureCycle,
	"Space": action.TimeSignatureCycle,
	"Tab":   action.TimeSignatureCycle,

	// Host controls
	"m":      action.ToggleMute,
	"F9":     action.Snapshot,
	"s":      action.Snapshot,
	"Escape": action.Quit,
	"q":      action.Quit,

	// Debug controls
	"+": action.LogLevelIncrease,
	"=": action.LogLevelIncrease, // Alternative without shift
	"-": action.LogLevelDecrease,
	"_": action.LogLevelDecrease, // Alternative with shift
}

// GetDefaultMapping returns the default action for a key, if one exists
func GetDefaultMapping(key string) (action.Action, bool) {
	act, ok := DefaultKeyMap[key]
	return act, ok
}

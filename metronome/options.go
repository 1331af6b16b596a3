package metronome

import (
	"log/slog"

	"github.com/valerio/go-metronome/metronome/display"
)

type options struct {
	displays    []display.Driver
	snapshotDir string
	logLevel    *slog.LevelVar
	muted       bool
}

// Option customizes a Metronome.
type Option func(*options)

// WithDisplay mirrors the LCD onto additional drivers, e.g. a serial LCD.
func WithDisplay(drivers ...display.Driver) Option {
	return func(o *options) {
		o.displays = append(o.displays, drivers...)
	}
}

// WithSnapshotDir sets where the Snapshot action saves PNGs.
func WithSnapshotDir(dir string) Option {
	return func(o *options) {
		o.snapshotDir = dir
	}
}

// WithLogLevel shares the log filter adjusted by the log level actions.
func WithLogLevel(level *slog.LevelVar) Option {
	return func(o *options) {
		o.logLevel = level
	}
}

// WithMuted starts with the speaker muted.
func WithMuted(muted bool) Option {
	return func(o *options) {
		o.muted = muted
	}
}

package headless

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/valerio/go-metronome/metronome/backend"
	"github.com/valerio/go-metronome/metronome/display"
	"github.com/valerio/go-metronome/metronome/input/action"
	"github.com/valerio/go-metronome/metronome/input/event"
)

// Backend implements the Backend interface for automated testing and batch processing
type Backend struct {
	config         backend.Config
	frameCount     int
	maxFrames      int
	snapshotConfig SnapshotConfig
	script         []Step
	next           int
	last           backend.View
}

// SnapshotConfig holds configuration for LCD snapshots
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // Save snapshot every N frames
	Directory string // Directory to save snapshots
	Name      string // Prefix for snapshot filenames
}

// Step is a scripted input event, delivered on the first frame whose
// elapsed run time reaches At.
type Step struct {
	At     time.Duration
	Action action.Action
	Type   event.Type
}

// Hold scripts a button held from start for the given duration.
func Hold(act action.Action, start, duration time.Duration) []Step {
	return []Step{
		{At: start, Action: act, Type: event.Press},
		{At: start + duration, Action: act, Type: event.Release},
	}
}

func New(maxFrames int, snapshotConfig SnapshotConfig, script ...Step) *Backend {
	steps := append([]Step(nil), script...)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].At < steps[j].At })
	return &Backend{
		maxFrames:      maxFrames,
		snapshotConfig: snapshotConfig,
		script:         steps,
	}
}

func (h *Backend) Init(config backend.Config) error {
	h.config = config

	if config.TestPattern {
		slog.Info("Headless test pattern mode, exiting after first frame")
		return nil
	}

	slog.Info("Running headless mode",
		"frames", h.maxFrames,
		"script_steps", len(h.script),
		"snapshot_interval", h.snapshotConfig.Interval,
		"snapshot_dir", h.snapshotConfig.Directory)

	return nil
}

// Update processes a frame and handles snapshots
func (h *Backend) Update(view backend.View) ([]backend.InputEvent, error) {
	var events []backend.InputEvent
	h.last = view

	if h.config.TestPattern {
		if h.snapshotConfig.Enabled {
			h.saveSnapshot(view)
		}
		return []backend.InputEvent{{Action: action.Quit, Type: event.Press}}, nil
	}

	h.frameCount++

	for h.next < len(h.script) && h.script[h.next].At <= view.Elapsed {
		step := h.script[h.next]
		slog.Debug("Scripted input", "action", step.Action, "type", step.Type, "at", view.Elapsed)
		events = append(events, backend.InputEvent{Action: step.Action, Type: step.Type})
		h.next++
	}

	if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval == 0 {
		h.saveSnapshot(view)
	}

	if h.frameCount%100 == 0 {
		slog.Info("Frame progress", "completed", h.frameCount, "total", h.maxFrames,
			"tempo", view.Tempo, "time_signature", view.TimeSignature, "beat", view.Beat)
	}

	if h.maxFrames > 0 && h.frameCount >= h.maxFrames {
		if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval != 0 {
			h.saveSnapshot(view)
		}

		if h.snapshotConfig.Enabled {
			slog.Info("Headless execution completed", "frames", h.frameCount, "elapsed", view.Elapsed, "png_snapshots_saved_to", h.snapshotConfig.Directory)
		} else {
			slog.Info("Headless execution completed", "frames", h.frameCount, "elapsed", view.Elapsed)
		}

		events = append(events, backend.InputEvent{Action: action.Quit, Type: event.Press})
	}

	return events, nil
}

func (h *Backend) Cleanup() error {
	return nil
}

// Frames returns the number of frames processed so far.
func (h *Backend) Frames() int {
	return h.frameCount
}

// Last returns the most recent view passed to Update.
func (h *Backend) Last() backend.View {
	return h.last
}

// CreateSnapshotConfig creates a snapshot configuration from CLI parameters
func CreateSnapshotConfig(interval int, directory, name string) (SnapshotConfig, error) {
	config := SnapshotConfig{
		Enabled:  interval > 0,
		Interval: interval,
		Name:     name,
	}

	if !config.Enabled {
		return config, nil
	}

	if config.Name == "" {
		config.Name = "metronome"
	}

	if directory == "" {
		tempDir, err := os.MkdirTemp("", "metronome-snapshots-*")
		if err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %v", err)
		}
		config.Directory = tempDir
	} else {
		if err := os.MkdirAll(directory, 0755); err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %v", err)
		}
		config.Directory = directory
	}

	return config, nil
}

func (h *Backend) saveSnapshot(view backend.View) {
	baseName := fmt.Sprintf("%s_frame_%d", h.snapshotConfig.Name, h.frameCount)

	if _, err := display.SavePNGToDir(view.Lines, baseName, h.snapshotConfig.Directory); err != nil {
		slog.Error("Failed to save PNG snapshot", "frame", h.frameCount, "error", err)
	}
}

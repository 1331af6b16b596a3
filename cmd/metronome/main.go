package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"
	"github.com/valerio/go-metronome/metronome"
	"github.com/valerio/go-metronome/metronome/audio/speaker"
	"github.com/valerio/go-metronome/metronome/backend"
	"github.com/valerio/go-metronome/metronome/backend/console"
	"github.com/valerio/go-metronome/metronome/backend/headless"
	"github.com/valerio/go-metronome/metronome/backend/sdl2"
	"github.com/valerio/go-metronome/metronome/backend/terminal"
	"github.com/valerio/go-metronome/metronome/config"
	"github.com/valerio/go-metronome/metronome/display"
	"github.com/valerio/go-metronome/metronome/rhythm"
	"github.com/valerio/go-metronome/metronome/timing"
)

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		slog.Error("Error running metronome", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "metronome"
	app.Description = "A digital metronome: two-line LCD, LED and buzzer, three front panel buttons"
	app.Usage = "metronome [options]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "Path to a YAML configuration file",
		},
		cli.IntFlag{
			Name:  "tempo",
			Usage: fmt.Sprintf("Initial tempo in bpm (%d-%d)", rhythm.MinTempo, rhythm.MaxTempo),
		},
		cli.StringFlag{
			Name:  "timesig",
			Usage: "Initial time signature (2/2, 2/4, 4/4, 3/8, 5/8, 6/8)",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Backend to use: terminal, console, headless or sdl2",
			Value: "terminal",
		},
		cli.DurationFlag{
			Name:  "duration",
			Usage: "Simulated run length in headless mode (required for headless)",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save LCD snapshots every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save LCD snapshots (default: temp directory in headless mode, working directory otherwise)",
		},
		cli.StringFlag{
			Name:  "wav",
			Usage: "Record the buzzer to a WAV file",
		},
		cli.StringFlag{
			Name:  "midi",
			Usage: "Record the beats to a Standard MIDI File",
		},
		cli.StringFlag{
			Name:  "serial",
			Usage: "Mirror the display to a serial LCD on this port",
		},
		cli.IntFlag{
			Name:  "baud",
			Usage: "Serial LCD baud rate",
		},
		cli.BoolFlag{
			Name:  "mute",
			Usage: "Start with the speaker muted",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn or error",
		},
		cli.BoolFlag{
			Name:  "test-pattern",
			Usage: "Light every LCD cell instead of running the metronome screen",
		},
	}
	app.Action = runMetronome
	return app
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if c.IsSet("tempo") {
		cfg.Tempo = rhythm.Tempo(c.Int("tempo"))
	}
	if label := c.String("timesig"); label != "" {
		ts, err := rhythm.ParseTimeSignature(label)
		if err != nil {
			return cfg, err
		}
		cfg.TimeSignature = ts
	}
	if port := c.String("serial"); port != "" {
		cfg.Display.SerialPort = port
	}
	if c.IsSet("baud") {
		cfg.Display.SerialBaud = c.Int("baud")
	}
	if level := c.String("log-level"); level != "" {
		cfg.LogLevel = level
	}

	return cfg, cfg.Validate()
}

func runMetronome(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logLevel := new(slog.LevelVar)
	logLevel.Set(level)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	backendName := c.String("backend")
	opts := []metronome.Option{
		metronome.WithLogLevel(logLevel),
		metronome.WithMuted(c.Bool("mute")),
		metronome.WithSnapshotDir(c.String("snapshot-dir")),
	}

	if cfg.Display.SerialPort != "" {
		lcd, err := display.OpenSerLCD(cfg.Display.SerialPort, cfg.Display.SerialBaud)
		if err != nil {
			return err
		}
		defer lcd.Close()
		opts = append(opts, metronome.WithDisplay(lcd))
	}

	m, err := metronome.New(cfg, opts...)
	if err != nil {
		return err
	}

	finish := setupRecording(m, c.String("wav"), c.String("midi"))

	bcfg := backend.Config{
		Title:       "Metronome",
		TestPattern: c.Bool("test-pattern"),
		KeyHold:     cfg.Input.KeyHold,
		LogLevel:    logLevel,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch backendName {
	case "headless":
		err = runHeadless(ctx, m, cfg, bcfg, c)
	case "terminal", "console", "sdl2":
		err = runRealtime(ctx, m, cfg, bcfg, backendName)
	default:
		return fmt.Errorf("unknown backend %q", backendName)
	}

	if recErr := finish(); err == nil {
		err = recErr
	}
	return err
}

func runHeadless(ctx context.Context, m *metronome.Metronome, cfg config.Config, bcfg backend.Config, c *cli.Context) error {
	duration := c.Duration("duration")
	if duration <= 0 && !bcfg.TestPattern {
		return errors.New("headless mode requires --duration option with a positive value")
	}

	snapshots, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), "metronome")
	if err != nil {
		return err
	}

	frames := int(duration / cfg.FrameInterval)
	if frames == 0 {
		frames = 1
	}
	h := headless.New(frames, snapshots)

	return m.Simulate(ctx, h, bcfg, timing.NewSimulatedClock(time.Now()))
}

func runRealtime(ctx context.Context, m *metronome.Metronome, cfg config.Config, bcfg backend.Config, name string) error {
	var b backend.Backend
	switch name {
	case "terminal":
		b = terminal.New()
	case "console":
		b = console.New()
	case "sdl2":
		b = sdl2.New()
	}

	if cfg.Audio.Enabled {
		out, err := speaker.Open(m.Synth(), m.Synth().SampleRate())
		if err != nil {
			slog.Warn("Audio disabled", "error", err)
		} else {
			defer out.Close()
		}
	}

	return m.Run(ctx, b, bcfg)
}

// setupRecording enables the requested recorders and returns the function
// that writes them out once the run is over.
func setupRecording(m *metronome.Metronome, wavPath, midiPath string) func() error {
	var writers []func() error

	if wavPath != "" {
		rec := m.RecordAudio()
		writers = append(writers, func() error {
			if err := rec.WriteWAV(wavPath); err != nil {
				return err
			}
			slog.Info("Audio recorded", "path", wavPath, "duration", rec.Duration())
			return nil
		})
	}

	if midiPath != "" {
		clicks := m.RecordClicks("Metronome")
		writers = append(writers, func() error {
			if err := clicks.WriteFile(midiPath); err != nil {
				return err
			}
			slog.Info("Click track recorded", "path", midiPath, "beats", len(clicks.Clicks()))
			return nil
		})
	}

	return func() error {
		var errs []error
		for _, write := range writers {
			errs = append(errs, write())
		}
		return errors.Join(errs...)
	}
}

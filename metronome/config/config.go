package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/valerio/go-metronome/metronome/input"
	"github.com/valerio/go-metronome/metronome/rhythm"
	"github.com/valerio/go-metronome/metronome/sequencer"
	"github.com/valerio/go-metronome/metronome/timer"
)

// Config holds everything needed to build and run a metronome.
type Config struct {
	Tempo          rhythm.Tempo         `yaml:"tempo"`
	TimeSignature  rhythm.TimeSignature `yaml:"time_signature"`
	ClockHz        uint32               `yaml:"clock_hz"`
	Prescaler      uint32               `yaml:"prescaler"`
	Tones          sequencer.ToneMap    `yaml:"tones"`
	RetoneOnChange bool                 `yaml:"retone_on_change"`

	Input   InputConfig   `yaml:"input"`
	Display DisplayConfig `yaml:"display"`
	Audio   AudioConfig   `yaml:"audio"`

	// FrameInterval paces backend updates.
	FrameInterval time.Duration `yaml:"frame_interval"`
	LogLevel      string        `yaml:"log_level"`
}

type InputConfig struct {
	// ActiveHigh reads a high input line as pressed, with no pull-ups.
	ActiveHigh        bool          `yaml:"active_high"`
	DebounceThreshold int           `yaml:"debounce_threshold"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	RepeatInterval    time.Duration `yaml:"repeat_interval"`
	SettleDelay       time.Duration `yaml:"settle_delay"`
	// KeyHold is how long a key stays down after its last press event on
	// backends that only report presses.
	KeyHold time.Duration `yaml:"key_hold"`
}

type DisplayConfig struct {
	SerialPort string `yaml:"serial_port"`
	SerialBaud int    `yaml:"serial_baud"`
}

type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate int     `yaml:"sample_rate"`
	Volume     float64 `yaml:"volume"`
}

// Default returns the board's power-on configuration.
func Default() Config {
	return Config{
		Tempo:         rhythm.DefaultTempo,
		TimeSignature: rhythm.DefaultTimeSignature,
		ClockHz:       timer.DefaultClockHz,
		Prescaler:     timer.DefaultPrescaler,
		Tones:         sequencer.DefaultToneMap,
		Input: InputConfig{
			DebounceThreshold: input.DefaultDebounceConfig.Threshold,
			PollInterval:      time.Millisecond,
			RepeatInterval:    input.DefaultDebounceConfig.RepeatInterval,
			SettleDelay:       input.DefaultDebounceConfig.SettleDelay,
			KeyHold:           100 * time.Millisecond,
		},
		Display: DisplayConfig{
			SerialBaud: 9600,
		},
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: 44100,
			Volume:     0.4,
		},
		FrameInterval: 16 * time.Millisecond,
		LogLevel:      "info",
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrap(err, "failed to open config")
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Validate rejects values the core treats as invariant violations.
func (c Config) Validate() error {
	if !c.Tempo.Valid() {
		return errors.Errorf("tempo %d outside [%d, %d]", c.Tempo, rhythm.MinTempo, rhythm.MaxTempo)
	}
	if !c.TimeSignature.Valid() {
		return errors.Errorf("unknown time signature %d", c.TimeSignature)
	}
	if c.ClockHz == 0 || c.Prescaler == 0 {
		return errors.New("clock_hz and prescaler must be positive")
	}
	for name, tone := range map[string]sequencer.Tone{"accent": c.Tones.Accent, "normal": c.Tones.Normal} {
		if tone.Frequency == 0 || tone.PulseTicks == 0 {
			return errors.Errorf("%s tone needs a positive frequency and pulse length", name)
		}
		if limit := c.ClockHz / c.Prescaler; tone.Frequency > limit {
			return errors.Errorf("%s tone frequency %d above timer limit %d", name, tone.Frequency, limit)
		}
		if low := timer.MinFrequency(c.ClockHz, c.Prescaler); tone.Frequency < low {
			return errors.Errorf("%s tone frequency %d below timer limit %d", name, tone.Frequency, low)
		}
		if rhythm.TicksPerBeat(tone.Frequency, rhythm.MaxTempo) == 0 {
			return errors.Errorf("%s tone frequency %d too low to count a beat at %d bpm", name, tone.Frequency, rhythm.MaxTempo)
		}
	}
	if c.Input.DebounceThreshold <= 0 {
		return errors.New("input.debounce_threshold must be positive")
	}
	if c.Input.PollInterval <= 0 || c.Input.RepeatInterval <= 0 || c.Input.SettleDelay < 0 {
		return errors.New("input intervals must be positive")
	}
	if c.FrameInterval <= 0 {
		return errors.New("frame_interval must be positive")
	}
	if c.Audio.SampleRate <= 0 {
		return errors.New("audio.sample_rate must be positive")
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return errors.Errorf("audio.volume %.2f outside [0, 1]", c.Audio.Volume)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Debounce returns the debouncer settings.
func (c Config) Debounce() input.DebounceConfig {
	return input.DebounceConfig{
		Threshold:      c.Input.DebounceThreshold,
		RepeatInterval: c.Input.RepeatInterval,
		SettleDelay:    c.Input.SettleDelay,
	}
}

// ParseLogLevel accepts debug, info, warn and error.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, errors.Wrapf(err, "invalid log level %q", s)
	}
	return level, nil
}

// StepLogLevel moves a log filter one level more (+1) or less (-1)
// verbose, staying within debug..error.
func StepLogLevel(level slog.Level, direction int) slog.Level {
	switch {
	case direction > 0 && level > slog.LevelDebug:
		return level - 4
	case direction < 0 && level < slog.LevelError:
		return level + 4
	}
	return level
}

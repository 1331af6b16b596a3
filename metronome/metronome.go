package metronome

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/valerio/go-metronome/metronome/audio"
	"github.com/valerio/go-metronome/metronome/config"
	"github.com/valerio/go-metronome/metronome/display"
	"github.com/valerio/go-metronome/metronome/gpio"
	"github.com/valerio/go-metronome/metronome/input"
	"github.com/valerio/go-metronome/metronome/input/action"
	"github.com/valerio/go-metronome/metronome/input/event"
	"github.com/valerio/go-metronome/metronome/record"
	"github.com/valerio/go-metronome/metronome/rhythm"
	"github.com/valerio/go-metronome/metronome/sequencer"
	"github.com/valerio/go-metronome/metronome/timer"
	"github.com/valerio/go-metronome/metronome/timing"
)

// maxTickChunk bounds a single Timer.Tick call during simulated advances.
const maxTickChunk = 1 << 24

// Metronome is the board: port, timer, sequencer, front panel and display,
// plus the host-side audio and recording taps.
type Metronome struct {
	cfg config.Config

	port      *gpio.Port
	timer     *timer.Timer
	seq       *sequencer.Sequencer
	manager   *input.Manager
	debouncer *input.Debouncer

	lcd     *display.CharLCD
	driver  display.Driver
	adapter *display.Adapter

	synth    *audio.Synth
	recorder *audio.Recorder
	clicks   *record.ClickTrack

	snapshotDir string
	logLevel    *slog.LevelVar
	started     bool

	// stop ends the active Run or Simulate; nil outside one.
	stop context.CancelFunc
}

// New builds a metronome from a validated configuration. Nothing runs until
// Start.
func New(cfg config.Config, opts ...Option) (*Metronome, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Metronome{
		cfg:         cfg,
		port:        gpio.NewPort(),
		timer:       timer.New(cfg.ClockHz, cfg.Prescaler),
		lcd:         display.NewCharLCD(),
		snapshotDir: o.snapshotDir,
		logLevel:    o.logLevel,
	}
	if m.logLevel == nil {
		m.logLevel = new(slog.LevelVar)
	}

	m.seq = sequencer.New(m.timer, m.port, sequencer.Options{
		Tones:          cfg.Tones,
		Tempo:          cfg.Tempo,
		TimeSignature:  cfg.TimeSignature,
		RetoneOnChange: cfg.RetoneOnChange,
		IndicatorMask:  gpio.IndicatorMask,
	})
	m.seq.OnBeat = m.onBeat

	activeLow := !cfg.Input.ActiveHigh
	up := gpio.NewButton(m.port, gpio.ButtonUp, activeLow)
	down := gpio.NewButton(m.port, gpio.ButtonDown, activeLow)
	timeSig := gpio.NewButton(m.port, gpio.ButtonTimeSignature, activeLow)

	m.manager = input.NewManager(map[action.Action]gpio.Button{
		action.TempoUp:            up,
		action.TempoDown:          down,
		action.TimeSignatureCycle: timeSig,
	})
	m.debouncer = input.NewDebouncer(cfg.Debounce(), panel{m}, up, down, timeSig)

	if len(o.displays) > 0 {
		m.driver = append(display.Tee{m.lcd}, o.displays...)
	} else {
		m.driver = m.lcd
	}
	m.adapter = display.NewAdapter(m.driver)

	m.synth = audio.NewSynth(buzzer{m}, cfg.Audio.SampleRate, cfg.Audio.Volume)
	m.synth.SetMuted(o.muted)

	m.registerActions()
	return m, nil
}

// Start performs the power-on sequence: port directions and pull-ups, timer
// programming, the first screen, then the interrupt.
func (m *Metronome) Start() error {
	if m.started {
		return errors.New("metronome already started")
	}

	m.port.SetDirection(gpio.IndicatorMask)
	if m.cfg.Input.ActiveHigh {
		m.port.Write(0)
	} else {
		// pull-ups on the button inputs
		m.port.Write(gpio.ButtonMask)
	}

	m.timer.DisableInterrupt()
	m.timer.CompareMatchHandler = m.seq.HandleInterrupt
	m.seq.Reset()

	if err := m.driver.Init(); err != nil {
		return errors.Wrap(err, "display init failed")
	}
	m.render()

	m.timer.EnableInterrupt()
	m.started = true

	slog.Info("Metronome started",
		"tempo", m.seq.Tempo(),
		"time_signature", m.seq.TimeSignature(),
		"clock_hz", m.cfg.ClockHz,
		"ticks_per_beat", m.seq.Status().TicksPerBeat)
	return nil
}

// Poll runs one pass of the main loop's button handling.
func (m *Metronome) Poll(now time.Time) {
	m.debouncer.Poll(now)
}

// Advance feeds d worth of CPU cycles to the timer, running every interrupt
// that falls inside, then captures the audio for that span.
func (m *Metronome) Advance(d time.Duration) {
	remaining := timing.CyclesFor(d, m.cfg.ClockHz)
	for remaining > 0 {
		chunk := remaining
		if chunk > maxTickChunk {
			chunk = maxTickChunk
		}
		m.timer.Tick(int(chunk))
		remaining -= chunk
	}
	m.capture()
}

func (m *Metronome) capture() {
	if m.recorder != nil {
		m.recorder.CaptureUntil(m.timer.Elapsed())
	}
}

func (m *Metronome) render() {
	m.adapter.Render(int(m.seq.Tempo()), m.seq.TimeSignature().Label())
}

func (m *Metronome) onBeat(b sequencer.Beat) {
	slog.Debug("Beat", "index", b.Index, "accent", b.Accent, "tempo", b.Tempo, "time_signature", b.TimeSignature)

	if m.clicks == nil || b.Tone.Frequency == 0 {
		return
	}
	m.clicks.Add(record.Click{
		At:            m.timer.Elapsed(),
		Length:        time.Duration(b.Tone.PulseTicks) * time.Second / time.Duration(b.Tone.Frequency),
		Accent:        b.Accent,
		Tempo:         b.Tempo,
		TimeSignature: b.TimeSignature,
	})
}

// RecordAudio captures the buzzer into a recorder from now on. Call before
// Start to include the first beat.
func (m *Metronome) RecordAudio() *audio.Recorder {
	if m.recorder == nil {
		m.recorder = audio.NewRecorder(buzzer{m}, m.cfg.Audio.SampleRate, m.cfg.Audio.Volume)
	}
	return m.recorder
}

// RecordClicks collects every beat into a click track. Call before Start.
func (m *Metronome) RecordClicks(name string) *record.ClickTrack {
	if m.clicks == nil {
		m.clicks = record.NewClickTrack(name)
	}
	return m.clicks
}

// Synth is the speaker feed.
func (m *Metronome) Synth() *audio.Synth {
	return m.synth
}

func (m *Metronome) Tempo() rhythm.Tempo {
	return m.seq.Tempo()
}

func (m *Metronome) TimeSignature() rhythm.TimeSignature {
	return m.seq.TimeSignature()
}

// Status is safe to call from any goroutine.
func (m *Metronome) Status() sequencer.Status {
	return m.seq.Status()
}

// Elapsed is the board time: cycles fed to the timer so far.
func (m *Metronome) Elapsed() time.Duration {
	return m.timer.Elapsed()
}

// Display returns the current LCD rows.
func (m *Metronome) Display() [display.Rows]string {
	return m.lcd.Lines()
}

// Trigger routes a host key event to the input manager.
func (m *Metronome) Trigger(act action.Action, evt event.Type) {
	m.manager.Trigger(act, evt)
}

// panel is what the front panel buttons act on.
type panel struct {
	m *Metronome
}

func (p panel) TrySuspend() bool {
	return p.m.seq.TrySuspend()
}

func (p panel) Resume() {
	p.m.seq.Resume()
}

func (p panel) StepTempo(delta int) rhythm.Tempo {
	return p.m.seq.Reconfigure(func(s *rhythm.Settings) {
		s.Tempo = s.Tempo.Step(delta)
	}).Tempo
}

func (p panel) NextTimeSignature() rhythm.TimeSignature {
	return p.m.seq.Reconfigure(func(s *rhythm.Settings) {
		s.TimeSignature = s.TimeSignature.Next()
	}).TimeSignature
}

func (p panel) Render() {
	p.m.render()
}

// buzzer is the audio tap on the buzzer line and the compare output.
type buzzer struct {
	m *Metronome
}

func (b buzzer) Gate() bool {
	return b.m.port.IsHigh(gpio.Buzzer)
}

func (b buzzer) Frequency() uint32 {
	return b.m.timer.Frequency()
}

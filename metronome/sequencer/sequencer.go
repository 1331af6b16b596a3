package sequencer

import (
	"log/slog"
	"sync/atomic"

	"github.com/valerio/go-metronome/metronome/gpio"
	"github.com/valerio/go-metronome/metronome/rhythm"
)

// ToneGenerator is the part of the hardware timer the sequencer drives.
type ToneGenerator interface {
	SetFrequency(hz uint32)
	SetOutputEnabled(enabled bool)
	EnableInterrupt()
	DisableInterrupt()
	ResetCounter()
}

// Lines are the output port bits for the beat indicators.
type Lines interface {
	Set(mask uint8)
	Clear(mask uint8)
}

// Beat describes a pulse as it starts.
type Beat struct {
	Index         uint64
	Accent        bool
	Tone          Tone
	Tempo         rhythm.Tempo
	TimeSignature rhythm.TimeSignature
}

// Status is a consistent copy of the sequencer state for display purposes.
type Status struct {
	Beat          uint64
	Accent        bool
	Pulsing       bool
	Tone          Tone
	TicksPerBeat  uint32
	Tempo         rhythm.Tempo
	TimeSignature rhythm.TimeSignature
}

// Options configure a new Sequencer.
type Options struct {
	Tones         ToneMap
	Tempo         rhythm.Tempo
	TimeSignature rhythm.TimeSignature
	// RetoneOnChange re-selects the pending tone when the time signature
	// changes. Off, a new divisor is only heard from the beat after next.
	RetoneOnChange bool
	// IndicatorMask selects the output lines driven during a pulse.
	IndicatorMask uint8
}

// Sequencer is the beat generator. HandleInterrupt runs on the timer's
// compare match; everything else is called from the main loop.
//
// Settings are shared with the main loop, which only writes them while the
// interrupt is masked (see TrySuspend and Reconfigure). ToneState and the beat
// counter belong to the handler.
type Sequencer struct {
	timer ToneGenerator
	lines Lines

	tones          ToneMap
	retoneOnChange bool
	mask           uint8

	settings  rhythm.Settings
	tone      ToneState
	beats     uint64
	suspended bool

	status atomic.Pointer[Status]

	// OnBeat is called from the interrupt handler at the start of each
	// pulse. It must not block or touch the timer's interrupt mask.
	OnBeat func(Beat)
}

// New builds a sequencer. Call Reset before enabling the interrupt.
func New(timer ToneGenerator, lines Lines, opts Options) *Sequencer {
	if opts.Tones == (ToneMap{}) {
		opts.Tones = DefaultToneMap
	}
	if opts.Tempo == 0 {
		opts.Tempo = rhythm.DefaultTempo
	}
	if opts.IndicatorMask == 0 {
		opts.IndicatorMask = gpio.IndicatorMask
	}

	s := &Sequencer{
		timer:          timer,
		lines:          lines,
		tones:          opts.Tones,
		retoneOnChange: opts.RetoneOnChange,
		mask:           opts.IndicatorMask,
		settings: rhythm.Settings{
			Tempo:         opts.Tempo.Clamp(),
			TimeSignature: opts.TimeSignature,
		},
	}
	s.publish()
	return s
}

// Reset returns to beat zero with indicators off and reprograms the timer
// for the first tone. The interrupt must be masked.
func (s *Sequencer) Reset() {
	s.beats = 0
	s.tone = ToneState{}
	s.lines.Clear(s.mask)
	s.timer.SetOutputEnabled(false)
	s.selectTone()
	s.Retime()
	s.timer.SetFrequency(s.tone.Frequency)
	s.publish()
}

// HandleInterrupt advances the sequencer by one tick.
func (s *Sequencer) HandleInterrupt() {
	s.tone.Elapsed++
	s.timer.SetOutputEnabled(false)

	if !s.tone.Pulsing && s.tone.Elapsed < s.settings.TicksPerBeat {
		return
	}

	if !s.tone.Pulsing {
		s.startPulse()
	}
	s.timer.SetOutputEnabled(true)

	if s.tone.Elapsed >= s.settings.TicksPerBeat+s.tone.PulseTicks {
		s.endPulse()
	}
}

func (s *Sequencer) startPulse() {
	s.tone.Pulsing = true
	s.lines.Set(s.mask)
	s.publish()

	if s.OnBeat != nil {
		s.OnBeat(Beat{
			Index:         s.beats,
			Accent:        s.tone.Accent,
			Tone:          Tone{Frequency: s.tone.Frequency, PulseTicks: s.tone.PulseTicks},
			Tempo:         s.settings.Tempo,
			TimeSignature: s.settings.TimeSignature,
		})
	}
}

func (s *Sequencer) endPulse() {
	s.tone.Pulsing = false
	s.tone.Elapsed = 0
	s.lines.Clear(s.mask)
	s.timer.SetOutputEnabled(false)

	s.beats++
	s.selectTone()
	s.Retime()
	s.timer.SetFrequency(s.tone.Frequency)
	s.publish()
}

// selectTone picks the tone of the pending beat.
func (s *Sequencer) selectTone() {
	accent := s.settings.IsAccent(s.beats)
	tone := s.tones.For(accent)
	s.tone.Accent = accent
	s.tone.Frequency = tone.Frequency
	s.tone.PulseTicks = tone.PulseTicks
}

// Retime recomputes ticks per beat from the current tempo and tone. The tick
// rate equals the tone frequency because the comparator paces both.
// Callers outside the handler must hold the interrupt mask.
func (s *Sequencer) Retime() {
	s.settings.TicksPerBeat = rhythm.TicksPerBeat(s.tone.Frequency, s.settings.Tempo)
}

// TrySuspend masks the beat interrupt unless a pulse is sounding. It returns
// false, with the interrupt left enabled, when a pulse is in flight; callers
// retry on a later pass so a pulse is never cut short or repeated.
func (s *Sequencer) TrySuspend() bool {
	if s.suspended {
		return true
	}

	s.timer.DisableInterrupt()
	if s.tone.Pulsing {
		s.timer.EnableInterrupt()
		return false
	}

	s.suspended = true
	return true
}

// Suspended reports whether the main loop holds the interrupt mask.
func (s *Sequencer) Suspended() bool {
	return s.suspended
}

// Resume restarts beat timing from zero and unmasks the interrupt.
func (s *Sequencer) Resume() {
	if !s.suspended {
		return
	}
	s.tone.Elapsed = 0
	s.timer.ResetCounter()
	s.suspended = false
	s.timer.EnableInterrupt()
}

// Reconfigure applies fn to the shared settings. The sequencer must be
// suspended; tempo is clamped and ticks per beat recomputed before returning.
func (s *Sequencer) Reconfigure(fn func(*rhythm.Settings)) rhythm.Settings {
	if !s.suspended {
		panic("sequencer: Reconfigure requires the beat interrupt to be suspended")
	}

	prev := s.settings
	fn(&s.settings)
	s.settings.Tempo = s.settings.Tempo.Clamp()

	if s.retoneOnChange && prev.TimeSignature != s.settings.TimeSignature {
		s.selectTone()
		s.timer.SetFrequency(s.tone.Frequency)
	}
	s.Retime()
	s.publish()

	slog.Debug("Sequencer reconfigured",
		"tempo", int(s.settings.Tempo),
		"timesig", s.settings.TimeSignature.Label(),
		"ticks_per_beat", s.settings.TicksPerBeat)

	return s.settings
}

// Tempo returns the current tempo. Main loop only.
func (s *Sequencer) Tempo() rhythm.Tempo {
	return s.settings.Tempo
}

// TimeSignature returns the current signature. Main loop only.
func (s *Sequencer) TimeSignature() rhythm.TimeSignature {
	return s.settings.TimeSignature
}

// Status returns the state as of the last pulse edge or reconfiguration.
// Safe from any goroutine.
func (s *Sequencer) Status() Status {
	if st := s.status.Load(); st != nil {
		return *st
	}
	return Status{}
}

func (s *Sequencer) publish() {
	s.status.Store(&Status{
		Beat:          s.beats,
		Accent:        s.tone.Accent,
		Pulsing:       s.tone.Pulsing,
		Tone:          Tone{Frequency: s.tone.Frequency, PulseTicks: s.tone.PulseTicks},
		TicksPerBeat:  s.settings.TicksPerBeat,
		Tempo:         s.settings.Tempo,
		TimeSignature: s.settings.TimeSignature,
	})
}

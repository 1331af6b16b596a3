package input

import (
	"log/slog"
	"time"

	"github.com/valerio/go-metronome/metronome/gpio"
	"github.com/valerio/go-metronome/metronome/rhythm"
)

// Button is an input line that reads pressed or not.
type Button interface {
	Pressed() bool
}

// Target is what the front panel buttons act on. Every mutation happens
// between a successful TrySuspend and Resume.
type Target interface {
	// TrySuspend masks the beat interrupt, or returns false if it cannot do
	// so right now.
	TrySuspend() bool
	Resume()
	StepTempo(delta int) rhythm.Tempo
	NextTimeSignature() rhythm.TimeSignature
	Render()
}

// DebounceConfig tunes the debouncer.
type DebounceConfig struct {
	// Threshold is the number of consecutive pressed polls that fire an action.
	Threshold int
	// RepeatInterval paces tempo steps while a tempo button is held.
	RepeatInterval time.Duration
	// SettleDelay is waited before a time signature change is applied.
	SettleDelay time.Duration
}

// DefaultDebounceConfig matches the board's timings.
var DefaultDebounceConfig = DebounceConfig{
	Threshold:      30,
	RepeatInterval: 75 * time.Millisecond,
	SettleDelay:    150 * time.Millisecond,
}

// Phase is the debouncer's progress through an action.
type Phase int

const (
	// PhaseIdle samples every button.
	PhaseIdle Phase = iota
	// PhasePending waits for the beat interrupt to be suspended.
	PhasePending
	// PhaseRepeating steps the tempo while the button is held.
	PhaseRepeating
	// PhaseSettling waits out the settle delay of a time signature change.
	PhaseSettling
	// PhaseLatched waits for the time signature button to be released.
	PhaseLatched
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePending:
		return "pending"
	case PhaseRepeating:
		return "repeating"
	case PhaseSettling:
		return "settling"
	case PhaseLatched:
		return "latched"
	default:
		return "unknown"
	}
}

// Debouncer is the front panel state machine, polled once per main loop pass.
// It never blocks: the hold-to-repeat and settle delays are deadlines checked
// on later polls.
type Debouncer struct {
	cfg     DebounceConfig
	target  Target
	buttons [len(gpio.Buttons)]Button

	counters [len(gpio.Buttons)]int
	phase    Phase
	active   int
	deadline time.Time
}

// NewDebouncer polls up, down and time signature buttons, in that priority.
func NewDebouncer(cfg DebounceConfig, target Target, up, down, timeSignature Button) *Debouncer {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 1
	}
	return &Debouncer{
		cfg:     cfg,
		target:  target,
		buttons: [len(gpio.Buttons)]Button{up, down, timeSignature},
	}
}

// Poll runs one pass of the state machine at the given time.
func (d *Debouncer) Poll(now time.Time) {
	switch d.phase {
	case PhaseIdle:
		d.sample()
		d.arm()
		if d.phase == PhasePending {
			d.pending(now)
		}
	case PhasePending:
		d.pending(now)
	case PhaseRepeating:
		d.repeating(now)
	case PhaseSettling:
		d.settling(now)
	case PhaseLatched:
		if !d.buttons[d.active].Pressed() {
			d.finish()
		}
	}
}

func (d *Debouncer) sample() {
	for i, b := range d.buttons {
		if b.Pressed() {
			d.counters[i]++
		} else {
			d.counters[i] = 0
		}
	}
}

func (d *Debouncer) arm() {
	for i := range d.buttons {
		if d.counters[i] >= d.cfg.Threshold {
			d.active = i
			d.phase = PhasePending
			return
		}
	}
}

func (d *Debouncer) pending(now time.Time) {
	tempo := d.isTempo()
	if tempo && !d.buttons[d.active].Pressed() {
		// let go before the action could start
		d.finish()
		return
	}

	if !d.target.TrySuspend() {
		return
	}

	if tempo {
		d.step()
		d.deadline = now.Add(d.cfg.RepeatInterval)
		d.phase = PhaseRepeating
		return
	}

	d.deadline = now.Add(d.cfg.SettleDelay)
	d.phase = PhaseSettling
	d.settling(now)
}

func (d *Debouncer) repeating(now time.Time) {
	if !d.buttons[d.active].Pressed() {
		d.target.Resume()
		d.finish()
		return
	}
	if now.Before(d.deadline) {
		return
	}
	d.step()
	d.deadline = now.Add(d.cfg.RepeatInterval)
}

func (d *Debouncer) settling(now time.Time) {
	if now.Before(d.deadline) {
		return
	}
	sig := d.target.NextTimeSignature()
	d.target.Render()
	d.target.Resume()
	slog.Debug("Time signature changed", "timesig", sig.Label())
	d.phase = PhaseLatched
}

func (d *Debouncer) step() {
	delta := 1
	if gpio.Buttons[d.active] == gpio.ButtonDown {
		delta = -1
	}
	tempo := d.target.StepTempo(delta)
	d.target.Render()
	slog.Debug("Tempo stepped", "tempo", int(tempo))
}

func (d *Debouncer) finish() {
	d.counters[d.active] = 0
	d.phase = PhaseIdle
}

func (d *Debouncer) isTempo() bool {
	pin := gpio.Buttons[d.active]
	return pin == gpio.ButtonUp || pin == gpio.ButtonDown
}

// Phase returns the current phase.
func (d *Debouncer) Phase() Phase {
	return d.phase
}

// Active returns the button driving the current action, if any.
func (d *Debouncer) Active() (gpio.Pin, bool) {
	if d.phase == PhaseIdle {
		return 0, false
	}
	return gpio.Buttons[d.active], true
}

// Counter returns the hold counter of a button.
func (d *Debouncer) Counter(pin gpio.Pin) int {
	for i, p := range gpio.Buttons {
		if p == pin {
			return d.counters[i]
		}
	}
	return 0
}

package metronome

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/valerio/go-metronome/metronome/backend"
	"github.com/valerio/go-metronome/metronome/config"
	"github.com/valerio/go-metronome/metronome/display"
	"github.com/valerio/go-metronome/metronome/gpio"
	"github.com/valerio/go-metronome/metronome/input/action"
	"github.com/valerio/go-metronome/metronome/input/event"
	"github.com/valerio/go-metronome/metronome/timing"
)

// driverPeriod is how often the oscillator goroutine feeds the timer.
const driverPeriod = time.Millisecond

func (m *Metronome) registerActions() {
	m.manager.On(action.Quit, event.Press, func() {
		if m.stop != nil {
			m.stop()
		}
	})

	m.manager.On(action.ToggleMute, event.Press, func() {
		muted := m.synth.ToggleMute()
		slog.Info("Speaker", "muted", muted)
	})

	m.manager.On(action.Snapshot, event.Press, func() {
		if _, err := display.SavePNGToDir(m.lcd.Lines(), "metronome_snapshot", m.snapshotDir); err != nil {
			slog.Error("Failed to save snapshot", "error", err)
		}
	})

	m.manager.On(action.LogLevelIncrease, event.Press, func() {
		m.stepLogLevel(1)
	})
	m.manager.On(action.LogLevelDecrease, event.Press, func() {
		m.stepLogLevel(-1)
	})
}

func (m *Metronome) stepLogLevel(direction int) {
	old := m.logLevel.Level()
	m.logLevel.Set(config.StepLogLevel(old, direction))
	if old != m.logLevel.Level() {
		slog.Info("Log filter changed", "from", old, "to", m.logLevel.Level())
	}
}

// View snapshots everything a backend draws. Call from the main loop.
func (m *Metronome) View() backend.View {
	status := m.seq.Status()
	return backend.View{
		Lines:         m.lcd.Lines(),
		LCDVersion:    m.lcd.Version(),
		LED:           m.port.IsHigh(gpio.LED),
		Buzzer:        m.port.IsHigh(gpio.Buzzer),
		Tempo:         status.Tempo,
		TimeSignature: status.TimeSignature,
		Beat:          status.Beat,
		Accent:        status.Accent,
		Muted:         m.synth.Muted(),
		Elapsed:       m.timer.Elapsed(),
		Panel:         m.debouncer.Phase().String(),
	}
}

// Run drives the metronome in real time: an oscillator goroutine ticks the
// timer while this goroutine polls the buttons and updates the backend. It
// returns when the context is cancelled or the backend asks to quit.
func (m *Metronome) Run(ctx context.Context, b backend.Backend, cfg backend.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := m.initBackend(b, cfg, cancel); err != nil {
		return err
	}
	defer m.cleanupBackend(b)

	if err := m.Start(); err != nil {
		return err
	}
	if cfg.TestPattern {
		m.lcd.Fill()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		timing.NewTickDriver(m.timer, m.cfg.ClockHz, driverPeriod).Run(ctx)
	}()
	// the timer must be quiet before the backend goes away
	defer wg.Wait()
	defer cancel()

	return m.loop(ctx, b, timing.SystemClock{}, timing.NewAdaptiveLimiter(m.cfg.Input.PollInterval), m.capture)
}

// Simulate runs on a simulated clock, as fast as possible: each pass advances
// the board by one poll interval. Output is identical to a realtime run with
// perfect timing, which makes it the mode for batch runs and tests.
func (m *Metronome) Simulate(ctx context.Context, b backend.Backend, cfg backend.Config, clock *timing.SimulatedClock) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := m.initBackend(b, cfg, cancel); err != nil {
		return err
	}
	defer m.cleanupBackend(b)

	if err := m.Start(); err != nil {
		return err
	}
	if cfg.TestPattern {
		m.lcd.Fill()
	}

	step := m.cfg.Input.PollInterval
	advance := func() {
		clock.Advance(step)
		m.Advance(step)
	}
	return m.loop(ctx, b, clock, timing.NewNoOpLimiter(), advance)
}

func (m *Metronome) initBackend(b backend.Backend, cfg backend.Config, cancel context.CancelFunc) error {
	onQuit := cfg.Callbacks.OnQuit
	cfg.Callbacks.OnQuit = func() {
		if onQuit != nil {
			onQuit()
		}
		cancel()
	}
	if cfg.LogLevel == nil {
		cfg.LogLevel = m.logLevel
	}
	if cfg.KeyHold == 0 {
		cfg.KeyHold = m.cfg.Input.KeyHold
	}

	if err := b.Init(cfg); err != nil {
		return errors.Wrap(err, "backend init failed")
	}
	m.stop = cancel
	return nil
}

func (m *Metronome) cleanupBackend(b backend.Backend) {
	m.stop = nil
	m.timer.DisableInterrupt()
	m.manager.ReleaseAll()
	if err := b.Cleanup(); err != nil {
		slog.Error("Backend cleanup failed", "error", err)
	}
}

// loop is the main loop shared by Run and Simulate. pass runs first on every
// iteration; backend updates are paced by the configured frame interval.
func (m *Metronome) loop(ctx context.Context, b backend.Backend, clock timing.Clock, limiter timing.Limiter, pass func()) error {
	var lastFrame time.Time
	first := true

	for {
		if ctx.Err() != nil {
			return nil
		}

		pass()
		now := clock.Now()
		m.Poll(now)

		if first || now.Sub(lastFrame) >= m.cfg.FrameInterval {
			first = false
			lastFrame = now

			events, err := b.Update(m.View())
			if err != nil {
				return errors.Wrap(err, "backend update failed")
			}
			for _, e := range events {
				m.manager.Trigger(e.Action, e.Type)
			}
		}

		limiter.Wait()
	}
}

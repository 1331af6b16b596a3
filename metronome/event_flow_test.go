package metronome

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-metronome/metronome/backend"
	"github.com/valerio/go-metronome/metronome/input/action"
	"github.com/valerio/go-metronome/metronome/input/event"
	"github.com/valerio/go-metronome/metronome/timing"
)

// MockBackend is a test backend that returns predetermined events
type MockBackend struct {
	events      []backend.InputEvent
	updateErr   error
	config      backend.Config
	initialized bool
	cleanedUp   bool
	updateCalls int
	views       []backend.View
}

func (m *MockBackend) Init(config backend.Config) error {
	m.config = config
	m.initialized = true
	return nil
}

func (m *MockBackend) Update(view backend.View) ([]backend.InputEvent, error) {
	m.updateCalls++
	m.views = append(m.views, view)
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	// Return events only on first call
	if m.updateCalls == 1 {
		return m.events, nil
	}
	return nil, nil
}

func (m *MockBackend) Cleanup() error {
	m.cleanedUp = true
	return nil
}

func TestEventFlow(t *testing.T) {
	tests := []struct {
		name         string
		events       []backend.InputEvent
		expectedQuit bool
	}{
		{
			name: "quit event stops loop",
			events: []backend.InputEvent{
				{Action: action.Quit, Type: event.Press},
			},
			expectedQuit: true,
		},
		{
			name: "button events are passed through",
			events: []backend.InputEvent{
				{Action: action.TempoUp, Type: event.Press},
			},
			expectedQuit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMetronome(t)
			mock := &MockBackend{events: tt.events}

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			err := m.Simulate(ctx, mock, backend.Config{}, timing.NewSimulatedClock(epoch))
			require.NoError(t, err)

			assert.True(t, mock.initialized)
			assert.True(t, mock.cleanedUp)
			if tt.expectedQuit {
				assert.Equal(t, 1, mock.updateCalls)
			} else {
				assert.Greater(t, mock.updateCalls, 1)
			}
		})
	}
}

func TestBackendConfigDefaults(t *testing.T) {
	m := newMetronome(t)
	mock := &MockBackend{events: []backend.InputEvent{{Action: action.Quit, Type: event.Press}}}

	quitCalled := false
	err := m.Simulate(context.Background(), mock, backend.Config{
		Callbacks: backend.Callbacks{OnQuit: func() { quitCalled = true }},
	}, timing.NewSimulatedClock(epoch))
	require.NoError(t, err)

	assert.Equal(t, m.cfg.Input.KeyHold, mock.config.KeyHold)
	assert.Same(t, m.logLevel, mock.config.LogLevel)

	// backend initiated shutdown runs the caller's callback too
	mock.config.Callbacks.OnQuit()
	assert.True(t, quitCalled)
}

func TestQuitCancelsOnlyActiveRun(t *testing.T) {
	m := newMetronome(t)

	firstCancelled := false
	require.NoError(t, m.initBackend(&MockBackend{}, backend.Config{}, func() { firstCancelled = true }))
	m.cleanupBackend(&MockBackend{})

	secondCancelled := 0
	require.NoError(t, m.initBackend(&MockBackend{}, backend.Config{}, func() { secondCancelled++ }))

	m.Trigger(action.Quit, event.Press)
	assert.False(t, firstCancelled, "a finished run is not cancelled again")
	assert.Equal(t, 1, secondCancelled)

	m.cleanupBackend(&MockBackend{})
	assert.Nil(t, m.stop)
}

func TestUpdateErrorStopsLoop(t *testing.T) {
	m := newMetronome(t)
	mock := &MockBackend{updateErr: errors.New("window lost")}

	err := m.Simulate(context.Background(), mock, backend.Config{}, timing.NewSimulatedClock(epoch))
	assert.ErrorContains(t, err, "window lost")
	assert.True(t, mock.cleanedUp)
}

func TestFramesArePaced(t *testing.T) {
	m := newMetronome(t)
	mock := &MockBackend{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// stop after a fixed amount of board time
	go func() {
		for m.Elapsed() < 200*time.Millisecond {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	require.NoError(t, m.Simulate(ctx, mock, backend.Config{}, timing.NewSimulatedClock(epoch)))

	require.Greater(t, len(mock.views), 2)
	for i := 1; i < len(mock.views); i++ {
		gap := mock.views[i].Elapsed - mock.views[i-1].Elapsed
		assert.Equal(t, m.cfg.FrameInterval, gap, "frame %d", i)
	}
}

func TestRunRealtime(t *testing.T) {
	if testing.Short() {
		t.Skip("runs in real time")
	}

	m := newMetronome(t)
	mock := &MockBackend{}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, m.Run(ctx, mock, backend.Config{}))

	assert.True(t, mock.cleanedUp)
	assert.Greater(t, mock.updateCalls, 5)
	// the oscillator fed roughly the wall time to the timer
	assert.InDelta(t, float64(300*time.Millisecond), float64(m.Elapsed()), float64(150*time.Millisecond))
	assert.False(t, m.timer.InterruptEnabled())
}

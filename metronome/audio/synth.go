package audio

import (
	"encoding/binary"
	"sync"
	"sync/atomic"
)

const (
	DefaultSampleRate = 44100
	DefaultVolume     = 0.4
)

// Source is the buzzer circuit: a gate (the buzzer line) and the compare
// match rate driving the output-compare pin.
type Source interface {
	Gate() bool
	Frequency() uint32
}

// Synth turns the buzzer circuit into PCM. While the gate is high it plays a
// square wave at half the compare match rate, since the output pin toggles on
// every match.
type Synth struct {
	src        Source
	sampleRate int
	volume     float64

	mu    sync.Mutex
	phase float64

	muted atomic.Bool
}

func NewSynth(src Source, sampleRate int, volume float64) *Synth {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Synth{
		src:        src,
		sampleRate: sampleRate,
		volume:     volume,
	}
}

func (s *Synth) SampleRate() int {
	return s.sampleRate
}

func (s *Synth) SetMuted(muted bool) {
	s.muted.Store(muted)
}

// ToggleMute flips the mute state and returns the new one.
func (s *Synth) ToggleMute() bool {
	for {
		old := s.muted.Load()
		if s.muted.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

func (s *Synth) Muted() bool {
	return s.muted.Load()
}

// Fill writes the next len(out) mono samples in [-1, 1].
func (s *Synth) Fill(out []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gate := s.src.Gate() && !s.muted.Load()
	pitch := float64(s.src.Frequency()) / 2
	step := pitch / float64(s.sampleRate)

	for i := range out {
		if !gate || pitch <= 0 {
			out[i] = 0
			s.phase = 0
			continue
		}
		if s.phase < 0.5 {
			out[i] = s.volume
		} else {
			out[i] = -s.volume
		}
		s.phase += step
		for s.phase >= 1 {
			s.phase--
		}
	}
}

// Stream implements beep.Streamer. It never runs dry.
func (s *Synth) Stream(samples [][2]float64) (int, bool) {
	mono := make([]float64, len(samples))
	s.Fill(mono)
	for i, v := range mono {
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

func (s *Synth) Err() error {
	return nil
}

// Read implements io.Reader as signed 16-bit little endian mono PCM.
func (s *Synth) Read(buf []byte) (int, error) {
	n := len(buf) / 2
	mono := make([]float64, n)
	s.Fill(mono)
	for i, v := range mono {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(toInt16(v)))
	}
	return n * 2, nil
}

func toInt16(v float64) int16 {
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	return int16(v * 32767)
}

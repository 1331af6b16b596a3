package audio

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
)

// Recorder captures the buzzer against the machine's own clock, so a
// simulated run produces the same audio as a realtime one.
type Recorder struct {
	synth *Synth

	mu       sync.Mutex
	samples  []float64
	captured time.Duration
}

// NewRecorder records src at sampleRate. The recording is never muted.
func NewRecorder(src Source, sampleRate int, volume float64) *Recorder {
	return &Recorder{synth: NewSynth(src, sampleRate, volume)}
}

func (r *Recorder) Format() beep.Format {
	return beep.Format{
		SampleRate:  beep.SampleRate(r.synth.SampleRate()),
		NumChannels: 1,
		Precision:   2,
	}
}

// CaptureUntil appends samples up to the machine time t, holding the current
// gate and pitch for the whole span.
func (r *Recorder) CaptureUntil(t time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t <= r.captured {
		return
	}

	want := r.Format().SampleRate.N(t)
	if n := want - len(r.samples); n > 0 {
		chunk := make([]float64, n)
		r.synth.Fill(chunk)
		r.samples = append(r.samples, chunk...)
	}
	r.captured = t
}

// Len is the number of samples captured so far.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

// Duration is the length of the recording.
func (r *Recorder) Duration() time.Duration {
	return r.Format().SampleRate.D(r.Len())
}

// Streamer plays back a copy of what has been captured so far.
func (r *Recorder) Streamer() beep.Streamer {
	r.mu.Lock()
	samples := append([]float64(nil), r.samples...)
	r.mu.Unlock()

	pos := 0
	return beep.StreamerFunc(func(out [][2]float64) (int, bool) {
		if pos >= len(samples) {
			return 0, false
		}
		n := copy2(out, samples[pos:])
		pos += n
		return n, true
	})
}

func copy2(out [][2]float64, in []float64) int {
	n := min(len(out), len(in))
	for i := 0; i < n; i++ {
		out[i][0] = in[i]
		out[i][1] = in[i]
	}
	return n
}

// WriteWAV encodes the recording as a 16-bit mono WAV file.
func (r *Recorder) WriteWAV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	if err := wav.Encode(f, r.Streamer(), r.Format()); err != nil {
		return fmt.Errorf("failed to encode WAV: %v", err)
	}

	slog.Info("Recording saved", "path", path, "duration", r.Duration().Round(time.Millisecond))
	return nil
}

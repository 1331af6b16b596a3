package record

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/valerio/go-metronome/metronome/rhythm"
)

const (
	// TicksPerQuarter is the file resolution.
	TicksPerQuarter = 960
	// referenceBPM is the file tempo: clicks are placed on absolute time, so
	// the metronome's tempo only appears in markers.
	referenceBPM = 120

	drumChannel = 9
	accentKey   = 76 // Hi Wood Block
	normalKey   = 77 // Low Wood Block

	accentVelocity = 127
	normalVelocity = 96
)

// Click is one beat as it sounded.
type Click struct {
	At            time.Duration
	Length        time.Duration
	Accent        bool
	Tempo         rhythm.Tempo
	TimeSignature rhythm.TimeSignature
}

// ClickTrack collects beats and writes them as a Standard MIDI File on the
// General MIDI percussion channel.
type ClickTrack struct {
	name string

	mu     sync.Mutex
	clicks []Click
}

func NewClickTrack(name string) *ClickTrack {
	return &ClickTrack{name: name}
}

// Add records a click. Safe from any goroutine.
func (c *ClickTrack) Add(click Click) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clicks = append(c.clicks, click)
}

// Clicks returns a copy of the recorded clicks.
func (c *ClickTrack) Clicks() []Click {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Click(nil), c.clicks...)
}

type timedMessage struct {
	tick  uint32
	order int
	msg   []byte
}

// TicksAt converts a time offset into file ticks.
func TicksAt(d time.Duration) uint32 {
	ticksPerSecond := uint64(TicksPerQuarter * referenceBPM / 60)
	return uint32(uint64(d) * ticksPerSecond / uint64(time.Second))
}

// SMF builds the MIDI file.
func (c *ClickTrack) SMF() (*smf.SMF, error) {
	clicks := c.Clicks()

	var msgs []timedMessage
	add := func(tick uint32, msg []byte) {
		msgs = append(msgs, timedMessage{tick: tick, order: len(msgs), msg: msg})
	}

	add(0, smf.MetaTrackSequenceName(c.name))
	add(0, smf.MetaTempo(referenceBPM))

	var lastSig rhythm.TimeSignature
	var lastTempo rhythm.Tempo
	for i, click := range clicks {
		on := TicksAt(click.At)
		if i == 0 || click.TimeSignature != lastSig {
			add(on, smf.MetaMeter(click.TimeSignature.Beats(), click.TimeSignature.NoteValue()))
			lastSig = click.TimeSignature
		}
		if i == 0 || click.Tempo != lastTempo {
			add(on, smf.MetaMarker(fmt.Sprintf("Tempo = %d bpm", int(click.Tempo))))
			lastTempo = click.Tempo
		}

		key, velocity := uint8(normalKey), uint8(normalVelocity)
		if click.Accent {
			key, velocity = accentKey, accentVelocity
		}
		off := TicksAt(click.At + click.Length)
		if off <= on {
			off = on + 1
		}
		add(on, midi.NoteOn(drumChannel, key, velocity))
		add(off, midi.NoteOff(drumChannel, key))
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].tick != msgs[j].tick {
			return msgs[i].tick < msgs[j].tick
		}
		return msgs[i].order < msgs[j].order
	})

	var tr smf.Track
	var prev uint32
	for _, m := range msgs {
		tr.Add(m.tick-prev, m.msg)
		prev = m.tick
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)
	if err := s.Add(tr); err != nil {
		return nil, fmt.Errorf("failed to add click track: %v", err)
	}
	return s, nil
}

// WriteTo writes the file to w.
func (c *ClickTrack) WriteTo(w io.Writer) (int64, error) {
	s, err := c.SMF()
	if err != nil {
		return 0, err
	}
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return 0, fmt.Errorf("failed to encode MIDI: %v", err)
	}
	return buf.WriteTo(w)
}

// WriteFile saves the track to path.
func (c *ClickTrack) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	if _, err := c.WriteTo(f); err != nil {
		return err
	}
	slog.Info("Click track saved", "path", path, "clicks", len(c.Clicks()))
	return nil
}

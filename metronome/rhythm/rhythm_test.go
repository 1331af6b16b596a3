package rhythm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTempo_StepSaturates(t *testing.T) {
	tests := []struct {
		name     string
		start    Tempo
		delta    int
		repeat   int
		expected []Tempo
	}{
		{
			name:     "up from 248 saturates at 250",
			start:    248,
			delta:    1,
			repeat:   5,
			expected: []Tempo{249, 250, 250, 250, 250},
		},
		{
			name:     "down from 22 saturates at 20",
			start:    22,
			delta:    -1,
			repeat:   4,
			expected: []Tempo{21, 20, 20, 20},
		},
		{
			name:     "large jump clamps",
			start:    100,
			delta:    1000,
			repeat:   1,
			expected: []Tempo{250},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempo := tt.start
			var got []Tempo
			for i := 0; i < tt.repeat; i++ {
				tempo = tempo.Step(tt.delta)
				got = append(got, tempo)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTempo_ClampAndValid(t *testing.T) {
	assert.Equal(t, MinTempo, Tempo(0).Clamp())
	assert.Equal(t, MaxTempo, Tempo(999).Clamp())
	assert.Equal(t, Tempo(120), Tempo(120).Clamp())
	assert.True(t, DefaultTempo.Valid())
	assert.False(t, Tempo(19).Valid())
	assert.False(t, Tempo(251).Valid())
	assert.Equal(t, "50 bpm", DefaultTempo.String())
}

func TestTimeSignature_Table(t *testing.T) {
	tests := []struct {
		sig     TimeSignature
		label   string
		divisor uint32
	}{
		{TwoTwo, "2/2", 2},
		{TwoFour, "2/4", 2},
		{FourFour, "4/4", 4},
		{ThreeEight, "3/8", 3},
		{FiveEight, "5/8", 5},
		{SixEight, "6/8", 6},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.label, tt.sig.Label())
			assert.Equal(t, tt.divisor, tt.sig.Divisor())

			parsed, err := ParseTimeSignature(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.sig, parsed)
		})
	}
}

func TestTimeSignature_CycleOfSix(t *testing.T) {
	for _, start := range All() {
		sig := start
		seen := map[TimeSignature]bool{}
		for i := 0; i < 6; i++ {
			seen[sig] = true
			sig = sig.Next()
		}
		assert.Equal(t, start, sig, "six steps from %s", start)
		assert.Len(t, seen, 6, "every signature visited from %s", start)
	}

	assert.Equal(t, TwoTwo, SixEight.Next())
}

func TestTimeSignature_ParseUnknown(t *testing.T) {
	_, err := ParseTimeSignature("7/8")
	assert.Error(t, err)

	var sig TimeSignature
	assert.Error(t, sig.UnmarshalText([]byte("3/4")))
	require.NoError(t, sig.UnmarshalText([]byte("5/8")))
	assert.Equal(t, FiveEight, sig)
}

func TestTimeSignature_Meter(t *testing.T) {
	assert.Equal(t, uint8(6), SixEight.Beats())
	assert.Equal(t, uint8(8), SixEight.NoteValue())
	assert.Equal(t, uint8(2), TwoTwo.NoteValue())
}

func TestTicksPerBeat(t *testing.T) {
	tests := []struct {
		name     string
		rate     uint32
		tempo    Tempo
		expected uint32
	}{
		{name: "normal tone at 50 bpm", rate: 2000, tempo: 50, expected: 2400},
		{name: "accent tone at 50 bpm", rate: 1000, tempo: 50, expected: 1200},
		{name: "floor at 7 bpm multiple", rate: 2000, tempo: 7, expected: 17142},
		{name: "floor at 249 bpm", rate: 2000, tempo: 249, expected: 481},
		{name: "max tempo", rate: 1000, tempo: 250, expected: 240},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TicksPerBeat(tt.rate, tt.tempo))
		})
	}
}

func TestTicksPerBeat_PanicsOnNonPositive(t *testing.T) {
	assert.Panics(t, func() { TicksPerBeat(0, 60) })
	assert.Panics(t, func() { TicksPerBeat(2000, 0) })
	assert.Panics(t, func() { TicksPerBeat(2000, -5) })
}

func TestSettings_IsAccent(t *testing.T) {
	s := Settings{Tempo: 50, TimeSignature: FourFour}
	var accents []uint64
	for beat := uint64(0); beat < 12; beat++ {
		if s.IsAccent(beat) {
			accents = append(accents, beat)
		}
	}
	assert.Equal(t, []uint64{0, 4, 8}, accents)
}

package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-metronome/metronome/display"
)

func TestLCDBox(t *testing.T) {
	box := LCDBox([display.Rows]string{"METRONOME \xFF", "Tempo = 50 bpm"})
	require.Len(t, box, 4)
	assert.Equal(t, "│METRONOME █     │", box[1])
	assert.Equal(t, "│Tempo = 50 bpm  │", box[2])
	assert.Equal(t, []rune(box[0])[0], '┌')
}

func TestBeatBar(t *testing.T) {
	assert.Equal(t, "◆ ○ ○ ○", BeatBar(0, 4))
	assert.Equal(t, "○ ○ ● ○", BeatBar(6, 4))
	assert.Equal(t, "", BeatBar(3, 0))
}

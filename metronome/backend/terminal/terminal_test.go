package terminal

import (
	"log/slog"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-metronome/metronome/backend"
	"github.com/valerio/go-metronome/metronome/backend/terminal/render"
	"github.com/valerio/go-metronome/metronome/input/action"
	"github.com/valerio/go-metronome/metronome/rhythm"
)

func TestKeyMapping(t *testing.T) {
	cases := []struct {
		key  tcell.Key
		want action.Action
	}{
		{tcell.KeyUp, action.TempoUp},
		{tcell.KeyDown, action.TempoDown},
		{tcell.KeyTab, action.TimeSignatureCycle},
		{tcell.KeyEscape, action.Quit},
		{tcell.KeyCtrlC, action.Quit},
		{tcell.KeyF9, action.Snapshot},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, keyMapping[tc.key], tcell.KeyNames[tc.key])
	}

	assert.Equal(t, action.TimeSignatureCycle, runeMapping[' '])
	assert.Equal(t, action.ToggleMute, runeMapping['m'])
	assert.Equal(t, action.LogLevelDecrease, runeMapping['_'])
}

func rowText(screen tcell.Screen, y, width int) string {
	runes := make([]rune, 0, width)
	for x := 0; x < width; x++ {
		ch, _, _, _ := screen.GetContent(x, y)
		runes = append(runes, ch)
	}
	return string(runes)
}

func TestRenderOnSimulationScreen(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(60, 20)

	b := &Backend{
		screen:    screen,
		config:    backend.Config{Title: "Metronome"},
		keys:      backend.NewKeyTracker(0),
		logBuffer: render.NewLogBuffer(10),
		logLevel:  new(slog.LevelVar),
	}
	b.logBuffer.Add(render.LogEntry{Level: slog.LevelInfo, Message: "hello"})
	b.logBuffer.Add(render.LogEntry{Level: slog.LevelDebug, Message: "noise"})

	b.render(backend.View{
		Lines:         [2]string{"METRONOME 4/4", "Tempo = 50 bpm"},
		LED:           true,
		Tempo:         rhythm.Tempo(50),
		TimeSignature: rhythm.FourFour,
		Beat:          1,
	})
	screen.Show()

	assert.Contains(t, rowText(screen, panelY+1, 60), "METRONOME 4/4")
	assert.Contains(t, rowText(screen, panelY+2, 60), "Tempo = 50 bpm")
	assert.Contains(t, rowText(screen, statusY, 60), "○ ● ○ ○")
	assert.Contains(t, rowText(screen, statusY+1, 60), "4/4  50 bpm  beat 1")
	assert.Contains(t, rowText(screen, logsTitleY, 60), "Logs [INFO]")
	assert.Contains(t, rowText(screen, logsTitleY+1, 60), "[INF] hello")
	assert.NotContains(t, rowText(screen, logsTitleY+2, 60), "noise")
}

func TestRenderTooSmall(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(30, 10)

	b := &Backend{screen: screen, logBuffer: render.NewLogBuffer(1), logLevel: new(slog.LevelVar)}
	b.render(backend.View{})
	screen.Show()

	assert.Contains(t, rowText(screen, 5, 30), "Terminal too small")
}

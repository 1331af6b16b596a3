// Package console is a line-oriented backend for plain terminals: the
// panel is redrawn in place and logs scroll above it.
package console

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/eiannone/keyboard"
	"github.com/gosuri/uilive"
	"github.com/pkg/errors"
	"github.com/valerio/go-metronome/metronome/backend"
	"github.com/valerio/go-metronome/metronome/input"
	"github.com/valerio/go-metronome/metronome/input/action"
)

var (
	lcdStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#666666")).
			Foreground(lipgloss.Color("#1B2B10")).
			Background(lipgloss.Color("#9ACD32")).
			Padding(0, 1)
	ledOn     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF2020")).Bold(true)
	ledOff    = lipgloss.NewStyle().Foreground(lipgloss.Color("#501010"))
	beatStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// Backend renders with uilive and reads keys with eiannone/keyboard.
type Backend struct {
	out    io.Writer
	writer *uilive.Writer
	keys   <-chan keyboard.KeyEvent
	track  *backend.KeyTracker
	config backend.Config
	last   string
}

// New creates a console backend writing to stdout.
func New() *Backend {
	return &Backend{out: os.Stdout}
}

func (c *Backend) Init(config backend.Config) error {
	c.config = config
	c.track = backend.NewKeyTracker(config.KeyHold)

	keys, err := keyboard.GetKeys(16)
	if err != nil {
		return errors.Wrap(err, "failed to open keyboard")
	}
	c.keys = keys

	c.writer = uilive.New()
	c.writer.Out = c.out

	level := slog.Leveler(slog.LevelInfo)
	if config.LogLevel != nil {
		level = config.LogLevel
	}
	// Bypass writes scroll above the live region instead of tearing it.
	slog.SetDefault(slog.New(slog.NewTextHandler(c.writer.Bypass(), &slog.HandlerOptions{Level: level})))

	slog.Info("Console backend initialized", "test_pattern", config.TestPattern)
	return nil
}

func (c *Backend) Update(view backend.View) ([]backend.InputEvent, error) {
	now := time.Now()

drain:
	for {
		select {
		case ev, ok := <-c.keys:
			if !ok {
				c.track.Quit()
				break drain
			}
			if ev.Err != nil {
				return nil, errors.Wrap(ev.Err, "keyboard read failed")
			}
			if act, ok := mapKey(ev); ok {
				c.track.Press(act, now)
			}
		default:
			break drain
		}
	}

	frame := Frame(view, c.config.Title)
	if frame != c.last {
		fmt.Fprintln(c.writer, frame)
		if err := c.writer.Flush(); err != nil {
			return nil, errors.Wrap(err, "failed to redraw console")
		}
		c.last = frame
	}

	return c.track.Events(now), nil
}

func (c *Backend) Cleanup() error {
	if c.keys == nil {
		return nil
	}
	c.keys = nil
	return errors.Wrap(keyboard.Close(), "failed to restore keyboard")
}

// Frame renders the panel: LCD, LED and beat row, status line.
func Frame(view backend.View, title string) string {
	rows := make([]string, len(view.Lines))
	for i, line := range view.Lines {
		rows[i] = backend.LCDText(line)
	}
	lcd := lcdStyle.Render(strings.Join(rows, "\n"))

	led := ledOff.Render("●")
	if view.LED {
		led = ledOn.Render("●")
	}
	side := lipgloss.JoinVertical(lipgloss.Left,
		"",
		"LED "+led,
		beatStyle.Render(backend.BeatBar(view.Beat, int(view.TimeSignature.Divisor()))),
	)

	status := fmt.Sprintf("%s  %s  %s  beat %d", title, view.TimeSignature, view.Tempo, view.Beat)
	if view.Muted {
		status += "  [muted]"
	}
	help := "↑/↓ tempo  t time signature  m mute  s snapshot  q quit"

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, lcd, "  ", side),
		status,
		infoStyle.Render(help),
	)
}

// keyboardKeyNameMap converts special keys to key names used in default mappings
var keyboardKeyNameMap = map[keyboard.Key]string{
	keyboard.KeyArrowUp:    "Up",
	keyboard.KeyArrowDown:  "Down",
	keyboard.KeyArrowLeft:  "Left",
	keyboard.KeyArrowRight: "Right",
	keyboard.KeySpace:      "Space",
	keyboard.KeyTab:        "Tab",
	keyboard.KeyEsc:        "Escape",
	keyboard.KeyF9:         "F9",
}

func mapKey(ev keyboard.KeyEvent) (action.Action, bool) {
	if ev.Key == keyboard.KeyCtrlC {
		return action.Quit, true
	}
	if ev.Key == 0 && ev.Rune != 0 {
		return input.GetDefaultMapping(string(ev.Rune))
	}
	name, ok := keyboardKeyNameMap[ev.Key]
	if !ok {
		return 0, false
	}
	return input.GetDefaultMapping(name)
}

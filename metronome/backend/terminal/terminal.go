package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-metronome/metronome/backend"
	"github.com/valerio/go-metronome/metronome/backend/terminal/render"
	"github.com/valerio/go-metronome/metronome/display"
	"github.com/valerio/go-metronome/metronome/input"
	"github.com/valerio/go-metronome/metronome/input/action"
)

const (
	minTermWidth  = 44
	minTermHeight = 16

	panelX      = 2
	panelY      = 2
	statusY     = panelY + display.Rows + 3
	logsTitleY  = statusY + 2
	logCapacity = 200
)

// Backend implements the Backend interface using tcell for terminal rendering
type Backend struct {
	screen    tcell.Screen
	logBuffer *render.LogBuffer
	logLevel  *slog.LevelVar
	config    backend.Config
	keys      *backend.KeyTracker
	signals   chan os.Signal
}

// New creates a new terminal backend
func New() *Backend {
	return &Backend{}
}

// Init initializes the terminal backend
func (t *Backend) Init(config backend.Config) error {
	t.config = config
	t.keys = backend.NewKeyTracker(config.KeyHold)
	t.logLevel = config.LogLevel
	if t.logLevel == nil {
		t.logLevel = new(slog.LevelVar)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}

	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}

	t.screen = screen

	// Stderr would tear the screen, capture logs into the pane instead.
	t.logBuffer = render.NewLogBuffer(logCapacity)
	slog.SetDefault(slog.New(render.NewLogBufferHandler(t.logBuffer, t.logLevel)))

	if config.TestPattern {
		slog.Info("Terminal backend initialized in test pattern mode")
	} else {
		slog.Info("Terminal backend initialized")
	}

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	t.signals = make(chan os.Signal, 1)
	signal.Notify(t.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)

	return nil
}

// Update renders the view and processes events
func (t *Backend) Update(view backend.View) ([]backend.InputEvent, error) {
	now := time.Now()

	select {
	case sig := <-t.signals:
		slog.Info("Received signal, quitting", "signal", sig)
		t.keys.Quit()
	default:
	}

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	events := t.keys.Events(now)

	t.render(view)
	t.screen.Show()

	return events, nil
}

// Cleanup cleans up terminal resources
func (t *Backend) Cleanup() error {
	if t.signals != nil {
		signal.Stop(t.signals)
	}
	if t.screen != nil {
		slog.Info("Cleaning up terminal backend")
		t.screen.Fini()
	}
	return nil
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	act, ok := keyMapping[ev.Key()]
	if !ok && ev.Key() == tcell.KeyRune {
		act, ok = runeMapping[ev.Rune()]
	}
	if !ok {
		return
	}
	slog.Debug("Key event", "key", ev.Name(), "action", act)
	t.keys.Press(act, now)
}

// tcellKeyNameMap converts tcell keys to key names used in default mappings
var tcellKeyNameMap = map[tcell.Key]string{
	tcell.KeyUp:     "Up",
	tcell.KeyDown:   "Down",
	tcell.KeyLeft:   "Left",
	tcell.KeyRight:  "Right",
	tcell.KeyTab:    "Tab",
	tcell.KeyEscape: "Escape",
	tcell.KeyF9:     "F9",
}

// tcellRuneNameMap converts runes to key names used in default mappings
var tcellRuneNameMap = map[rune]string{
	'k': "k",
	'j': "j",
	't': "t",
	' ': "Space",
	'm': "m",
	's': "s",
	'q': "q",
	'+': "+",
	'=': "=",
	'-': "-",
	'_': "_",
}

func buildKeyMapping() map[tcell.Key]action.Action {
	mapping := make(map[tcell.Key]action.Action)
	for key, keyName := range tcellKeyNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[key] = act
		}
	}
	mapping[tcell.KeyCtrlC] = action.Quit
	return mapping
}

func buildRuneMapping() map[rune]action.Action {
	mapping := make(map[rune]action.Action)
	for r, keyName := range tcellRuneNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[r] = act
		}
	}
	return mapping
}

var (
	keyMapping  = buildKeyMapping()
	runeMapping = buildRuneMapping()
)

func (t *Backend) render(view backend.View) {
	termWidth, termHeight := t.screen.Size()
	t.screen.Clear()

	if termWidth < minTermWidth || termHeight < minTermHeight {
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		t.drawText(0, termHeight/2, termWidth, msg, style)
		return
	}

	t.drawBorders(termWidth, termHeight)
	t.drawPanel(view)
	t.drawStatus(view, termWidth)
	t.drawLogs(1, logsTitleY+1, termWidth-2, termHeight)
}

func (t *Backend) drawBorders(termWidth, termHeight int) {
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)

	for x := 0; x < termWidth; x++ {
		t.screen.SetContent(x, logsTitleY, '─', nil, borderStyle)
	}

	title := " " + t.config.Title + " "
	if t.config.TestPattern {
		title = " LCD self test "
	}
	t.drawText(1, 0, termWidth-1, title, titleStyle)

	logTitle := fmt.Sprintf(" Logs [%s] (-/+ filter) ", t.logLevel.Level())
	t.drawText(2, logsTitleY, termWidth-2, logTitle, titleStyle)

	help := " ↑/↓ tempo (hold repeats)  T time signature  M mute  S snapshot  Q quit "
	t.drawText(0, termHeight-1, termWidth, help, borderStyle)
}

func (t *Backend) drawPanel(view backend.View) {
	lcdStyle := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorLightGreen)
	frameStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)

	for i, row := range backend.LCDBox(view.Lines) {
		style := frameStyle
		t.drawText(panelX, panelY+i, len(row), row, style)
		if i > 0 && i <= display.Rows {
			t.drawText(panelX+1, panelY+i, display.Columns, backend.LCDText(view.Lines[i-1]), lcdStyle)
		}
	}

	ledX := panelX + display.Columns + 5
	ledStyle := tcell.StyleDefault.Foreground(tcell.ColorDarkRed)
	if view.LED {
		ledStyle = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	}
	t.drawText(ledX, panelY+1, 5, "LED ●", frameStyle)
	t.screen.SetContent(ledX+4, panelY+1, '●', nil, ledStyle)

	buzzer := "BUZ ·"
	if view.Buzzer && !view.Muted {
		buzzer = "BUZ ♪"
	}
	t.drawText(ledX, panelY+2, 5, buzzer, frameStyle)
}

func (t *Backend) drawStatus(view backend.View, termWidth int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	accent := tcell.StyleDefault.Foreground(tcell.ColorYellow)

	bar := backend.BeatBar(view.Beat, int(view.TimeSignature.Divisor()))
	t.drawText(panelX, statusY, termWidth-panelX, bar, accent)

	status := fmt.Sprintf("%s  %s  beat %d  panel %s  %s",
		view.TimeSignature, view.Tempo, view.Beat, view.Panel, view.Elapsed.Truncate(time.Second))
	if view.Muted {
		status += "  [muted]"
	}
	t.drawText(panelX, statusY+1, termWidth-panelX, status, style)
}

func (t *Backend) drawLogs(startX, startY, width, termHeight int) {
	availableHeight := termHeight - startY - 1
	if width <= 0 || availableHeight <= 0 {
		return
	}

	debugStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
	infoStyle := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	warnStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	errStyle := tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)

	for i, entry := range t.logBuffer.Recent(availableHeight, t.logLevel.Level()) {
		style := infoStyle
		switch entry.Level {
		case slog.LevelDebug:
			style = debugStyle
		case slog.LevelWarn:
			style = warnStyle
		case slog.LevelError:
			style = errStyle
		}

		logText := render.FormatLogEntry(entry)
		if len(logText) > width && width > 3 {
			logText = logText[:width-3] + "..."
		}
		t.drawText(startX, startY+i, width, logText, style)
	}
}

func (t *Backend) drawText(x, y, width int, text string, style tcell.Style) {
	i := 0
	for _, ch := range text {
		if i >= width {
			return
		}
		t.screen.SetContent(x+i, y, ch, nil, style)
		i++
	}
}

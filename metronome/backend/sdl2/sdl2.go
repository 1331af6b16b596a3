//go:build sdl2

package sdl2

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/valerio/go-metronome/metronome/backend"
	"github.com/valerio/go-metronome/metronome/display"
	"github.com/valerio/go-metronome/metronome/input/event"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	defaultScale = 4
	stripDots    = 12 // height of the LED strip below the LCD, in dots
)

// Backend implements the Backend interface using SDL2 bindings
// Note: building this requires SDL2 development libraries installed.
// Default builds skip this and use a stubbed renderer, see build tags (sdl2)
type Backend struct {
	window    *sdl.Window
	renderer  *sdl.Renderer
	texture   *sdl.Texture
	running   bool
	callbacks backend.Callbacks
	config    backend.Config

	scale      int
	lcdWidth   int
	lcdHeight  int
	lastLCD    uint64
	haveLCD    bool
	eventQueue []backend.InputEvent
}

// New creates a new SDL2 backend
func New() *Backend {
	return &Backend{}
}

// Init initializes the SDL2 backend
func (s *Backend) Init(config backend.Config) error {
	s.config = config
	s.callbacks = config.Callbacks
	s.scale = config.Scale
	if s.scale <= 0 {
		s.scale = defaultScale
	}
	s.lcdWidth, s.lcdHeight = display.RasterSize(s.scale)

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %v", err)
	}

	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(s.lcdWidth),
		int32(s.lcdHeight+stripDots*s.scale),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("failed to create window: %v", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create renderer: %v", err)
	}
	s.renderer = renderer

	// ABGR8888 on little-endian hosts is RGBA byte order, matching image.RGBA.
	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_ABGR8888,
		sdl.TEXTUREACCESS_STREAMING,
		int32(s.lcdWidth),
		int32(s.lcdHeight),
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create texture: %v", err)
	}
	s.texture = texture

	s.running = true

	if config.TestPattern {
		slog.Info("SDL2 backend initialized in test pattern mode")
	} else {
		slog.Info("SDL2 backend initialized", "scale", s.scale)
	}

	return nil
}

// Update renders the view and processes events
func (s *Backend) Update(view backend.View) ([]backend.InputEvent, error) {
	if !s.running {
		return nil, nil
	}

	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		s.handleEvent(e)
	}

	events := s.eventQueue
	s.eventQueue = nil

	if !s.running {
		return events, nil
	}

	if err := s.render(view); err != nil {
		return events, err
	}
	return events, nil
}

// Cleanup cleans up SDL2 resources
func (s *Backend) Cleanup() error {
	slog.Info("Cleaning up SDL2 backend")

	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()

	return nil
}

func (s *Backend) handleEvent(e sdl.Event) {
	switch e := e.(type) {
	case *sdl.QuitEvent:
		s.running = false
		if s.callbacks.OnQuit != nil {
			s.callbacks.OnQuit()
		}

	case *sdl.KeyboardEvent:
		act, ok := keyMapping[e.Keysym.Sym]
		if !ok {
			return
		}
		switch {
		case e.Type == sdl.KEYDOWN && e.Repeat == 0:
			s.eventQueue = append(s.eventQueue, backend.InputEvent{Action: act, Type: event.Press})
		case e.Type == sdl.KEYUP && act.IsButton():
			s.eventQueue = append(s.eventQueue, backend.InputEvent{Action: act, Type: event.Release})
		}
	}
}

func (s *Backend) render(view backend.View) error {
	// The LCD changes a few times per second at most, skip the upload otherwise.
	if !s.haveLCD || view.LCDVersion != s.lastLCD {
		img := display.Rasterize(view.Lines, s.scale)
		if err := s.texture.Update(nil, unsafe.Pointer(&img.Pix[0]), img.Stride); err != nil {
			return fmt.Errorf("failed to update texture: %v", err)
		}
		s.lastLCD = view.LCDVersion
		s.haveLCD = true
	}

	s.renderer.SetDrawColor(0x20, 0x20, 0x20, 0xFF)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, &sdl.Rect{W: int32(s.lcdWidth), H: int32(s.lcdHeight)})
	s.drawStrip(view)
	s.renderer.Present()
	return nil
}

// drawStrip draws the LED and one cell per beat of the bar.
func (s *Backend) drawStrip(view backend.View) {
	dot := int32(s.scale)
	top := int32(s.lcdHeight) + 2*dot
	size := 8 * dot

	if view.LED {
		s.renderer.SetDrawColor(0xFF, 0x20, 0x20, 0xFF)
	} else {
		s.renderer.SetDrawColor(0x50, 0x10, 0x10, 0xFF)
	}
	s.renderer.FillRect(&sdl.Rect{X: 2 * dot, Y: top, W: size, H: size})

	beats := int(view.TimeSignature.Divisor())
	if beats == 0 {
		return
	}
	current := int(view.Beat % uint64(beats))
	for i := 0; i < beats; i++ {
		switch {
		case i == current && view.Accent:
			s.renderer.SetDrawColor(0xFF, 0xC0, 0x20, 0xFF)
		case i == current:
			s.renderer.SetDrawColor(0xE0, 0xE0, 0xE0, 0xFF)
		default:
			s.renderer.SetDrawColor(0x60, 0x60, 0x60, 0xFF)
		}
		x := 14*dot + int32(i)*(size+2*dot)
		s.renderer.FillRect(&sdl.Rect{X: x, Y: top, W: size, H: size})
	}
}

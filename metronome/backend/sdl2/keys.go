//go:build sdl2

package sdl2

import (
	"github.com/valerio/go-metronome/metronome/input"
	"github.com/valerio/go-metronome/metronome/input/action"
	"github.com/veandco/go-sdl2/sdl"
)

// sdlKeyNameMap converts SDL keys to key names used in default mappings
var sdlKeyNameMap = map[sdl.Keycode]string{
	sdl.K_UP:     "Up",
	sdl.K_DOWN:   "Down",
	sdl.K_LEFT:   "Left",
	sdl.K_RIGHT:  "Right",
	sdl.K_k:      "k",
	sdl.K_j:      "j",
	sdl.K_t:      "t",
	sdl.K_SPACE:  "Space",
	sdl.K_TAB:    "Tab",
	sdl.K_m:      "m",
	sdl.K_s:      "s",
	sdl.K_F9:     "F9",
	sdl.K_ESCAPE: "Escape",
	sdl.K_q:      "q",
	sdl.K_EQUALS: "=",
	sdl.K_PLUS:   "+",
	sdl.K_MINUS:  "-",
}

func buildKeyMapping() map[sdl.Keycode]action.Action {
	mapping := make(map[sdl.Keycode]action.Action)
	for key, keyName := range sdlKeyNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[key] = act
		}
	}
	return mapping
}

// keyMapping maps SDL2 keys to actions
var keyMapping = buildKeyMapping()

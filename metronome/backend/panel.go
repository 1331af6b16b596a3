package backend

import (
	"strings"

	"github.com/valerio/go-metronome/metronome/display"
)

// LCDBox frames the display rows in a box, padded to the panel width.
// Block cells are drawn as full blocks.
func LCDBox(lines [display.Rows]string) []string {
	border := strings.Repeat("─", display.Columns)
	box := make([]string, 0, display.Rows+2)
	box = append(box, "┌"+border+"┐")
	for _, line := range lines {
		box = append(box, "│"+LCDText(line)+"│")
	}
	return append(box, "└"+border+"┘")
}

// LCDText pads a row to the panel width and maps the block character.
func LCDText(line string) string {
	runes := make([]rune, display.Columns)
	for i := range runes {
		runes[i] = ' '
		if i < len(line) {
			runes[i] = toRune(line[i])
		}
	}
	return string(runes)
}

func toRune(c byte) rune {
	if c == display.BlockChar {
		return '█'
	}
	if c < 0x20 || c > 0x7E {
		return '?'
	}
	return rune(c)
}

// BeatBar draws one cell per beat of the bar, the current beat filled.
func BeatBar(beat uint64, beats int) string {
	if beats <= 0 {
		return ""
	}
	current := int(beat % uint64(beats))
	var b strings.Builder
	for i := 0; i < beats; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch {
		case i == current && i == 0:
			b.WriteString("◆")
		case i == current:
			b.WriteString("●")
		default:
			b.WriteString("○")
		}
	}
	return b.String()
}

package display

import (
	"strconv"
)

// Adapter draws the metronome screen on a Driver.
type Adapter struct {
	driver Driver
}

func NewAdapter(driver Driver) *Adapter {
	return &Adapter{driver: driver}
}

// Render clears the display and redraws the signature and tempo lines.
func (a *Adapter) Render(tempo int, label string) {
	top, bottom := Lines(tempo, label)
	a.driver.Clear()
	a.driver.SetCursor(0, 0)
	a.driver.WriteString(top)
	a.driver.SetCursor(1, 0)
	a.driver.WriteString(bottom)
}

// Lines returns the two screen lines for a tempo and signature label.
func Lines(tempo int, label string) (string, string) {
	return Title + label, TempoPrefix + strconv.Itoa(tempo) + TempoSuffix
}

package display

// Driver is a character display controller.
type Driver interface {
	Init() error
	Clear()
	SetCursor(row, col int)
	WriteString(s string)
}

// 2x16 character module geometry.
const (
	Rows    = 2
	Columns = 16
)

// Text fixed by the front panel layout.
const (
	Title       = "METRONOME "
	TempoPrefix = "Tempo = "
	TempoSuffix = " bpm"
)

// BlockChar lights every dot of a cell in the controller's character ROM.
const BlockChar = 0xFF

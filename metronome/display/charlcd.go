package display

import (
	"sync"
	"sync/atomic"
)

// CharLCD is an in-memory HD44780 style character display. Backends read its
// contents to draw the screen.
type CharLCD struct {
	mu          sync.RWMutex
	cells       [Rows][Columns]byte
	row, col    int
	initialized bool

	version atomic.Uint64
}

func NewCharLCD() *CharLCD {
	lcd := &CharLCD{}
	lcd.clear()
	return lcd
}

func (l *CharLCD) Init() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.initialized = true
	l.clear()
	return nil
}

func (l *CharLCD) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clear()
}

func (l *CharLCD) clear() {
	for r := range l.cells {
		for c := range l.cells[r] {
			l.cells[r][c] = ' '
		}
	}
	l.row, l.col = 0, 0
	l.version.Add(1)
}

// SetCursor moves the write position. Out of range positions are clamped.
func (l *CharLCD) SetCursor(row, col int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.row = min(max(row, 0), Rows-1)
	l.col = max(col, 0)
}

// WriteString writes at the cursor. Characters past the last column are
// dropped, as they land in DDRAM outside the visible window.
func (l *CharLCD) WriteString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := 0; i < len(s); i++ {
		if l.col < Columns {
			l.cells[l.row][l.col] = s[i]
		}
		l.col++
	}
	l.version.Add(1)
}

// Fill lights every cell, the power-on self test pattern.
func (l *CharLCD) Fill() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for r := range l.cells {
		for c := range l.cells[r] {
			l.cells[r][c] = BlockChar
		}
	}
	l.version.Add(1)
}

// Lines returns the visible text, one string per row.
func (l *CharLCD) Lines() [Rows]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out [Rows]string
	for r := range l.cells {
		out[r] = string(l.cells[r][:])
	}
	return out
}

// Version changes whenever the contents may have changed.
func (l *CharLCD) Version() uint64 {
	return l.version.Load()
}

// Initialized reports whether Init was called.
func (l *CharLCD) Initialized() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.initialized
}

package display

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"go.bug.st/serial"
)

// SerLCD command bytes (SparkFun serial backpack, HD44780 passthrough).
const (
	serCommand     = 0xFE
	serClear       = 0x01
	serSetPosition = 0x80
)

var serRowOffsets = [Rows]byte{0x00, 0x40}

// SerLCD drives a physical character display through a serial backpack.
// Write errors are logged once and kept; the screen keeps rendering in
// memory elsewhere.
type SerLCD struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	err    error
}

// NewSerLCD writes the SerLCD protocol to w.
func NewSerLCD(w io.Writer) *SerLCD {
	s := &SerLCD{w: w}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// OpenSerLCD opens a serial port at the given baud rate.
func OpenSerLCD(portName string, baud int) (*SerLCD, error) {
	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %v", portName, err)
	}
	slog.Info("Serial display opened", "port", portName, "baud", baud)
	return NewSerLCD(port), nil
}

func (s *SerLCD) Init() error {
	s.write([]byte{serCommand, serClear})
	return s.Err()
}

func (s *SerLCD) Clear() {
	s.write([]byte{serCommand, serClear})
}

func (s *SerLCD) SetCursor(row, col int) {
	row = min(max(row, 0), Rows-1)
	col = min(max(col, 0), Columns-1)
	s.write([]byte{serCommand, serSetPosition | (serRowOffsets[row] + byte(col))})
}

func (s *SerLCD) WriteString(text string) {
	s.write([]byte(text))
}

func (s *SerLCD) write(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}
	if _, err := s.w.Write(b); err != nil {
		s.err = fmt.Errorf("serial display write failed: %v", err)
		slog.Error("Serial display disabled", "error", err)
	}
}

// Err returns the first write error, if any.
func (s *SerLCD) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *SerLCD) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

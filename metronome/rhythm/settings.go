package rhythm

// Settings is the state shared between the beat sequencer and the main loop.
// Writers must hold the sequencer's interrupt mask.
type Settings struct {
	Tempo         Tempo
	TimeSignature TimeSignature
	// TicksPerBeat is derived from Tempo and the current tone frequency.
	TicksPerBeat uint32
}

// Divisor is a shortcut for the current signature's accent period.
func (s Settings) Divisor() uint32 {
	return s.TimeSignature.Divisor()
}

// IsAccent reports whether beat index falls on the accent.
func (s Settings) IsAccent(beat uint64) bool {
	return beat%uint64(s.Divisor()) == 0
}

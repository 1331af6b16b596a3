package sequencer

// Tone is one beep: the square wave frequency and how many ticks it lasts.
type Tone struct {
	Frequency  uint32 `yaml:"frequency"`
	PulseTicks uint32 `yaml:"pulse_ticks"`
}

// ToneMap selects the tone for accented and plain beats.
type ToneMap struct {
	Accent Tone `yaml:"accent"`
	Normal Tone `yaml:"normal"`
}

// DefaultToneMap is the board's stock mapping: a lower, shorter accent.
var DefaultToneMap = ToneMap{
	Accent: Tone{Frequency: 1000, PulseTicks: 20},
	Normal: Tone{Frequency: 2000, PulseTicks: 40},
}

// For returns the accent or normal tone.
func (m ToneMap) For(accent bool) Tone {
	if accent {
		return m.Accent
	}
	return m.Normal
}

// ToneState is the interrupt handler's private per-tick state.
type ToneState struct {
	Frequency  uint32
	PulseTicks uint32
	Accent     bool
	// Elapsed counts ticks since the last pulse ended.
	Elapsed uint32
	Pulsing bool
}

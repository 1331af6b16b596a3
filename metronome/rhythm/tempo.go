package rhythm

import "strconv"

// Tempo is a speed in beats per minute.
type Tempo int

const (
	MinTempo     Tempo = 20
	MaxTempo     Tempo = 250
	DefaultTempo Tempo = 50
)

// Clamp bounds t to [MinTempo, MaxTempo].
func (t Tempo) Clamp() Tempo {
	if t < MinTempo {
		return MinTempo
	}
	if t > MaxTempo {
		return MaxTempo
	}
	return t
}

// Step adds delta and saturates at the bounds, it never wraps.
func (t Tempo) Step(delta int) Tempo {
	return Tempo(int(t) + delta).Clamp()
}

// Valid reports whether t is inside the supported range.
func (t Tempo) Valid() bool {
	return t >= MinTempo && t <= MaxTempo
}

func (t Tempo) String() string {
	return strconv.Itoa(int(t)) + " bpm"
}

// TicksPerBeat returns how many ticks of a rate-per-second tick source fit in
// one beat at tempo, rounded down.
// Panics on a non-positive rate or tempo: either would be a programming error
// upstream, since tempo is clamped and frequencies are validated.
func TicksPerBeat(rate uint32, tempo Tempo) uint32 {
	if rate == 0 {
		panic("rhythm: tick rate must be positive")
	}
	if tempo <= 0 {
		panic("rhythm: tempo must be positive, got " + strconv.Itoa(int(tempo)))
	}
	return uint32(uint64(rate) * 60 / uint64(tempo))
}

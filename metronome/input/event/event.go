package event

// Type represents the type of input event
type Type int

const (
	Press   Type = iota // Key pressed down
	Release             // Key released
	Hold                // Continuous while pressed
)

func (t Type) String() string {
	switch t {
	case Press:
		return "Press"
	case Release:
		return "Release"
	case Hold:
		return "Hold"
	default:
		return "Unknown"
	}
}

package rhythm

import "fmt"

// TimeSignature is one of the selectable meters, in cycling order.
type TimeSignature uint8

const (
	TwoTwo TimeSignature = iota
	TwoFour
	FourFour
	ThreeEight
	FiveEight
	SixEight

	signatureCount
)

// DefaultTimeSignature is selected at power on.
const DefaultTimeSignature = FourFour

type signatureInfo struct {
	label     string
	beats     uint8
	noteValue uint8
	divisor   uint32
}

var signatures = [signatureCount]signatureInfo{
	TwoTwo:     {label: "2/2", beats: 2, noteValue: 2, divisor: 2},
	TwoFour:    {label: "2/4", beats: 2, noteValue: 4, divisor: 2},
	FourFour:   {label: "4/4", beats: 4, noteValue: 4, divisor: 4},
	ThreeEight: {label: "3/8", beats: 3, noteValue: 8, divisor: 3},
	FiveEight:  {label: "5/8", beats: 5, noteValue: 8, divisor: 5},
	SixEight:   {label: "6/8", beats: 6, noteValue: 8, divisor: 6},
}

// All returns every time signature in cycling order.
func All() []TimeSignature {
	all := make([]TimeSignature, signatureCount)
	for i := range all {
		all[i] = TimeSignature(i)
	}
	return all
}

// Divisor is the accent period in beats.
func (ts TimeSignature) Divisor() uint32 {
	return ts.info().divisor
}

// Label is the text shown on the display.
func (ts TimeSignature) Label() string {
	return ts.info().label
}

// Beats is the numerator of the meter.
func (ts TimeSignature) Beats() uint8 {
	return ts.info().beats
}

// NoteValue is the denominator of the meter.
func (ts TimeSignature) NoteValue() uint8 {
	return ts.info().noteValue
}

// Next returns the following signature, wrapping after 6/8.
func (ts TimeSignature) Next() TimeSignature {
	return (ts.normalize() + 1) % signatureCount
}

// Valid reports whether ts is one of the defined signatures.
func (ts TimeSignature) Valid() bool {
	return ts < signatureCount
}

func (ts TimeSignature) String() string {
	return ts.Label()
}

func (ts TimeSignature) normalize() TimeSignature {
	if ts >= signatureCount {
		return DefaultTimeSignature
	}
	return ts
}

func (ts TimeSignature) info() signatureInfo {
	return signatures[ts.normalize()]
}

// ParseTimeSignature looks a signature up by its label, e.g. "3/8".
func ParseTimeSignature(label string) (TimeSignature, error) {
	for i, info := range signatures {
		if info.label == label {
			return TimeSignature(i), nil
		}
	}
	return DefaultTimeSignature, fmt.Errorf("unknown time signature %q", label)
}

// UnmarshalText lets config files and flags use labels.
func (ts *TimeSignature) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeSignature(string(text))
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

func (ts TimeSignature) MarshalText() ([]byte, error) {
	return []byte(ts.Label()), nil
}

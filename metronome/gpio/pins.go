package gpio

// Pin is a bit position within an 8-bit I/O port.
type Pin uint8

// Port A wiring of the metronome board.
const (
	ButtonUp            Pin = 0 // PA0
	ButtonDown          Pin = 1 // PA1
	ButtonTimeSignature Pin = 2 // PA2
	LED                 Pin = 3 // PA3
	Buzzer              Pin = 4 // PA4
)

// Buttons lists the button pins in polling priority order.
var Buttons = [...]Pin{ButtonUp, ButtonDown, ButtonTimeSignature}

// Mask returns the port bit for the pin.
func (p Pin) Mask() uint8 {
	return 1 << p
}

// Masks ORs the bits of all the given pins together.
func Masks(pins ...Pin) uint8 {
	var m uint8
	for _, p := range pins {
		m |= p.Mask()
	}
	return m
}

// IndicatorMask covers the lines driven together on every beat.
var IndicatorMask = Masks(LED, Buzzer)

// ButtonMask covers the three button inputs.
var ButtonMask = Masks(ButtonUp, ButtonDown, ButtonTimeSignature)

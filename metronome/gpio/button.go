package gpio

// Button is a momentary push button on an input pin.
//
// Active-low buttons short the pin to ground against its pull-up; active-high
// buttons pull it to the supply rail.
type Button struct {
	port      *Port
	pin       Pin
	activeLow bool
}

// NewButton binds a button to a port pin.
func NewButton(port *Port, pin Pin, activeLow bool) Button {
	return Button{port: port, pin: pin, activeLow: activeLow}
}

// Pin returns the input line the button is wired to.
func (b Button) Pin() Pin {
	return b.pin
}

// Press closes the contact.
func (b Button) Press() {
	b.port.Drive(b.pin, !b.activeLow)
}

// Release opens the contact.
func (b Button) Release() {
	if b.activeLow {
		b.port.Release(b.pin)
		return
	}
	// Active-high lines have no pull-up holding them; they rest low.
	b.port.Drive(b.pin, false)
}

// Pressed samples the input line and reports whether the contact is closed.
func (b Button) Pressed() bool {
	return b.port.IsHigh(b.pin) != b.activeLow
}

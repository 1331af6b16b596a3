package gpio

import "sync"

// Port models an 8-bit AVR style I/O port: a direction register (DDR), an
// output latch (PORT) that doubles as pull-up enable for input pins, and the
// levels external circuitry drives onto input pins. Reads return what PINx
// would: latched values for outputs, driven or pulled levels for inputs.
//
// A port is shared by the interrupt handler (indicator outputs) and the main
// loop (button inputs), so every access is serialized.
type Port struct {
	mu     sync.Mutex
	ddr    uint8
	latch  uint8
	driven uint8 // input bits with an external level applied
	levels uint8 // levels for driven bits
}

// NewPort returns a port with every pin an input, no pull-ups, nothing driven.
func NewPort() *Port {
	return &Port{}
}

// SetDirection writes DDR: a set bit makes the pin an output.
func (p *Port) SetDirection(outputs uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ddr = outputs
}

// Direction returns the DDR value.
func (p *Port) Direction() uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ddr
}

// Write replaces the output latch.
func (p *Port) Write(value uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.latch = value
}

// Latch returns the output latch.
func (p *Port) Latch() uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latch
}

// Set drives the masked latch bits high.
func (p *Port) Set(mask uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.latch |= mask
}

// Clear drives the masked latch bits low.
func (p *Port) Clear(mask uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.latch &^= mask
}

// Toggle flips the masked latch bits.
func (p *Port) Toggle(mask uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.latch ^= mask
}

// Read returns the pin levels (PINx).
func (p *Port) Read() uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.read()
}

func (p *Port) read() uint8 {
	outputs := p.latch & p.ddr
	inputs := ^p.ddr

	// Undriven inputs float high only when their pull-up is enabled.
	pulled := p.latch & inputs &^ p.driven
	external := p.levels & p.driven & inputs

	return outputs | pulled | external
}

// IsHigh reports the level of a single pin.
func (p *Port) IsHigh(pin Pin) bool {
	return p.Read()&pin.Mask() != 0
}

// Drive applies an external level to an input pin.
func (p *Port) Drive(pin Pin, high bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.driven |= pin.Mask()
	if high {
		p.levels |= pin.Mask()
	} else {
		p.levels &^= pin.Mask()
	}
}

// Release removes any external level from the pin, leaving it to its pull-up.
func (p *Port) Release(pin Pin) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.driven &^= pin.Mask()
	p.levels &^= pin.Mask()
}

package sim

import (
	"errors"

	"dmxtx/core"
)

var ErrNotOutput = errors.New("sim: pin not configured as output")

// GPIO is the simulated GPIO block. The DMX line idles high.
type GPIO struct {
	m       *Machine
	outputs map[core.GPIOPin]bool
	levels  map[core.GPIOPin]bool
	writes  map[core.GPIOPin]int
}

func newGPIO(m *Machine) *GPIO {
	return &GPIO{
		m:       m,
		outputs: make(map[core.GPIOPin]bool),
		levels:  map[core.GPIOPin]bool{LinePin: true},
		writes:  make(map[core.GPIOPin]int),
	}
}

// ConfigureOutput implements core.GPIODriver
func (g *GPIO) ConfigureOutput(pin core.GPIOPin) error {
	g.outputs[pin] = true
	return nil
}

// SetPin implements core.GPIODriver
func (g *GPIO) SetPin(pin core.GPIOPin, value bool) error {
	if !g.outputs[pin] {
		return ErrNotOutput
	}
	g.levels[pin] = value
	g.writes[pin]++
	if pin == LinePin {
		g.m.updateLine()
	}
	return nil
}

// Level returns the last level driven on pin
func (g *GPIO) Level(pin core.GPIOPin) bool {
	return g.levels[pin]
}

// Writes returns the number of SetPin calls for pin
func (g *GPIO) Writes(pin core.GPIOPin) int {
	return g.writes[pin]
}

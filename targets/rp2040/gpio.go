//go:build rp2040

package main

import (
	"errors"
	"machine"

	"dmxtx/core"
)

var errPinRange = errors.New("gpio: pin out of range")

// numPins is the GPIO count of the RP2040 (GPIO0-GPIO29)
const numPins = 30

// RPGPIODriver implements core.GPIODriver over SIO outputs.
// Pins map directly to GPIO numbers.
type RPGPIODriver struct {
	configured [numPins]bool
}

// NewRPGPIODriver creates the GPIO driver
func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{}
}

// ConfigureOutput configures a pin as a digital output.
// Reconfiguring a pin also takes it back from any peripheral function.
func (d *RPGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	if pin >= numPins {
		return errPinRange
	}
	machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinOutput})
	d.configured[pin] = true
	return nil
}

// SetPin drives a configured output. Safe to call from interrupt context.
func (d *RPGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	if pin >= numPins || !d.configured[pin] {
		return errPinRange
	}
	machine.Pin(pin).Set(value)
	return nil
}

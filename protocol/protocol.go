// Package protocol holds the DMX512 link-layer constants and timing math
package protocol

import "errors"

// Version represents the dmxtx firmware version
const Version = "0.1.0"

// Serial line framing (fixed, not configurable at runtime)
const (
	BaudRate = 250000 // bits per second
	DataBits = 8
	StopBits = 2
	Parity   = "none"

	// One slot on the wire: start bit + data bits + stop bits
	BitsPerSlot = 1 + DataBits + StopBits
)

// Frame layout
const (
	StartCodeDimmer = 0x00 // Null start code, standard dimmer data
	MaxChannels     = 512  // Channel slots after the start code
	MaxSlots        = 1 + MaxChannels
)

// Timing minimums for a transmitter, in microseconds
const (
	MinBreakUS        = 88
	MinMarkUS         = 8
	MinBreakToBreakUS = 1204 // Shortest legal frame period (break to break)
	MaxBreakToBreakUS = 1000000
)

var (
	ErrEmptyFrame    = errors.New("dmx frame must contain a start code")
	ErrFrameTooLarge = errors.New("dmx frame exceeds 513 slots")
)

// ValidateFrame checks that a payload (start code plus channels) fits one universe
func ValidateFrame(payload []byte) error {
	if len(payload) == 0 {
		return ErrEmptyFrame
	}
	if len(payload) > MaxSlots {
		return ErrFrameTooLarge
	}
	return nil
}

//go:build rp2040

package main

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ws2812"
)

// Status pixel colours
var (
	colorStarting  = color.RGBA{R: 0x10, G: 0x10, B: 0x00}
	colorRunning   = color.RGBA{R: 0x00, G: 0x10, B: 0x00}
	colorRecovered = color.RGBA{R: 0x20, G: 0x08, B: 0x00}
	colorFault     = color.RGBA{R: 0x20, G: 0x00, B: 0x00}
)

// recoveryHoldFrames is how long the pixel shows a recovery, in frames
const recoveryHoldFrames = 100

// StatusPixel shows the transmitter state on a single WS2812
type StatusPixel struct {
	dev     ws2812.Device
	current color.RGBA
	buf     [1]color.RGBA

	lastRecoveries uint32
	holdUntil      uint32
}

// NewStatusPixel configures pin for a WS2812
func NewStatusPixel(pin machine.Pin) *StatusPixel {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	s := &StatusPixel{dev: ws2812.New(pin)}
	s.set(colorStarting)
	return s
}

// set writes c if it differs from what is shown.
// Writing blocks interrupts for ~30us; call between frames only.
func (s *StatusPixel) set(c color.RGBA) {
	if c == s.current {
		return
	}
	s.current = c
	s.buf[0] = c
	_ = s.dev.WriteColors(s.buf[:])
}

// Update picks a colour from the frame and recovery counters
func (s *StatusPixel) Update(frames, recoveries uint32) {
	if recoveries != s.lastRecoveries {
		s.lastRecoveries = recoveries
		s.holdUntil = frames + recoveryHoldFrames
	}
	if int32(s.holdUntil-frames) > 0 {
		s.set(colorRecovered)
		return
	}
	s.set(colorRunning)
}

// Fault shows a fatal error
func (s *StatusPixel) Fault() {
	s.set(colorFault)
}

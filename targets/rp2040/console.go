//go:build rp2040

package main

import (
	"machine"
)

// The debug console is USB CDC (machine.Serial on RP2040)

// consoleFailures counts consecutive failed writes; output is dropped while
// no host is reading
var consoleFailures uint32

const maxConsoleFailures = 10

// InitConsole configures USB CDC
func InitConsole() {
	_ = machine.Serial.Configure(machine.UARTConfig{})
}

// consoleWriteLine writes s and a line ending. Used as the core debug writer.
func consoleWriteLine(s string) {
	if consoleFailures > maxConsoleFailures {
		// Retry occasionally in case a host has attached
		consoleFailures--
		return
	}
	if _, err := machine.Serial.Write([]byte(s)); err != nil {
		consoleFailures++
		return
	}
	if _, err := machine.Serial.Write([]byte("\r\n")); err != nil {
		consoleFailures++
		return
	}
	consoleFailures = 0
}

// consoleCommand returns the next command byte from the host, if any
func consoleCommand() (byte, bool) {
	if machine.Serial.Buffered() == 0 {
		return 0, false
	}
	b, err := machine.Serial.ReadByte()
	if err != nil {
		return 0, false
	}
	return b, true
}

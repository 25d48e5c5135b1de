package serial

import (
	"io"
)

// Port is a byte stream to the transmitter's debug console.
// Implementations:
// - Native serial (github.com/tarm/serial)
// - In-memory streams in tests
type Port interface {
	io.ReadWriteCloser
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate. The firmware console is USB CDC, which ignores it.
	Baud int

	// Read timeout in milliseconds (0 = block until data arrives)
	ReadTimeout int
}

// DefaultConfig returns the console configuration for device
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 0,
	}
}

package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// GPIODriver is the abstract GPIO interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	ConfigureOutput(pin GPIOPin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error
}

// SerialDriver is the transmit side of the DMX UART.
// Baud rate and frame format (250000 8N2) are set up by the platform
// before the driver is handed to the core.
type SerialDriver interface {
	// EnableTX hands the line pin to the UART transmitter
	EnableTX()

	// DisableTX takes the line pin away from the UART so it can be
	// driven as a plain GPIO output
	DisableTX()

	// TxFull reports whether the hardware transmit FIFO has no room
	TxFull() bool

	// SendByte pushes one byte into the transmit FIFO.
	// Only called after TxFull returned false.
	SendByte(b byte)

	// Busy reports whether bytes are still queued or being shifted out
	Busy() bool

	// TxDepth returns how many bytes the transmit FIFO holds, not counting
	// the shift register
	TxDepth() int

	// EnableTxInterrupt unmasks the transmit-buffer-empty interrupt
	EnableTxInterrupt()

	// DisableTxInterrupt masks the transmit-buffer-empty interrupt
	DisableTxInterrupt()

	// ClearTxInterrupt acknowledges a pending transmit interrupt
	ClearTxInterrupt()
}

// FrameTimer is a one-shot hardware timer used for break and mark widths.
// Expiry is reported by the platform calling Controller.HandleTimerInterrupt.
type FrameTimer interface {
	// Arm starts the timer; it fires once after ticks timer ticks
	Arm(ticks uint32)

	// Stop cancels a pending expiry and halts the timer
	Stop()

	// ClearInterrupt acknowledges the expiry interrupt
	ClearInterrupt()

	// TickRate returns timer ticks per second
	TickRate() uint32
}

// Clock is a free-running counter used for busy-waits and the watchdog.
// It must keep counting while the loop spins on it.
type Clock interface {
	// Now returns the current counter value (wraps at 32 bits)
	Now() uint32

	// TickRate returns counter ticks per second
	TickRate() uint32
}

// Platform bundles the collaborators the core drives.
// All members are required.
type Platform struct {
	GPIO   GPIODriver
	Serial SerialDriver
	Timer  FrameTimer
	Clock  Clock

	Line     GPIOPin // DMX TX line, driven directly during break and mark
	Activity GPIOPin // Diagnostic pin, high while a frame is being sent
}

// validate checks that all collaborators are present
func (p *Platform) validate() error {
	switch {
	case p.GPIO == nil:
		return ErrNoGPIO
	case p.Serial == nil:
		return ErrNoSerial
	case p.Timer == nil:
		return ErrNoTimer
	case p.Clock == nil:
		return ErrNoClock
	}
	return nil
}

package core

import "sync/atomic"

// Transmitter drains a TxBuffer into the UART.
// The first burst is pushed from the control loop; the rest is pushed from
// the transmit-buffer-empty interrupt, so the loop never waits on the FIFO.
type Transmitter struct {
	buf      *TxBuffer
	serial   SerialDriver
	gpio     GPIODriver
	activity GPIOPin

	// Completion flag. Written by the ISR (set) and by the loop (clear in
	// StartTransmission, while the interrupt is masked).
	done atomic.Bool

	// Bytes accepted by the UART, for statistics
	accepted atomic.Uint32
}

// NewTransmitter creates a transmitter for buf on the given serial driver
func NewTransmitter(buf *TxBuffer, serial SerialDriver, gpio GPIODriver, activity GPIOPin) *Transmitter {
	return &Transmitter{
		buf:      buf,
		serial:   serial,
		gpio:     gpio,
		activity: activity,
	}
}

// StartTransmission begins sending the buffer from its current cursor.
// The caller must have reset the buffer and enabled the UART transmitter.
func (t *Transmitter) StartTransmission() {
	_ = t.gpio.SetPin(t.activity, true)
	t.done.Store(false)

	t.sendBytes()

	t.serial.EnableTxInterrupt()
}

// HandleInterrupt services the transmit-buffer-empty interrupt
func (t *Transmitter) HandleInterrupt() {
	t.serial.ClearTxInterrupt()
	t.sendBytes()
	if !t.buf.HasMore() {
		t.done.Store(true)
		t.serial.DisableTxInterrupt()
	}
}

// sendBytes pushes bytes while the FIFO has room
func (t *Transmitter) sendBytes() {
	for !t.serial.TxFull() && t.buf.HasMore() {
		t.serial.SendByte(t.buf.TakeNext())
		t.accepted.Add(1)
	}
}

// Done reports whether the UART has accepted the last byte of the frame
func (t *Transmitter) Done() bool {
	return t.done.Load()
}

// Cancel masks the transmit interrupt and abandons the rest of the frame,
// so an interrupt that was already pending pushes nothing.
// Used by the watchdog with interrupts disabled.
func (t *Transmitter) Cancel() {
	t.serial.DisableTxInterrupt()
	t.buf.Discard()
}

// Accepted returns the total number of bytes accepted by the UART
func (t *Transmitter) Accepted() uint32 {
	return t.accepted.Load()
}

//go:build rp2040

package main

import (
	"device/rp"
	"machine"
	"runtime/interrupt"

	"dmxtx/protocol"
)

// DMXUART drives a PL011 as a transmit-only 250k 8N2 UART for
// core.SerialDriver.
//
// The FIFO is disabled: the transmit interrupt then follows the single
// holding register, so it is raised whenever that register empties,
// whatever the payload length.
//
// The break is generated with the TX pin switched to SIO, so DisableTX and
// EnableTX only move the pin mux; the UART itself stays enabled.
type DMXUART struct {
	Bus *rp.UART0_Type
	tx  machine.Pin
}

// uartISR is the handler the UART1 interrupt calls
var uartISR func()

func handleUART1(interrupt.Interrupt) {
	if uartISR != nil {
		uartISR()
	}
}

// NewDMXUART configures UART1 with tx as its TX pin. The pin starts under
// SIO control; the line driver sees whatever the GPIO driver sets.
func NewDMXUART(tx machine.Pin, isr func()) *DMXUART {
	u := &DMXUART{Bus: rp.UART1, tx: tx}

	rp.RESETS.RESET.SetBits(rp.RESETS_RESET_UART1)
	rp.RESETS.RESET.ClearBits(rp.RESETS_RESET_UART1)
	for !rp.RESETS.RESET_DONE.HasBits(rp.RESETS_RESET_UART1) {
	}

	u.Bus.UARTCR.ClearBits(rp.UART0_UARTCR_UARTEN | rp.UART0_UARTCR_RXE | rp.UART0_UARTCR_TXE)

	u.setBaudRate(protocol.BaudRate)
	// 8 data bits, 2 stop bits, no parity, FIFO disabled
	u.Bus.UARTLCR_H.Set(uint32((protocol.DataBits-5)<<rp.UART0_UARTLCR_H_WLEN_Pos |
		(protocol.StopBits-1)<<rp.UART0_UARTLCR_H_STP2_Pos))

	u.Bus.UARTIMSC.Set(0)
	u.Bus.UARTICR.Set(0x7FF)
	u.Bus.UARTCR.Set(rp.UART0_UARTCR_UARTEN | rp.UART0_UARTCR_TXE)

	uartISR = isr
	intr := interrupt.New(rp.IRQ_UART1_IRQ, handleUART1)
	intr.SetPriority(0x40)
	intr.Enable()

	return u
}

// setBaudRate programs the integer and fractional divisors
func (u *DMXUART) setBaudRate(br uint32) {
	div := 8 * machine.CPUFrequency() / br

	ibrd := div >> 7
	var fbrd uint32
	switch {
	case ibrd == 0:
		ibrd = 1
	case ibrd >= 65535:
		ibrd = 65535
	default:
		fbrd = ((div & 0x7f) + 1) / 2
	}

	u.Bus.UARTIBRD.Set(ibrd)
	u.Bus.UARTFBRD.Set(fbrd)
	// The divisors latch on an LCR_H write
	u.Bus.UARTLCR_H.Set(u.Bus.UARTLCR_H.Get())
}

// EnableTX hands the line pin to the UART
func (u *DMXUART) EnableTX() {
	u.tx.Configure(machine.PinConfig{Mode: machine.PinUART})
}

// DisableTX returns the line pin to SIO
func (u *DMXUART) DisableTX() {
	u.tx.Configure(machine.PinConfig{Mode: machine.PinOutput})
}

// TxFull reports a full holding register
func (u *DMXUART) TxFull() bool {
	return u.Bus.UARTFR.HasBits(rp.UART0_UARTFR_TXFF)
}

// SendByte writes one byte; the caller checks TxFull first
func (u *DMXUART) SendByte(b byte) {
	u.Bus.UARTDR.Set(uint32(b))
}

// Busy reports data still in the holding or shift register
func (u *DMXUART) Busy() bool {
	return u.Bus.UARTFR.HasBits(rp.UART0_UARTFR_BUSY) ||
		!u.Bus.UARTFR.HasBits(rp.UART0_UARTFR_TXFE)
}

// TxDepth is 1: with the FIFO disabled only the holding register queues
func (u *DMXUART) TxDepth() int {
	return 1
}

// EnableTxInterrupt unmasks the transmit interrupt
func (u *DMXUART) EnableTxInterrupt() {
	u.Bus.UARTIMSC.SetBits(rp.UART0_UARTIMSC_TXIM)
}

// DisableTxInterrupt masks the transmit interrupt
func (u *DMXUART) DisableTxInterrupt() {
	u.Bus.UARTIMSC.ClearBits(rp.UART0_UARTIMSC_TXIM)
}

// ClearTxInterrupt acknowledges the transmit interrupt
func (u *DMXUART) ClearTxInterrupt() {
	u.Bus.UARTICR.Set(rp.UART0_UARTICR_TXIC)
}

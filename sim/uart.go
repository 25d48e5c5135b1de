package sim

import "dmxtx/protocol"

// UART is a transmit-only UART with a bounded FIFO feeding a shift
// register. Framing is 8N2 at protocol.BaudRate.
//
// The transmit interrupt flag is raised when the shift register takes the
// last byte out of the FIFO, and is cleared by ClearTxInterrupt or by a
// write to the FIFO. EnableTX and DisableTX select whether the line pin
// follows the UART or the GPIO block; shifting continues either way.
type UART struct {
	m     *Machine
	depth int
	fifo  []byte
	evt   Event

	shifting bool
	cur      byte
	bit      int
	out      bool // TX output, idles high

	txEnabled  bool
	irqEnabled bool
	pending    bool

	accepted int
	shifted  int
	overruns int
}

func newUART(m *Machine, depth int) *UART {
	u := &UART{
		m:     m,
		depth: depth,
		fifo:  make([]byte, 0, depth),
		out:   true,
	}
	u.evt.Handler = u.onBit
	return u
}

// EnableTX implements core.SerialDriver
func (u *UART) EnableTX() {
	u.txEnabled = true
	u.m.updateLine()
}

// DisableTX implements core.SerialDriver
func (u *UART) DisableTX() {
	u.txEnabled = false
	u.m.updateLine()
}

// TxFull implements core.SerialDriver
func (u *UART) TxFull() bool {
	return len(u.fifo) >= u.depth
}

// SendByte implements core.SerialDriver. A write to a full FIFO is lost.
func (u *UART) SendByte(b byte) {
	if u.TxFull() {
		u.overruns++
		return
	}
	u.fifo = append(u.fifo, b)
	u.accepted++
	u.pending = false

	if !u.shifting {
		u.load()
		u.evt.WakeTime = u.m.now + u.m.bitTicks()
		u.m.sched.Schedule(&u.evt)
	}
}

// Busy implements core.SerialDriver
func (u *UART) Busy() bool {
	return u.shifting || len(u.fifo) > 0
}

// TxDepth implements core.SerialDriver
func (u *UART) TxDepth() int { return u.depth }

// EnableTxInterrupt implements core.SerialDriver
func (u *UART) EnableTxInterrupt() { u.irqEnabled = true }

// DisableTxInterrupt implements core.SerialDriver
func (u *UART) DisableTxInterrupt() { u.irqEnabled = false }

// ClearTxInterrupt implements core.SerialDriver
func (u *UART) ClearTxInterrupt() { u.pending = false }

// load moves the next FIFO byte into the shift register and starts its
// start bit. It reports false when the FIFO is empty.
func (u *UART) load() bool {
	if len(u.fifo) == 0 {
		return false
	}
	u.cur = u.fifo[0]
	copy(u.fifo, u.fifo[1:])
	u.fifo = u.fifo[:len(u.fifo)-1]

	u.shifting = true
	u.bit = 0
	u.drive(false)

	if len(u.fifo) == 0 {
		u.pending = true
	}
	return true
}

// onBit runs at every bit boundary while shifting
func (u *UART) onBit(e *Event) uint8 {
	u.bit++
	switch {
	case u.bit <= protocol.DataBits:
		u.drive(u.cur>>(u.bit-1)&1 == 1)
	case u.bit < protocol.BitsPerSlot:
		u.drive(true) // Stop bits
	default:
		u.shifted++
		u.shifting = false
		if !u.load() {
			return SF_DONE
		}
	}
	e.WakeTime += u.m.bitTicks()
	return SF_RESCHEDULE
}

func (u *UART) drive(level bool) {
	if u.out == level {
		return
	}
	u.out = level
	if u.txEnabled {
		u.m.updateLine()
	}
}

// Accepted returns the number of bytes written into the FIFO
func (u *UART) Accepted() int { return u.accepted }

// Shifted returns the number of bytes fully shifted out
func (u *UART) Shifted() int { return u.shifted }

// Overruns returns the number of writes lost to a full FIFO
func (u *UART) Overruns() int { return u.overruns }

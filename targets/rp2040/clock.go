//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"
)

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWH = timerBase + 0x24 // Raw timer high word (no latching)
	timerTIMERAWL = timerBase + 0x28 // Raw timer low word (no latching)

	timerRate = 1000000 // The timer counts microseconds
)

var (
	timerRAWH = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
)

// hwClock implements core.Clock on the 1MHz system timer.
// The low word wraps every ~71 minutes; callers compare with wrap-safe
// subtraction.
type hwClock struct{}

// Now returns the low 32 bits of the microsecond counter
func (hwClock) Now() uint32 {
	return timerRAWL.Get()
}

// TickRate returns the counter rate
func (hwClock) TickRate() uint32 {
	return timerRate
}

// uptime reads the full 64-bit counter
func uptime() uint64 {
	// Read high, low, high again to detect a carry between the reads
	for {
		high1 := timerRAWH.Get()
		low := timerRAWL.Get()
		high2 := timerRAWH.Get()
		if high1 == high2 {
			return (uint64(high1) << 32) | uint64(low)
		}
	}
}

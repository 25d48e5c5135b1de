package core

import (
	"math/bits"

	"dmxtx/protocol"
)

// Config holds the frame timing parameters, in microseconds
type Config struct {
	BreakUS uint32 // Break width (line low)
	MarkUS  uint32 // Mark-after-break width (line high)
	IdleUS  uint32 // Inter-frame idle spent in SLEEPING

	// ProbeFraming also drives the activity pin high during break and mark
	ProbeFraming bool

	// WatchdogFactor enables the stall watchdog when non-zero. A state that
	// waits on an interrupt is abandoned after WatchdogFactor times its
	// expected duration. Must be 0 or at least 2.
	WatchdogFactor uint32
}

const (
	// drainMarginSlots is added to the UART's in-flight capacity when
	// bounding the wait before a break
	drainMarginSlots = 1

	// maxLimitTicks keeps watchdog limits within half the clock range so
	// Elapsed never wraps past them
	maxLimitTicks = 1 << 31
)

// Timing is a Config compiled to ticks for a specific timer and clock
type Timing struct {
	BreakTicks uint32 // Frame timer ticks
	MarkTicks  uint32 // Frame timer ticks
	IdleTicks  uint32 // Clock ticks
	DrainTicks uint32 // Clock ticks allowed for the UART to go idle before a break

	// Watchdog limits in clock ticks, zero when disabled
	BreakLimit uint32
	MarkLimit  uint32
	SendLimit  uint32
}

// DefaultConfig returns the DMX512 transmitter minimums with a ~20ms idle
func DefaultConfig() Config {
	return Config{
		BreakUS: protocol.MinBreakUS,
		MarkUS:  protocol.MinMarkUS,
		IdleUS:  20000,
	}
}

// applyDefaults fills unset widths with the protocol minimums
func (c *Config) applyDefaults() {
	if c.BreakUS == 0 {
		c.BreakUS = protocol.MinBreakUS
	}
	if c.MarkUS == 0 {
		c.MarkUS = protocol.MinMarkUS
	}
}

// Validate checks the configuration against the DMX512 minimums
func (c *Config) Validate() error {
	if c.BreakUS < protocol.MinBreakUS {
		return ErrBreakTooShort
	}
	if c.MarkUS < protocol.MinMarkUS {
		return ErrMarkTooShort
	}
	if c.WatchdogFactor == 1 {
		return ErrWatchdogFactor
	}
	return nil
}

// Compile converts the configuration into ticks.
// timerRate is the FrameTimer tick rate, clockRate the Clock tick rate,
// slots the payload length (used for the SENDING watchdog limit) and
// txDepth the number of bytes the UART can queue ahead of its shift
// register.
func (c *Config) Compile(timerRate, clockRate uint32, slots, txDepth int) (Timing, error) {
	if timerRate == 0 || clockRate == 0 {
		return Timing{}, ErrZeroTickRate
	}
	if err := c.Validate(); err != nil {
		return Timing{}, err
	}
	if txDepth < 1 {
		txDepth = 1
	}

	// Queued bytes plus the one in the shift register
	drainUS := uint64(txDepth+1+drainMarginSlots) * protocol.SlotTimeUS
	if drainUS > 0xFFFFFFFF {
		return Timing{}, ErrTickOverflow
	}

	t := Timing{
		BreakTicks: TicksFromUS(c.BreakUS, timerRate),
		MarkTicks:  TicksFromUS(c.MarkUS, timerRate),
		IdleTicks:  TicksFromUS(c.IdleUS, clockRate),
		DrainTicks: TicksFromUS(uint32(drainUS), clockRate),
	}
	if t.BreakTicks == 0xFFFFFFFF || t.IdleTicks == 0xFFFFFFFF || t.DrainTicks == 0xFFFFFFFF {
		return Timing{}, ErrTickOverflow
	}

	if c.WatchdogFactor != 0 {
		// Limits are multiples of the pulses the timer really produces,
		// measured on the clock
		factor := uint64(c.WatchdogFactor)
		sendUS := uint64(slots) * protocol.SlotTimeUS

		var ok bool
		if t.BreakLimit, ok = scaleTicks(uint64(t.BreakTicks)*factor, timerRate, clockRate); !ok {
			return Timing{}, ErrWatchdogOverflow
		}
		if t.MarkLimit, ok = scaleTicks(uint64(t.MarkTicks)*factor, timerRate, clockRate); !ok {
			return Timing{}, ErrWatchdogOverflow
		}
		if t.SendLimit, ok = scaleTicks(sendUS*factor, 1000000, clockRate); !ok {
			return Timing{}, ErrWatchdogOverflow
		}
	}

	return t, nil
}

// scaleTicks converts n ticks at rate from to ticks at rate to, rounding
// up. It reports false when the result exceeds maxLimitTicks.
func scaleTicks(n uint64, from, to uint32) (uint32, bool) {
	hi, lo := bits.Mul64(n, uint64(to))
	if hi >= uint64(from) {
		return 0, false
	}
	q, r := bits.Div64(hi, lo, uint64(from))
	if r != 0 {
		q++
	}
	if q > maxLimitTicks {
		return 0, false
	}
	return uint32(q), true
}

// FrameTiming returns the nominal wire timing for a payload of slots bytes
func (c *Config) FrameTiming(slots int) protocol.FrameTiming {
	return protocol.FrameTiming{
		BreakUS: c.BreakUS,
		MarkUS:  c.MarkUS,
		Slots:   uint32(slots),
		IdleUS:  c.IdleUS,
	}
}

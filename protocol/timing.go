package protocol

// BitTimeNS is the duration of one bit on the wire at BaudRate
const BitTimeNS = 1000000000 / BaudRate

// SlotTimeUS is the wire time of one slot (start code or channel byte)
const SlotTimeUS = BitsPerSlot * BitTimeNS / 1000

// FrameTiming describes the wire time of one complete DMX512 frame
type FrameTiming struct {
	BreakUS uint32 // Low time before the frame
	MarkUS  uint32 // Mark-after-break
	Slots   uint32 // Start code + channels
	IdleUS  uint32 // Mark time between the last slot and the next break
}

// DataUS returns the time spent shifting slots onto the wire
func (f FrameTiming) DataUS() uint32 {
	return f.Slots * SlotTimeUS
}

// PeriodUS returns the break-to-break period
func (f FrameTiming) PeriodUS() uint32 {
	return f.BreakUS + f.MarkUS + f.DataUS() + f.IdleUS
}

// RefreshHz returns frames per second, rounded down
func (f FrameTiming) RefreshHz() uint32 {
	period := f.PeriodUS()
	if period == 0 {
		return 0
	}
	return 1000000 / period
}

// Conforms reports whether the frame respects the transmitter minimums
// and the break-to-break window
func (f FrameTiming) Conforms() bool {
	if f.BreakUS < MinBreakUS || f.MarkUS < MinMarkUS {
		return false
	}
	if f.Slots == 0 || f.Slots > MaxSlots {
		return false
	}
	period := f.PeriodUS()
	return period >= MinBreakToBreakUS && period <= MaxBreakToBreakUS
}

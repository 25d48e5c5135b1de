package core

// TicksFromUS converts microseconds to ticks at tickRate, rounding up so the
// resulting interval is never shorter than requested
func TicksFromUS(us uint32, tickRate uint32) uint32 {
	ticks := (uint64(us)*uint64(tickRate) + 999999) / 1000000
	if ticks > 0xFFFFFFFF {
		return 0xFFFFFFFF
	}
	return uint32(ticks)
}

// TicksToUS converts ticks at tickRate to whole microseconds (rounded down)
func TicksToUS(ticks uint32, tickRate uint32) uint32 {
	if tickRate == 0 {
		return 0
	}
	return uint32(uint64(ticks) * 1000000 / uint64(tickRate))
}

// TicksToNS converts ticks at tickRate to nanoseconds (rounded down)
func TicksToNS(ticks uint32, tickRate uint32) uint64 {
	if tickRate == 0 {
		return 0
	}
	return uint64(ticks) * 1000000000 / uint64(tickRate)
}

// BusyWait spins until ticks clock ticks have elapsed.
// No blocking primitive is used; interrupts keep running.
func BusyWait(clock Clock, ticks uint32) {
	start := clock.Now()
	for clock.Now()-start < ticks {
	}
}

// Elapsed returns ticks since start, handling counter wrap
func Elapsed(clock Clock, start uint32) uint32 {
	return clock.Now() - start
}

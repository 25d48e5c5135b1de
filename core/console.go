package core

import "dmxtx/protocol"

// String formats the counters as a console stats line
func (s Stats) String() string {
	return protocol.PrefixDMX + protocol.StatsTag +
		" frames=" + utoa(s.Frames) +
		" recoveries=" + utoa(s.Recoveries) +
		" spurious=" + utoa(s.SpuriousTimers) +
		" bytes=" + utoa(s.BytesSent)
}

// HandleConsoleCommand runs a one-byte console command.
// Call from the loop only; output ignores SetDebugEnabled.
func (c *Controller) HandleConsoleCommand(cmd byte) bool {
	if debugPrintln == nil {
		return false
	}
	switch cmd {
	case protocol.CmdStats:
		debugPrintln(c.Stats().String())
	case protocol.CmdDumpTiming:
		DumpTimingRing()
	case protocol.CmdClearTiming:
		ClearTimingRing()
		debugPrintln(protocol.PrefixDMX + "timing ring cleared")
	default:
		return false
	}
	return true
}

package protocol

// Debug console commands, one byte each, sent by the host
const (
	CmdStats       = 's' // Print a stats line
	CmdDumpTiming  = 'd' // Dump the timing ring
	CmdClearTiming = 'c' // Clear the timing ring
)

// Debug console line prefixes
const (
	PrefixDMX    = "[DMX] "
	PrefixTiming = "[TIMING] "
)

// StatsTag follows PrefixDMX on stats lines:
//
//	[DMX] stats frames=120 recoveries=0 spurious=0 bytes=3240
const StatsTag = "stats"

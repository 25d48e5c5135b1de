package sim

import (
	"sort"

	"dmxtx/protocol"
)

// Edge is a level change on the line
type Edge struct {
	At   uint64
	High bool
}

// Wire records level changes on a line that idles high
type Wire struct {
	level bool
	edges []Edge
}

// NewWire returns a wire at the idle (high) level
func NewWire() *Wire {
	return &Wire{level: true}
}

// Set drives the line at time at. Repeated levels are not recorded.
func (w *Wire) Set(at uint64, high bool) {
	if high == w.level {
		return
	}
	w.level = high
	w.edges = append(w.edges, Edge{At: at, High: high})
}

// Level returns the current level
func (w *Wire) Level() bool { return w.level }

// Edges returns the recorded level changes in time order
func (w *Wire) Edges() []Edge { return w.edges }

// Frame is one decoded DMX512 packet
type Frame struct {
	Start          uint64 // Falling edge of the break
	Break          uint64 // Break width in ticks
	MarkAfterBreak uint64 // Mark-after-break width in ticks
	Slots          []byte // Start code followed by channel data
	FramingErrors  int    // Slots with a low stop bit
}

// StartCode returns the first slot
func (f Frame) StartCode() (byte, bool) {
	if len(f.Slots) == 0 {
		return 0, false
	}
	return f.Slots[0], true
}

// Decode splits recorded edges into frames. A low period of at least one
// slot time is a break, even when it cuts a character short; any shorter
// falling edge after a break is a start bit. Bits are sampled mid-cell.
// end is the time recording stopped.
func Decode(edges []Edge, bitTicks, end uint64) []Frame {
	slotTicks := uint64(protocol.BitsPerSlot) * bitTicks

	var frames []Frame
	var resume uint64
	inFrame := false

	for i, e := range edges {
		if e.High {
			continue
		}

		low := end - e.At
		if i+1 < len(edges) {
			low = edges[i+1].At - e.At
		}

		if low >= slotTicks {
			f := Frame{Start: e.At, Break: low}
			switch {
			case i+2 < len(edges):
				f.MarkAfterBreak = edges[i+2].At - edges[i+1].At
			case i+1 < len(edges):
				f.MarkAfterBreak = end - edges[i+1].At
			}
			frames = append(frames, f)
			inFrame = true
			continue
		}
		if !inFrame || e.At < resume {
			continue
		}

		b, ok := decodeSlot(edges, e.At, bitTicks)
		cur := &frames[len(frames)-1]
		cur.Slots = append(cur.Slots, b)
		if !ok {
			cur.FramingErrors++
		}
		// Skip to the middle of the second stop bit
		resume = e.At + uint64(protocol.BitsPerSlot-1)*bitTicks + bitTicks/2
	}
	return frames
}

// decodeSlot samples one 8N2 character whose start bit falls at start
func decodeSlot(edges []Edge, start, bitTicks uint64) (byte, bool) {
	var b byte
	for i := 0; i < protocol.DataBits; i++ {
		if levelAt(edges, start+uint64(i+1)*bitTicks+bitTicks/2) {
			b |= 1 << i
		}
	}
	ok := true
	for i := protocol.DataBits + 1; i < protocol.BitsPerSlot; i++ {
		if !levelAt(edges, start+uint64(i)*bitTicks+bitTicks/2) {
			ok = false
		}
	}
	return b, ok
}

// levelAt returns the line level at time t
func levelAt(edges []Edge, t uint64) bool {
	i := sort.Search(len(edges), func(j int) bool { return edges[j].At > t })
	if i == 0 {
		return true
	}
	return edges[i-1].High
}

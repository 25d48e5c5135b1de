// Package monitor follows the transmitter's debug console
package monitor

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"dmxtx/protocol"
)

// Kind classifies a console line
type Kind int

const (
	KindOther    Kind = iota // Anything unrecognised
	KindStats                // Periodic or requested counters
	KindTiming               // Timing ring dump entry or banner
	KindWatchdog             // Watchdog recovery report
	KindDMX                  // Other controller messages
)

// Line is one parsed console line
type Line struct {
	Kind   Kind
	Raw    string
	Event  string            // Timing event name, if any
	Fields map[string]string // key=value pairs
}

// Stats mirrors the firmware counters
type Stats struct {
	Frames         uint32
	Recoveries     uint32
	SpuriousTimers uint32
	BytesSent      uint32
}

// ParseLine classifies and splits one console line
func ParseLine(raw string) Line {
	raw = strings.TrimRight(raw, "\r\n")
	l := Line{Kind: KindOther, Raw: raw}

	switch {
	case strings.HasPrefix(raw, protocol.PrefixDMX+protocol.StatsTag+" "):
		l.Kind = KindStats
		l.Fields = parseFields(raw[len(protocol.PrefixDMX)+len(protocol.StatsTag)+1:])
	case strings.HasPrefix(raw, protocol.PrefixDMX+"watchdog"):
		l.Kind = KindWatchdog
	case strings.HasPrefix(raw, protocol.PrefixDMX):
		l.Kind = KindDMX
	case strings.HasPrefix(raw, protocol.PrefixTiming):
		l.Kind = KindTiming
		rest := raw[len(protocol.PrefixTiming):]
		if name, fields, ok := strings.Cut(rest, " "); ok && !strings.HasPrefix(rest, "===") {
			l.Event = name
			l.Fields = parseFields(fields)
		}
	}
	return l
}

func parseFields(s string) map[string]string {
	fields := make(map[string]string)
	for _, tok := range strings.Fields(s) {
		if k, v, ok := strings.Cut(tok, "="); ok {
			fields[k] = v
		}
	}
	return fields
}

// Stats extracts counters from a stats line
func (l Line) Stats() (Stats, bool) {
	if l.Kind != KindStats {
		return Stats{}, false
	}
	var s Stats
	for key, dst := range map[string]*uint32{
		"frames":     &s.Frames,
		"recoveries": &s.Recoveries,
		"spurious":   &s.SpuriousTimers,
		"bytes":      &s.BytesSent,
	} {
		v, err := strconv.ParseUint(l.Fields[key], 10, 32)
		if err != nil {
			return Stats{}, false
		}
		*dst = uint32(v)
	}
	return s, true
}

// Monitor reads console lines and tracks the latest counters
type Monitor struct {
	r       io.Reader
	handler func(Line)

	last      Stats
	haveStats bool
	lines     int
	watchdogs int
}

// New creates a monitor reading from r. handler, if not nil, sees every line.
func New(r io.Reader, handler func(Line)) *Monitor {
	return &Monitor{r: r, handler: handler}
}

// Run reads until the stream ends or ctx is cancelled. Cancellation only
// takes effect between lines; close the port to interrupt a blocked read.
func (m *Monitor) Run(ctx context.Context) error {
	sc := bufio.NewScanner(m.r)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.feed(sc.Text())
	}
	if err := sc.Err(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (m *Monitor) feed(raw string) {
	l := ParseLine(raw)
	m.lines++
	switch l.Kind {
	case KindStats:
		if s, ok := l.Stats(); ok {
			m.last = s
			m.haveStats = true
		}
	case KindWatchdog:
		m.watchdogs++
	}
	if m.handler != nil {
		m.handler(l)
	}
}

// Last returns the most recent counters
func (m *Monitor) Last() (Stats, bool) { return m.last, m.haveStats }

// Lines returns the number of lines read
func (m *Monitor) Lines() int { return m.lines }

// Watchdogs returns the number of watchdog reports seen
func (m *Monitor) Watchdogs() int { return m.watchdogs }

// Delta returns the change from prev to cur, handling counter wrap
func Delta(prev, cur Stats) Stats {
	return Stats{
		Frames:         cur.Frames - prev.Frames,
		Recoveries:     cur.Recoveries - prev.Recoveries,
		SpuriousTimers: cur.SpuriousTimers - prev.SpuriousTimers,
		BytesSent:      cur.BytesSent - prev.BytesSent,
	}
}

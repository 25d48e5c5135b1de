package monitor

import (
	"context"
	"strings"
	"testing"

	"dmxtx/core"
)

func TestParseStatsLine(t *testing.T) {
	// The firmware's own formatter produces the line
	want := core.Stats{Frames: 42, Recoveries: 1, SpuriousTimers: 3, BytesSent: 1134}
	l := ParseLine(want.String() + "\r\n")

	if l.Kind != KindStats {
		t.Fatalf("Expected KindStats, got %d", l.Kind)
	}
	s, ok := l.Stats()
	if !ok {
		t.Fatal("Expected stats to parse")
	}
	if s.Frames != 42 || s.Recoveries != 1 || s.SpuriousTimers != 3 || s.BytesSent != 1134 {
		t.Errorf("Unexpected stats: %+v", s)
	}
}

func TestParseTimingLine(t *testing.T) {
	l := ParseLine("[TIMING] TIMER_FIRE state=MARK clock=100 v1=88 v2=0")
	if l.Kind != KindTiming || l.Event != "TIMER_FIRE" {
		t.Fatalf("Unexpected parse: %+v", l)
	}
	if l.Fields["state"] != "MARK" || l.Fields["v1"] != "88" {
		t.Errorf("Unexpected fields: %v", l.Fields)
	}

	banner := ParseLine("[TIMING] === Timing Ring Dump ===")
	if banner.Kind != KindTiming || banner.Event != "" {
		t.Errorf("Banner should have no event, got %+v", banner)
	}
}

func TestParseOtherLines(t *testing.T) {
	tests := []struct {
		raw  string
		kind Kind
	}{
		{"[DMX] watchdog: IN_BREAK stalled for 300 ticks", KindWatchdog},
		{"[DMX] timing ring cleared", KindDMX},
		{"[DMX] stats frames=x", KindStats},
		{"hello", KindOther},
	}
	for _, tt := range tests {
		if got := ParseLine(tt.raw).Kind; got != tt.kind {
			t.Errorf("%q: expected kind %d, got %d", tt.raw, tt.kind, got)
		}
	}

	if _, ok := ParseLine("[DMX] stats frames=x").Stats(); ok {
		t.Error("Malformed stats should not parse")
	}
}

func TestMonitorRun(t *testing.T) {
	stream := strings.Join([]string{
		"[DMX] stats frames=10 recoveries=0 spurious=0 bytes=270",
		"[DMX] watchdog: SENDING stalled for 2400 ticks",
		"[TIMING] === Timing Ring Dump ===",
		"[DMX] stats frames=55 recoveries=1 spurious=0 bytes=1485",
	}, "\n")

	var kinds []Kind
	m := New(strings.NewReader(stream), func(l Line) { kinds = append(kinds, l.Kind) })
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if m.Lines() != 4 || len(kinds) != 4 {
		t.Errorf("Expected 4 lines, got %d", m.Lines())
	}
	if m.Watchdogs() != 1 {
		t.Errorf("Expected 1 watchdog report, got %d", m.Watchdogs())
	}
	last, ok := m.Last()
	if !ok || last.Frames != 55 || last.Recoveries != 1 {
		t.Errorf("Unexpected last stats: %+v", last)
	}
}

func TestMonitorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := New(strings.NewReader("a\nb\n"), nil)
	if err := m.Run(ctx); err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestDelta(t *testing.T) {
	d := Delta(Stats{Frames: 0xFFFFFFFE}, Stats{Frames: 3})
	if d.Frames != 5 {
		t.Errorf("Expected 5 frames across wrap, got %d", d.Frames)
	}
}

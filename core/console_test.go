package core

import (
	"strings"
	"testing"
)

func TestStatsString(t *testing.T) {
	s := Stats{Frames: 120, Recoveries: 2, SpuriousTimers: 1, BytesSent: 3240}
	want := "[DMX] stats frames=120 recoveries=2 spurious=1 bytes=3240"
	if got := s.String(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestHandleConsoleCommand(t *testing.T) {
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(string) {})
	ClearTimingRing()
	defer ClearTimingRing()

	f, err := newFixture(testConfig(), []byte{0x00, 1, 2}, 4)
	if err != nil {
		t.Fatalf("newFixture failed: %v", err)
	}
	f.runUntil(StateSleeping, 10)
	f.tick()

	if !f.ctrl.HandleConsoleCommand('s') {
		t.Fatal("Expected the stats command to be handled")
	}
	if len(lines) != 1 || lines[0] != "[DMX] stats frames=1 recoveries=0 spurious=0 bytes=3" {
		t.Errorf("Unexpected stats output: %v", lines)
	}

	lines = nil
	f.ctrl.HandleConsoleCommand('d')
	if len(lines) < 3 || !strings.Contains(lines[0], "Timing Ring Dump") {
		t.Errorf("Expected a ring dump, got %v", lines)
	}

	f.ctrl.HandleConsoleCommand('c')
	if n := len(TimingEvents()); n != 0 {
		t.Errorf("Expected an empty ring after clear, got %d events", n)
	}

	if f.ctrl.HandleConsoleCommand('?') {
		t.Error("Unknown commands should not be handled")
	}
}

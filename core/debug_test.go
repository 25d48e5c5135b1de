package core

import (
	"strings"
	"testing"
)

func TestTimingRingWraps(t *testing.T) {
	ClearTimingRing()
	defer ClearTimingRing()

	for i := uint32(0); i < TimingRingSize+5; i++ {
		RecordTiming(EvtStateChange, StateBreak, i, i, 0)
	}

	events := TimingEvents()
	if len(events) != TimingRingSize {
		t.Fatalf("Expected %d events, got %d", TimingRingSize, len(events))
	}
	if events[0].Clock != 5 {
		t.Errorf("Expected oldest event at clock 5, got %d", events[0].Clock)
	}
	if last := events[len(events)-1]; last.Clock != TimingRingSize+4 {
		t.Errorf("Expected newest event at clock %d, got %d", TimingRingSize+4, last.Clock)
	}
}

func TestTimingRingDisabled(t *testing.T) {
	ClearTimingRing()
	SetTimingEnabled(false)
	defer SetTimingEnabled(true)

	RecordTiming(EvtTimerFire, StateMark, 1, 0, 0)
	if n := len(TimingEvents()); n != 0 {
		t.Errorf("Expected no events while capture is off, got %d", n)
	}
}

func TestDumpTimingRing(t *testing.T) {
	ClearTimingRing()
	defer ClearTimingRing()

	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(string) {})

	RecordTiming(EvtTimerFire, StateMark, 100, 88, 0)
	RecordTiming(EvtWatchdog, StateInMark, 200, uint32(StateInMark), 17)
	DumpTimingRing()

	if len(lines) != 4 {
		t.Fatalf("Expected header, 2 events and footer, got %d lines: %v", len(lines), lines)
	}
	if lines[1] != "[TIMING] TIMER_FIRE state=MARK clock=100 v1=88 v2=0" {
		t.Errorf("Unexpected line: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "[TIMING] WATCHDOG! state=IN_MARK") {
		t.Errorf("Unexpected line: %q", lines[2])
	}
}

func TestDebugPrintlnGating(t *testing.T) {
	var got []string
	SetDebugWriter(func(s string) { got = append(got, s) })
	defer SetDebugWriter(func(string) {})
	defer SetDebugEnabled(false)

	SetDebugEnabled(false)
	DebugPrintln("hidden")
	SetDebugEnabled(true)
	DebugPrintln("shown")

	if len(got) != 1 || got[0] != "shown" {
		t.Errorf("Expected only the enabled message, got %v", got)
	}
}

func TestControllerRecordsTransitions(t *testing.T) {
	ClearTimingRing()
	defer ClearTimingRing()

	f, err := newFixture(testConfig(), []byte{0x00, 1}, 2)
	if err != nil {
		t.Fatalf("newFixture failed: %v", err)
	}
	f.runUntil(StateSleeping, 10)

	var fires, starts, dones int
	for _, evt := range TimingEvents() {
		switch evt.EventType {
		case EvtTimerFire:
			fires++
		case EvtTxStart:
			starts++
		case EvtTxDone:
			dones++
		}
	}
	if fires != 2 || starts != 1 || dones != 1 {
		t.Errorf("Expected 2 timer fires, 1 start, 1 done; got %d, %d, %d", fires, starts, dones)
	}
}

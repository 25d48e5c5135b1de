package protocol

import "testing"

func TestSlotTime(t *testing.T) {
	if BitTimeNS != 4000 {
		t.Errorf("Expected 4000ns bit time, got %d", BitTimeNS)
	}
	if SlotTimeUS != 44 {
		t.Errorf("Expected 44us slot time, got %d", SlotTimeUS)
	}
}

func TestFrameTiming(t *testing.T) {
	f := FrameTiming{BreakUS: 88, MarkUS: 8, Slots: 27, IdleUS: 20000}

	if f.DataUS() != 27*44 {
		t.Errorf("Expected %d us of data, got %d", 27*44, f.DataUS())
	}

	expected := uint32(88 + 8 + 27*44 + 20000)
	if f.PeriodUS() != expected {
		t.Errorf("Expected period %d, got %d", expected, f.PeriodUS())
	}

	if f.RefreshHz() != 1000000/expected {
		t.Errorf("Expected refresh %d Hz, got %d", 1000000/expected, f.RefreshHz())
	}

	if !f.Conforms() {
		t.Error("Default frame should conform")
	}
}

func TestFrameTimingConforms(t *testing.T) {
	tests := []struct {
		name  string
		frame FrameTiming
		want  bool
	}{
		{"short break", FrameTiming{BreakUS: 80, MarkUS: 8, Slots: 27, IdleUS: 2000}, false},
		{"short mark", FrameTiming{BreakUS: 88, MarkUS: 4, Slots: 27, IdleUS: 2000}, false},
		{"no slots", FrameTiming{BreakUS: 88, MarkUS: 8, Slots: 0, IdleUS: 2000}, false},
		{"too many slots", FrameTiming{BreakUS: 88, MarkUS: 8, Slots: 514, IdleUS: 0}, false},
		{"period too short", FrameTiming{BreakUS: 88, MarkUS: 8, Slots: 2, IdleUS: 0}, false},
		{"full universe", FrameTiming{BreakUS: 88, MarkUS: 8, Slots: 513, IdleUS: 0}, true},
		{"period too long", FrameTiming{BreakUS: 88, MarkUS: 8, Slots: 27, IdleUS: 2000000}, false},
	}

	for _, tt := range tests {
		if got := tt.frame.Conforms(); got != tt.want {
			t.Errorf("%s: expected Conforms()=%v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestValidateFrame(t *testing.T) {
	if err := ValidateFrame(nil); err != ErrEmptyFrame {
		t.Errorf("Expected ErrEmptyFrame, got %v", err)
	}
	if err := ValidateFrame(make([]byte, MaxSlots+1)); err != ErrFrameTooLarge {
		t.Errorf("Expected ErrFrameTooLarge, got %v", err)
	}
	if err := ValidateFrame(make([]byte, MaxSlots)); err != nil {
		t.Errorf("Expected full universe to validate, got %v", err)
	}
}

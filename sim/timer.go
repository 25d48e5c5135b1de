package sim

// Timer is a one-shot frame timer
type Timer struct {
	m    *Machine
	rate uint32
	evt  Event

	armed   bool
	pending bool

	arms  int
	fires int
}

func newTimer(m *Machine, rate uint32) *Timer {
	t := &Timer{m: m, rate: rate}
	t.evt.Handler = t.expire
	return t
}

// Arm implements core.FrameTimer
func (t *Timer) Arm(ticks uint32) {
	if t.armed {
		t.m.sched.Cancel(&t.evt)
	}
	// Convert to clock ticks, rounding up
	d := (uint64(ticks)*TickRate + uint64(t.rate) - 1) / uint64(t.rate)
	t.evt.WakeTime = t.m.now + d
	t.m.sched.Schedule(&t.evt)
	t.armed = true
	t.arms++
}

func (t *Timer) expire(*Event) uint8 {
	t.armed = false
	t.pending = true
	t.fires++
	return SF_DONE
}

// Stop implements core.FrameTimer
func (t *Timer) Stop() {
	if t.armed {
		t.m.sched.Cancel(&t.evt)
	}
	t.armed = false
	t.pending = false
}

// ClearInterrupt implements core.FrameTimer
func (t *Timer) ClearInterrupt() { t.pending = false }

// TickRate implements core.FrameTimer
func (t *Timer) TickRate() uint32 { return t.rate }

// Armed reports whether an expiry is scheduled
func (t *Timer) Armed() bool { return t.armed }

// Arms returns the number of Arm calls
func (t *Timer) Arms() int { return t.arms }

// Fires returns the number of expiries
func (t *Timer) Fires() int { return t.fires }

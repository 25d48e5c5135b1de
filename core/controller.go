package core

import (
	"sync/atomic"

	"dmxtx/protocol"
)

// FrameState is the position in the DMX512 frame cycle
type FrameState uint8

// Frame states, in cycle order
const (
	StateBreak     FrameState = iota // Start a break: line low, arm timer
	StateInBreak                     // Waiting for break timer expiry
	StateMark                        // Start mark-after-break: arm timer
	StateInMark                      // Waiting for mark timer expiry
	StateBeginSend                   // Hand the line to the UART, start sending
	StateSending                     // Waiting for the completion flag
	StateSleeping                    // Inter-frame idle

	numFrameStates
)

var frameStateNames = [numFrameStates]string{
	"BREAK",
	"IN_BREAK",
	"MARK",
	"IN_MARK",
	"BEGIN_SEND",
	"SENDING",
	"SLEEPING",
}

func (s FrameState) String() string {
	if s < numFrameStates {
		return frameStateNames[s]
	}
	return "UNKNOWN"
}

// Stats holds controller counters
type Stats struct {
	Frames         uint32 // Completed frames (SLEEPING -> BREAK)
	Recoveries     uint32 // Watchdog restarts
	SpuriousTimers uint32 // Timer interrupts outside IN_BREAK/IN_MARK
	BytesSent      uint32 // Bytes accepted by the UART
}

// Controller runs the frame timing state machine.
//
// Field ownership:
//   - state: the loop writes BREAK..IN_BREAK, MARK..IN_MARK, BEGIN_SEND..SLEEPING
//     and SLEEPING..BREAK; the timer ISR writes IN_BREAK->MARK and
//     IN_MARK->BEGIN_SEND. The loop never writes while the timer is armed.
//   - buf cursors: the loop resets them with the serial interrupt masked;
//     the transmitter advances them.
//   - completion flag: see Transmitter.
type Controller struct {
	p      Platform
	cfg    Config
	timing Timing
	buf    *TxBuffer
	tx     *Transmitter

	state        atomic.Uint32
	stateEntered uint32     // Clock ticks when the current waiting state began (loop only)
	observed     FrameState // Last state the loop acted on (loop only)

	frames         atomic.Uint32
	recoveries     atomic.Uint32
	spuriousTimers atomic.Uint32

	// onState, when set, is called by the loop on every transition it
	// observes. Used by tests and diagnostics.
	onState func(FrameState)
}

// NewController creates a controller sending payload with the given timing.
// The controller starts in BREAK.
func NewController(p Platform, cfg Config, payload []byte) (*Controller, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if err := protocol.ValidateFrame(payload); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	timing, err := cfg.Compile(p.Timer.TickRate(), p.Clock.TickRate(), len(payload), p.Serial.TxDepth())
	if err != nil {
		return nil, err
	}

	buf := NewTxBuffer(payload)
	c := &Controller{
		p:      p,
		cfg:    cfg,
		timing: timing,
		buf:    buf,
		tx:     NewTransmitter(buf, p.Serial, p.GPIO, p.Activity),

		observed: numFrameStates,
	}
	c.state.Store(uint32(StateBreak))

	if err := p.GPIO.ConfigureOutput(p.Line); err != nil {
		return nil, err
	}
	if err := p.GPIO.ConfigureOutput(p.Activity); err != nil {
		return nil, err
	}
	_ = p.GPIO.SetPin(p.Line, true)
	_ = p.GPIO.SetPin(p.Activity, false)

	return c, nil
}

// State returns the current frame state
func (c *Controller) State() FrameState {
	return FrameState(c.state.Load())
}

// Timing returns the compiled tick counts
func (c *Controller) Timing() Timing {
	return c.timing
}

// Config returns the effective configuration
func (c *Controller) Config() Config {
	return c.cfg
}

// Buffer returns the transmit buffer
func (c *Controller) Buffer() *TxBuffer {
	return c.buf
}

// Transmitter returns the byte stream transmitter
func (c *Controller) Transmitter() *Transmitter {
	return c.tx
}

// Stats returns a snapshot of the counters
func (c *Controller) Stats() Stats {
	return Stats{
		Frames:         c.frames.Load(),
		Recoveries:     c.recoveries.Load(),
		SpuriousTimers: c.spuriousTimers.Load(),
		BytesSent:      c.tx.Accepted(),
	}
}

// OnStateChange registers a callback for loop-observed transitions
func (c *Controller) OnStateChange(fn func(FrameState)) {
	c.onState = fn
}

// setState is the loop-side transition
func (c *Controller) setState(s FrameState) {
	c.state.Store(uint32(s))
	RecordTiming(EvtStateChange, s, c.p.Clock.Now(), uint32(s), 0)
	c.observe(s)
}

// observe reports a state to the callback the first time the loop sees it,
// including the transitions made by the timer ISR
func (c *Controller) observe(s FrameState) {
	if s == c.observed {
		return
	}
	c.observed = s
	if c.onState != nil {
		c.onState(s)
	}
}

// enterWait records the start of a state that waits on an interrupt
func (c *Controller) enterWait(s FrameState) {
	c.stateEntered = c.p.Clock.Now()
	c.setState(s)
}

// Run executes the control loop forever
func (c *Controller) Run() {
	for {
		c.Step()
	}
}

// Step evaluates the current state once
func (c *Controller) Step() {
	s := c.State()
	c.observe(s)

	switch s {
	case StateBreak:
		c.startBreak()

	case StateInBreak:
		c.checkWatchdog(StateInBreak, c.timing.BreakLimit)

	case StateMark:
		c.enterWait(StateInMark)
		c.p.Timer.Arm(c.timing.MarkTicks)

	case StateInMark:
		c.checkWatchdog(StateInMark, c.timing.MarkLimit)

	case StateBeginSend:
		c.p.Serial.EnableTX()
		c.p.Timer.Stop()
		c.buf.Reset()
		c.enterWait(StateSending)
		c.tx.StartTransmission()
		RecordTiming(EvtTxStart, StateSending, c.p.Clock.Now(), uint32(c.buf.Sent()), uint32(c.buf.Len()))

	case StateSending:
		if c.tx.Done() {
			_ = c.p.GPIO.SetPin(c.p.Activity, false)
			RecordTiming(EvtTxDone, StateSending, c.p.Clock.Now(), uint32(c.buf.Sent()), 0)
			c.setState(StateSleeping)
			return
		}
		c.checkWatchdog(StateSending, c.timing.SendLimit)

	case StateSleeping:
		BusyWait(c.p.Clock, c.timing.IdleTicks)
		c.frames.Add(1)
		c.setState(StateBreak)
	}
}

// startBreak performs the BREAK entry actions and moves to IN_BREAK
func (c *Controller) startBreak() {
	// Let the last stop bits leave the shifter before taking the line.
	// The bound covers a full FIFO plus the shift register, so only a
	// wedged UART is cut short.
	start := c.p.Clock.Now()
	for c.p.Serial.Busy() && Elapsed(c.p.Clock, start) < c.timing.DrainTicks {
	}

	c.p.Serial.DisableTxInterrupt()
	c.p.Serial.DisableTX()
	_ = c.p.GPIO.SetPin(c.p.Line, false)
	if c.cfg.ProbeFraming {
		_ = c.p.GPIO.SetPin(c.p.Activity, true)
	}
	c.buf.Reset()

	// State first: the expiry ISR must find IN_BREAK
	c.enterWait(StateInBreak)
	c.p.Timer.Arm(c.timing.BreakTicks)
}

// HandleTimerInterrupt is the frame timer expiry handler.
// Platforms call it from the timer ISR.
func (c *Controller) HandleTimerInterrupt() {
	c.p.Timer.ClearInterrupt()

	now := c.p.Clock.Now()
	switch c.State() {
	case StateInBreak:
		_ = c.p.GPIO.SetPin(c.p.Line, true)
		c.state.Store(uint32(StateMark))
		RecordTiming(EvtTimerFire, StateMark, now, c.timing.BreakTicks, 0)
	case StateInMark:
		c.state.Store(uint32(StateBeginSend))
		RecordTiming(EvtTimerFire, StateBeginSend, now, c.timing.MarkTicks, 0)
	default:
		c.spuriousTimers.Add(1)
		RecordTiming(EvtTimerSpurious, c.State(), now, 0, 0)
	}
}

// HandleSerialInterrupt is the UART transmit-buffer-empty handler.
// Platforms call it from the UART ISR.
func (c *Controller) HandleSerialInterrupt() {
	c.tx.HandleInterrupt()
}

// checkWatchdog restarts the frame if state has waited longer than limit.
// A zero limit disables the check.
func (c *Controller) checkWatchdog(s FrameState, limit uint32) {
	if limit == 0 {
		return
	}
	elapsed := Elapsed(c.p.Clock, c.stateEntered)
	if elapsed <= limit {
		return
	}

	irq := disableInterrupts()
	// The ISR may have moved on while we measured
	if c.State() != s {
		restoreInterrupts(irq)
		return
	}
	c.p.Timer.Stop()
	c.tx.Cancel()
	_ = c.p.GPIO.SetPin(c.p.Activity, false)
	c.recoveries.Add(1)
	RecordTiming(EvtWatchdog, s, c.p.Clock.Now(), uint32(s), elapsed)
	c.setState(StateBreak)
	restoreInterrupts(irq)

	DebugAsync("[DMX] watchdog: " + s.String() + " stalled for " + utoa(elapsed) + " ticks")
}

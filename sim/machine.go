// Package sim runs the frame controller on a simulated board in virtual
// time. Every clock read by the loop advances time by one tick, delivers
// due peripheral events and then any pending interrupt, so the controller
// runs exactly as it would against real hardware.
package sim

import (
	"errors"

	"dmxtx/core"
	"dmxtx/protocol"
)

// TickRate is the virtual clock rate: one tick per microsecond
const TickRate = 1000000

// Simulated pin assignment
const (
	LinePin     core.GPIOPin = 0
	ActivityPin core.GPIOPin = 1
)

// Defaults
const (
	DefaultFIFODepth = 32 // PL011 transmit FIFO
)

var (
	ErrNoController = errors.New("sim: no controller attached")
	ErrTickLimit    = errors.New("sim: tick limit reached")
)

// Options configures the simulated board
type Options struct {
	FIFODepth int    // UART transmit FIFO depth
	TimerRate uint32 // Frame timer tick rate in Hz
}

func (o *Options) applyDefaults() {
	if o.FIFODepth <= 0 {
		o.FIFODepth = DefaultFIFODepth
	}
	if o.TimerRate == 0 {
		o.TimerRate = TickRate
	}
}

// Machine is a simulated board
type Machine struct {
	now   uint64
	inISR bool
	sched Scheduler

	clock *Clock
	gpio  *GPIO
	uart  *UART
	timer *Timer
	line  *Wire

	ctrl      *core.Controller
	timerISR  func()
	serialISR func()

	lostTimerIRQs  int
	lostSerialIRQs int
}

// NewMachine creates a board with the given options
func NewMachine(opts Options) *Machine {
	opts.applyDefaults()

	m := &Machine{line: NewWire()}
	m.clock = &Clock{m: m}
	m.gpio = newGPIO(m)
	m.uart = newUART(m, opts.FIFODepth)
	m.timer = newTimer(m, opts.TimerRate)
	return m
}

// Platform returns the board as the controller sees it
func (m *Machine) Platform() core.Platform {
	return core.Platform{
		GPIO:     m.gpio,
		Serial:   m.uart,
		Timer:    m.timer,
		Clock:    m.clock,
		Line:     LinePin,
		Activity: ActivityPin,
	}
}

// NewController builds a controller on this board and attaches its
// interrupt handlers
func (m *Machine) NewController(cfg core.Config, payload []byte) (*core.Controller, error) {
	c, err := core.NewController(m.Platform(), cfg, payload)
	if err != nil {
		return nil, err
	}
	m.ctrl = c
	m.timerISR = c.HandleTimerInterrupt
	m.serialISR = c.HandleSerialInterrupt
	return c, nil
}

// Controller returns the attached controller, if any
func (m *Machine) Controller() *core.Controller { return m.ctrl }

// Now returns the virtual time in ticks
func (m *Machine) Now() uint64 { return m.now }

// GPIO returns the simulated GPIO block
func (m *Machine) GPIO() *GPIO { return m.gpio }

// UART returns the simulated UART
func (m *Machine) UART() *UART { return m.uart }

// Timer returns the simulated frame timer
func (m *Machine) Timer() *Timer { return m.timer }

// Line returns the recorded DMX line
func (m *Machine) Line() *Wire { return m.line }

// DropTimerInterrupts loses the next n frame timer interrupts
func (m *Machine) DropTimerInterrupts(n int) { m.lostTimerIRQs += n }

// DropSerialInterrupts loses the next n UART transmit interrupts
func (m *Machine) DropSerialInterrupts(n int) { m.lostSerialIRQs += n }

// Advance moves virtual time forward by ticks, running events and
// interrupts as they come due
func (m *Machine) Advance(ticks uint64) {
	target := m.now + ticks
	for {
		wake, ok := m.sched.NextWake()
		if !ok || wake > target {
			break
		}
		if wake > m.now {
			m.now = wake
		}
		m.sched.Dispatch(m.now)
		m.serviceInterrupts()
	}
	m.now = target
	m.serviceInterrupts()
}

// serviceInterrupts runs the handler of every enabled, pending interrupt.
// Handlers run with time frozen.
func (m *Machine) serviceInterrupts() {
	if m.inISR {
		return
	}

	if m.timer.pending && m.timerISR != nil {
		if m.lostTimerIRQs > 0 {
			m.lostTimerIRQs--
			m.timer.pending = false
		} else {
			m.runISR(m.timerISR)
		}
	}

	if m.uart.irqEnabled && m.uart.pending && m.serialISR != nil {
		if m.lostSerialIRQs > 0 {
			m.lostSerialIRQs--
			m.uart.pending = false
		} else {
			m.runISR(m.serialISR)
		}
	}
}

func (m *Machine) runISR(isr func()) {
	m.inISR = true
	isr()
	m.inISR = false
}

// Step runs one controller loop iteration followed by one tick
func (m *Machine) Step() {
	m.ctrl.Step()
	m.Advance(1)
}

// RunFrames steps the controller until n more frames have completed, then
// lets the UART finish shifting. limit bounds the virtual time spent.
func (m *Machine) RunFrames(n int, limit uint64) error {
	if m.ctrl == nil {
		return ErrNoController
	}

	target := m.ctrl.Stats().Frames + uint32(n)
	deadline := m.now + limit
	for m.ctrl.Stats().Frames < target {
		if m.now >= deadline {
			return ErrTickLimit
		}
		m.Step()
	}

	return m.Settle(deadline - m.now)
}

// Settle advances time without running the loop until the UART is idle
func (m *Machine) Settle(limit uint64) error {
	deadline := m.now + limit
	for m.uart.Busy() {
		if m.now >= deadline {
			return ErrTickLimit
		}
		m.Advance(1)
	}
	return nil
}

// Frames decodes the recorded line
func (m *Machine) Frames() []Frame {
	return Decode(m.line.Edges(), m.bitTicks(), m.now)
}

func (m *Machine) bitTicks() uint64 {
	return TickRate / protocol.BaudRate
}

// updateLine drives the recorded line from whichever peripheral owns the pin
func (m *Machine) updateLine() {
	level := m.gpio.Level(LinePin)
	if m.uart.txEnabled {
		level = m.uart.out
	}
	m.line.Set(m.now, level)
}

// Clock is the free-running counter. Reading it from the loop advances
// virtual time by one tick.
type Clock struct {
	m *Machine
}

// Now returns the low 32 bits of the virtual time
func (c *Clock) Now() uint32 {
	if !c.m.inISR {
		c.m.Advance(1)
	}
	return uint32(c.m.now)
}

// TickRate returns TickRate
func (c *Clock) TickRate() uint32 { return TickRate }

package core

// Test doubles for the platform collaborators

const (
	testLine     GPIOPin = 1
	testActivity GPIOPin = 2
)

// fakeGPIO records pin levels
type fakeGPIO struct {
	configured map[GPIOPin]bool
	levels     map[GPIOPin]bool
	writes     int
}

func newFakeGPIO() *fakeGPIO {
	return &fakeGPIO{
		configured: make(map[GPIOPin]bool),
		levels:     make(map[GPIOPin]bool),
	}
}

func (g *fakeGPIO) ConfigureOutput(pin GPIOPin) error {
	g.configured[pin] = true
	return nil
}

func (g *fakeGPIO) SetPin(pin GPIOPin, value bool) error {
	g.levels[pin] = value
	g.writes++
	return nil
}

// fakeSerial models a transmit FIFO of a fixed depth
type fakeSerial struct {
	depth int
	fifo  []byte

	written    []byte // Every byte accepted, in order
	txEnabled  bool
	irqEnabled bool
	irqCleared int
	busy       bool // Forced busy, for drain tests
}

func newFakeSerial(depth int) *fakeSerial {
	return &fakeSerial{depth: depth}
}

func (s *fakeSerial) EnableTX()  { s.txEnabled = true }
func (s *fakeSerial) DisableTX() { s.txEnabled = false }

func (s *fakeSerial) TxFull() bool {
	return len(s.fifo) >= s.depth
}

func (s *fakeSerial) SendByte(b byte) {
	if s.TxFull() {
		panic("SendByte on full FIFO")
	}
	s.fifo = append(s.fifo, b)
	s.written = append(s.written, b)
}

func (s *fakeSerial) Busy() bool {
	return s.busy || len(s.fifo) > 0
}

func (s *fakeSerial) TxDepth() int { return s.depth }

func (s *fakeSerial) EnableTxInterrupt()  { s.irqEnabled = true }
func (s *fakeSerial) DisableTxInterrupt() { s.irqEnabled = false }
func (s *fakeSerial) ClearTxInterrupt()   { s.irqCleared++ }

// drain empties the FIFO as if every queued byte had been shifted out
func (s *fakeSerial) drain() {
	s.fifo = s.fifo[:0]
}

// fakeTimer records the last arm request
type fakeTimer struct {
	rate    uint32
	armed   bool
	ticks   uint32
	arms    []uint32
	stops   int
	cleared int
}

func (t *fakeTimer) Arm(ticks uint32) {
	t.armed = true
	t.ticks = ticks
	t.arms = append(t.arms, ticks)
}

func (t *fakeTimer) Stop() {
	t.armed = false
	t.stops++
}

func (t *fakeTimer) ClearInterrupt() { t.cleared++ }

func (t *fakeTimer) TickRate() uint32 { return t.rate }

// fakeClock advances by step on every read, like a free-running counter
// observed by a spinning loop
type fakeClock struct {
	now  uint32
	step uint32
	rate uint32
}

func (c *fakeClock) Now() uint32 {
	v := c.now
	c.now += c.step
	return v
}

func (c *fakeClock) TickRate() uint32 { return c.rate }

// fixture wires a controller to fakes
type fixture struct {
	gpio   *fakeGPIO
	serial *fakeSerial
	timer  *fakeTimer
	clock  *fakeClock
	ctrl   *Controller
}

func newFixture(cfg Config, payload []byte, fifoDepth int) (*fixture, error) {
	f := &fixture{
		gpio:   newFakeGPIO(),
		serial: newFakeSerial(fifoDepth),
		timer:  &fakeTimer{rate: 1000000},
		clock:  &fakeClock{step: 1, rate: 1000000},
	}
	ctrl, err := NewController(Platform{
		GPIO:     f.gpio,
		Serial:   f.serial,
		Timer:    f.timer,
		Clock:    f.clock,
		Line:     testLine,
		Activity: testActivity,
	}, cfg, payload)
	if err != nil {
		return nil, err
	}
	f.ctrl = ctrl
	return f, nil
}

// tick runs one loop iteration and then delivers any interrupt that
// would be pending: an armed timer expires, and an enabled UART interrupt
// fires once the FIFO has drained. Whatever is left in the FIFO is shifted
// out before the next iteration.
func (f *fixture) tick() {
	f.ctrl.Step()

	if f.timer.armed {
		f.timer.armed = false
		f.ctrl.HandleTimerInterrupt()
	}
	if f.serial.irqEnabled {
		f.serial.drain()
		f.ctrl.HandleSerialInterrupt()
	}
	if f.serial.txEnabled && !f.serial.irqEnabled {
		f.serial.drain()
	}
}

// runUntil ticks until the controller reaches state or maxTicks pass
func (f *fixture) runUntil(state FrameState, maxTicks int) bool {
	for i := 0; i < maxTicks; i++ {
		if f.ctrl.State() == state {
			return true
		}
		f.tick()
	}
	return f.ctrl.State() == state
}

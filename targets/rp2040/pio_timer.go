//go:build rp2040

package main

import (
	"device/rp"
	"machine"
	"runtime/interrupt"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// PIO one-shot timer for the break and mark-after-break.
//
// Each word pushed to the TX FIFO is a delay count. The state machine
// counts it down at pioTimerRate and then raises PIO IRQ flag 0, which is
// routed to the PIO1_IRQ_0 interrupt line.
//
// Program:
//
//	0: pull block        ; wait for a delay
//	1: out x, 32         ; X = delay
//	2: jmp x-- 2         ; count down, X+1 cycles
//	3: irq set 0         ; signal expiry
//
// From the FIFO write to the IRQ flag takes X+4 cycles.
func buildTimerProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		asm.Pull(false, true).Encode(),
		asm.Out(rp2pio.OutDestX, 32).Encode(),
		asm.Jmp(2, rp2pio.JmpXNZeroDec).Encode(),
		pioIRQSet0,
	}
}

const (
	pioIRQSet0     = 0xc000 // irq set 0 (not relative, no wait)
	pioTimerOrigin = 0      // Jump target above assumes offset 0
	pioTimerRate   = 1000000
	pioTimerFixed  = 4 // Cycles spent outside the countdown loop

	pioIRQFlag     = 1 << 0 // IRQ register flag 0
	pioIRQ0InteSM0 = 1 << 8 // IRQ0_INTE bit for flag 0
)

// timerISR is the handler the PIO1 IRQ 0 interrupt calls
var timerISR func()

func handlePIO1IRQ0(interrupt.Interrupt) {
	if timerISR != nil {
		timerISR()
	}
}

// PIOFrameTimer implements core.FrameTimer on a PIO1 state machine
type PIOFrameTimer struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	offset uint8
}

// NewPIOFrameTimer loads the timer program on PIO1 state machine smNum
func NewPIOFrameTimer(smNum uint8, isr func()) (*PIOFrameTimer, error) {
	t := &PIOFrameTimer{pio: rp2pio.PIO1}
	t.sm = t.pio.StateMachine(smNum)
	t.sm.TryClaim()

	program := buildTimerProgram()
	offset, err := t.pio.AddProgram(program, pioTimerOrigin)
	if err != nil {
		return nil, err
	}
	t.offset = offset

	whole, frac, err := rp2pio.ClkDivFromFrequency(pioTimerRate, machine.CPUFrequency())
	if err != nil {
		return nil, err
	}

	cfg := rp2pio.DefaultStateMachineConfig()
	// Shift right, no autopull, 32-bit words
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(whole, frac)
	t.sm.Init(offset, cfg)

	rp.PIO1.IRQ.Set(pioIRQFlag)
	rp.PIO1.IRQ0_INTE.SetBits(pioIRQ0InteSM0)

	timerISR = isr
	intr := interrupt.New(rp.IRQ_PIO1_IRQ_0, handlePIO1IRQ0)
	intr.SetPriority(0x40)
	intr.Enable()

	t.sm.SetEnabled(true)
	return t, nil
}

// Arm starts a one-shot countdown of ticks at TickRate
func (t *PIOFrameTimer) Arm(ticks uint32) {
	var x uint32
	if ticks > pioTimerFixed {
		x = ticks - pioTimerFixed
	}
	t.sm.TxPut(x)
}

// Stop abandons any countdown and returns the program to its pull
func (t *PIOFrameTimer) Stop() {
	t.sm.SetEnabled(false)
	t.sm.ClearFIFOs()
	t.sm.Restart()
	t.sm.ClkDivRestart()
	t.sm.Exec(rp2pio.AssemblerV0{}.Jmp(t.offset, rp2pio.JmpAlways).Encode())
	t.sm.SetEnabled(true)
	rp.PIO1.IRQ.Set(pioIRQFlag)
}

// ClearInterrupt acknowledges the expiry flag
func (t *PIOFrameTimer) ClearInterrupt() {
	rp.PIO1.IRQ.Set(pioIRQFlag)
}

// TickRate returns the countdown rate
func (t *PIOFrameTimer) TickRate() uint32 {
	return pioTimerRate
}

//go:build rp2040

package main

import (
	"machine"
	"runtime"
	"time"

	"dmxtx/core"
	"dmxtx/protocol"
)

// Board wiring
const (
	pinLine     = machine.GPIO4  // UART1 TX, RS-485 driver DI
	pinDriverEn = machine.GPIO6  // RS-485 driver DE, held high
	pinActivity = machine.GPIO25 // On-board LED
	pinStatus   = machine.GPIO16 // WS2812 status pixel
)

const (
	watchdogFactor   = 4   // Software watchdog: stall limit as a multiple of the nominal wait
	hwWatchdogMillis = 500 // Hardware watchdog, fed between frames
	statsEveryFrames = 2000
)

var (
	ctrl   *core.Controller
	status *StatusPixel

	lastRecoveries uint32
)

func main() {
	// Clear any watchdog state left from before the reset
	_ = machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})

	InitConsole()
	core.SetDebugWriter(consoleWriteLine)
	core.SetDebugEnabled(true)
	core.InitAsyncDebug()

	status = NewStatusPixel(pinStatus)

	pinDriverEn.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pinDriverEn.High()

	cfg := core.DefaultConfig()
	cfg.WatchdogFactor = watchdogFactor

	uart := NewDMXUART(pinLine, serialInterrupt)
	timer, err := NewPIOFrameTimer(0, timerInterrupt)
	if err != nil {
		fatal("frame timer: " + err.Error())
	}

	ctrl, err = core.NewController(core.Platform{
		GPIO:     NewRPGPIODriver(),
		Serial:   uart,
		Timer:    timer,
		Clock:    hwClock{},
		Line:     core.GPIOPin(pinLine),
		Activity: core.GPIOPin(pinActivity),
	}, cfg, core.DefaultPayload())
	if err != nil {
		fatal("controller: " + err.Error())
	}
	ctrl.OnStateChange(func(s core.FrameState) {
		if s == core.StateSleeping {
			betweenFrames()
		}
	})

	core.DebugPrintln(protocol.PrefixDMX + "transmitter " + protocol.Version + " starting")

	_ = machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: hwWatchdogMillis})
	_ = machine.Watchdog.Start()

	ctrl.Run()
}

func timerInterrupt() {
	ctrl.HandleTimerInterrupt()
}

func serialInterrupt() {
	ctrl.HandleSerialInterrupt()
}

// betweenFrames runs once per frame on entry to SLEEPING. Time spent here
// lengthens the inter-frame idle.
func betweenFrames() {
	machine.Watchdog.Update()

	stats := ctrl.Stats()
	status.Update(stats.Frames, stats.Recoveries)

	if stats.Recoveries != lastRecoveries {
		lastRecoveries = stats.Recoveries
		core.DumpTimingRing()
	}
	if stats.Frames%statsEveryFrames == 0 {
		core.DebugPrintln(stats.String())
	}

	if cmd, ok := consoleCommand(); ok {
		ctrl.HandleConsoleCommand(cmd)
	}

	// Let the async debug writer drain
	runtime.Gosched()
}

// fatal reports err and blinks the activity LED forever
func fatal(msg string) {
	status.Fault()
	pinActivity.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		consoleWriteLine(protocol.PrefixDMX + "fatal: " + msg)
		for i := 0; i < 10; i++ {
			pinActivity.High()
			time.Sleep(100 * time.Millisecond)
			pinActivity.Low()
			time.Sleep(100 * time.Millisecond)
		}
	}
}

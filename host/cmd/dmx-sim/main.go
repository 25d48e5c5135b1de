package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"

	"dmxtx/core"
	"dmxtx/host/simconfig"
	"dmxtx/sim"
)

var (
	configPath = flag.String("config", "", "Simulator YAML configuration (built-in defaults when empty)")
	frames     = flag.Int("frames", 0, "Frames to run, overriding the configuration")
	dumpTiming = flag.Bool("dump-timing", false, "Print the controller timing ring after the run")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	if err := run(os.Stdout); err != nil {
		glog.Errorf("%v", err)
		glog.Flush()
		os.Exit(1)
	}
}

func loadConfig() (*simconfig.Config, error) {
	if *configPath == "" {
		return simconfig.Default(), nil
	}
	return simconfig.Load(*configPath)
}

func run(out io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	if *frames > 0 {
		cfg.Run.Frames = *frames
	}
	if err := simconfig.Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	core.SetDebugWriter(func(s string) { fmt.Fprintln(out, s) })
	core.SetDebugEnabled(bool(glog.V(1)))

	m := sim.NewMachine(cfg.SimOptions())
	payload := cfg.FramePayload()
	ctrl, err := m.NewController(cfg.CoreConfig(), payload)
	if err != nil {
		return fmt.Errorf("controller setup failed: %w", err)
	}
	m.DropTimerInterrupts(cfg.Run.DropTimerIRQs)
	m.DropSerialInterrupts(cfg.Run.DropSerialIRQs)

	if glog.V(2) {
		ctrl.OnStateChange(func(s core.FrameState) {
			glog.Infof("t=%d %s", m.Now(), s)
		})
	}

	t := ctrl.Timing()
	glog.Infof("running %d frames: %d slots, break %d ticks, mark %d ticks, fifo depth %d",
		cfg.Run.Frames, len(payload), t.BreakTicks, t.MarkTicks, cfg.Board.FIFODepth)

	if err := m.RunFrames(cfg.Run.Frames, cfg.Run.TickLimit); err != nil {
		return fmt.Errorf("run stopped at t=%d in %s: %w", m.Now(), ctrl.State(), err)
	}

	report(out, m, ctrl, payload)
	if *dumpTiming {
		core.DumpTimingRing()
	}
	return nil
}

func report(out io.Writer, m *sim.Machine, ctrl *core.Controller, payload []byte) {
	cfg := ctrl.Config()
	nominal := cfg.FrameTiming(len(payload))
	fmt.Fprintf(out, "nominal: period %dus (%d Hz), conforms=%v\n",
		nominal.PeriodUS(), nominal.RefreshHz(), nominal.Conforms())

	decoded := m.Frames()
	for i, f := range decoded {
		sc, _ := f.StartCode()
		fmt.Fprintf(out, "frame %3d: t=%-9d break=%-5d mab=%-4d slots=%-3d start=0x%02x",
			i, f.Start, f.Break, f.MarkAfterBreak, len(f.Slots), sc)
		if i > 0 {
			fmt.Fprintf(out, " period=%d", f.Start-decoded[i-1].Start)
		}
		if f.FramingErrors > 0 {
			fmt.Fprintf(out, " framing_errors=%d", f.FramingErrors)
		}
		if !bytes.Equal(f.Slots, payload) {
			fmt.Fprint(out, " MISMATCH")
		}
		fmt.Fprintln(out)
	}

	s := ctrl.Stats()
	fmt.Fprintf(out, "stats: frames=%d recoveries=%d spurious_timers=%d bytes=%d overruns=%d\n",
		s.Frames, s.Recoveries, s.SpuriousTimers, s.BytesSent, m.UART().Overruns())
}

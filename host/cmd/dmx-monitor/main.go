package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/golang/glog"

	"dmxtx/host/monitor"
	"dmxtx/host/serial"
	"dmxtx/protocol"
)

var (
	device        = flag.String("device", "/dev/ttyACM0", "Serial device path of the transmitter console")
	baud          = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	statsInterval = flag.Duration("stats-interval", 5*time.Second, "Request counters this often (0 disables)")
	dumpOnStart   = flag.Bool("dump", false, "Request a timing ring dump on connect")
	quiet         = flag.Bool("quiet", false, "Only print stats and watchdog lines")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx); err != nil && err != context.Canceled {
		glog.Errorf("%v", err)
		glog.Flush()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	port, err := serial.Open(cfg)
	if err != nil {
		return err
	}
	glog.Infof("connected to %s", *device)

	// Closing the port unblocks the reader
	go func() {
		<-ctx.Done()
		port.Close()
	}()

	send := func(cmd byte) {
		if _, err := port.Write([]byte{cmd}); err != nil {
			glog.Warningf("console write failed: %v", err)
		}
	}

	if *dumpOnStart {
		send(protocol.CmdDumpTiming)
	}
	if *statsInterval > 0 {
		go func() {
			ticker := time.NewTicker(*statsInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					send(protocol.CmdStats)
				}
			}
		}()
	}

	var prev monitor.Stats
	var havePrev bool
	m := monitor.New(port, func(l monitor.Line) {
		switch l.Kind {
		case monitor.KindStats:
			s, ok := l.Stats()
			if !ok {
				glog.Warningf("malformed stats line: %q", l.Raw)
				return
			}
			if havePrev {
				d := monitor.Delta(prev, s)
				fmt.Printf("%s (+%d frames, +%d recoveries)\n", l.Raw, d.Frames, d.Recoveries)
				if d.Recoveries > 0 {
					glog.Warningf("%d watchdog recoveries since last report", d.Recoveries)
				}
			} else {
				fmt.Println(l.Raw)
			}
			prev, havePrev = s, true
		case monitor.KindWatchdog:
			glog.Warning(l.Raw)
			fmt.Println(l.Raw)
		default:
			if !*quiet {
				fmt.Println(l.Raw)
			}
		}
	})

	err = m.Run(ctx)
	glog.Infof("read %d lines, %d watchdog reports", m.Lines(), m.Watchdogs())
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Package simconfig loads simulator run descriptions from YAML
package simconfig

import (
	"os"

	"gopkg.in/yaml.v3"

	"dmxtx/core"
	"dmxtx/sim"
)

type Config struct {
	Controller ControllerConfig `yaml:"controller"`
	Board      BoardConfig      `yaml:"board"`
	Run        RunConfig        `yaml:"run"`

	// Slot values, start code first. Empty means the default payload.
	Payload []int `yaml:"payload"`
}

// ---- CONTROLLER ----

type ControllerConfig struct {
	BreakUS        uint32 `yaml:"break_us"`
	MarkUS         uint32 `yaml:"mark_us"`
	IdleUS         uint32 `yaml:"idle_us"`
	WatchdogFactor uint32 `yaml:"watchdog_factor"` // 0 disables
	ProbeFraming   bool   `yaml:"probe_framing"`
}

// ---- BOARD ----

type BoardConfig struct {
	FIFODepth   int    `yaml:"fifo_depth"`
	TimerRateHz uint32 `yaml:"timer_rate_hz"`
}

// ---- RUN ----

type RunConfig struct {
	Frames         int    `yaml:"frames"`
	TickLimit      uint64 `yaml:"tick_limit"`
	DropTimerIRQs  int    `yaml:"drop_timer_irqs"`
	DropSerialIRQs int    `yaml:"drop_serial_irqs"`
}

// Default returns the configuration used when a field is absent
func Default() *Config {
	dc := core.DefaultConfig()
	return &Config{
		Controller: ControllerConfig{
			BreakUS: dc.BreakUS,
			MarkUS:  dc.MarkUS,
			IdleUS:  dc.IdleUS,
		},
		Board: BoardConfig{
			FIFODepth:   sim.DefaultFIFODepth,
			TimerRateHz: sim.TickRate,
		},
		Run: RunConfig{
			Frames:    5,
			TickLimit: 10000000,
		},
	}
}

// Parse decodes YAML over the defaults
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and decodes a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// CoreConfig returns the controller configuration
func (c *Config) CoreConfig() core.Config {
	return core.Config{
		BreakUS:        c.Controller.BreakUS,
		MarkUS:         c.Controller.MarkUS,
		IdleUS:         c.Controller.IdleUS,
		ProbeFraming:   c.Controller.ProbeFraming,
		WatchdogFactor: c.Controller.WatchdogFactor,
	}
}

// SimOptions returns the board options
func (c *Config) SimOptions() sim.Options {
	return sim.Options{
		FIFODepth: c.Board.FIFODepth,
		TimerRate: c.Board.TimerRateHz,
	}
}

// FramePayload returns the slots to transmit.
// It assumes Validate has accepted the configuration.
func (c *Config) FramePayload() []byte {
	if len(c.Payload) == 0 {
		return core.DefaultPayload()
	}
	out := make([]byte, len(c.Payload))
	for i, v := range c.Payload {
		out[i] = byte(v)
	}
	return out
}

package simconfig

import (
	"fmt"

	"dmxtx/protocol"
)

// Validate checks configuration correctness.
// It does not mutate the configuration.
func Validate(cfg *Config) error {
	cc := cfg.CoreConfig()
	if err := cc.Validate(); err != nil {
		return fmt.Errorf("controller: %w", err)
	}

	if cfg.Board.FIFODepth < 1 {
		return fmt.Errorf("board: fifo_depth must be at least 1, got %d", cfg.Board.FIFODepth)
	}
	if cfg.Board.TimerRateHz == 0 {
		return fmt.Errorf("board: timer_rate_hz must be non-zero")
	}

	if cfg.Run.Frames < 1 {
		return fmt.Errorf("run: frames must be at least 1, got %d", cfg.Run.Frames)
	}
	if cfg.Run.TickLimit == 0 {
		return fmt.Errorf("run: tick_limit must be non-zero")
	}
	if cfg.Run.DropTimerIRQs < 0 || cfg.Run.DropSerialIRQs < 0 {
		return fmt.Errorf("run: interrupt drop counts must not be negative")
	}

	if len(cfg.Payload) > protocol.MaxSlots {
		return fmt.Errorf("payload: %d slots exceeds %d", len(cfg.Payload), protocol.MaxSlots)
	}
	for i, v := range cfg.Payload {
		if v < 0 || v > 0xFF {
			return fmt.Errorf("payload: slot %d value %d out of range", i, v)
		}
	}

	return nil
}

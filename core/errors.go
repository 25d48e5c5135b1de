package core

import "errors"

// Startup errors. The transmit path itself has no error returns.
var (
	ErrNoGPIO   = errors.New("platform: GPIO driver not configured")
	ErrNoSerial = errors.New("platform: serial driver not configured")
	ErrNoTimer  = errors.New("platform: frame timer not configured")
	ErrNoClock  = errors.New("platform: clock not configured")

	ErrBreakTooShort  = errors.New("config: break shorter than 88us")
	ErrMarkTooShort   = errors.New("config: mark-after-break shorter than 8us")
	ErrWatchdogFactor = errors.New("config: watchdog factor must be 0 or at least 2")
	ErrZeroTickRate   = errors.New("config: timer tick rate is zero")
	ErrTickOverflow   = errors.New("config: duration does not fit the timer")

	ErrWatchdogOverflow = errors.New("config: watchdog limit does not fit the clock")
)

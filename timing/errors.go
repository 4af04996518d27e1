package timing

import "errors"

var (
	ErrZeroDelay    = errors.New("timer delay must be non-zero")
	ErrNilCallback  = errors.New("timer callback is nil")
	ErrTimerRunning = errors.New("timer already running")
)

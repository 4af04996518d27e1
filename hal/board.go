package hal

import (
	"io"

	"github.com/ystepanoff/lbmwm1110/nvm"
	"github.com/ystepanoff/lbmwm1110/timing"
	"github.com/ystepanoff/lbmwm1110/transport"
)

// Board is the set of primitive drivers of one platform.
type Board struct {
	Bus      transport.Driver
	Flash    nvm.Flash
	Counter  timing.CounterSource
	RNG      RNG
	System   System
	Watchdog timing.Watchdog
	Trace    io.Writer
	IRQ      EdgeSource
}

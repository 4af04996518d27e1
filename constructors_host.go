//go:build !tinygo && !baremetal

// This file is built only for non-embedded targets (host-based testing).
package lbmwm1110

import (
	"github.com/ystepanoff/lbmwm1110/driver/stub"
)

// NewHardware builds a Hardware on the simulated board.
func NewHardware(opts Options) (*Hardware, error) {
	return NewHardwareWithBoard(stub.NewBoard().HAL(opts.WatchdogPeriod), opts)
}

//go:build tinygo || baremetal

// This file is built only for embedded targets (using real radio hardware).
package lbmwm1110

import (
	"github.com/ystepanoff/lbmwm1110/driver/nrf"
)

// NewHardware builds a Hardware on the WM1110 nRF52840.
func NewHardware(opts Options) (*Hardware, error) {
	return NewHardwareWithBoard(nrf.NewBoard(), opts)
}

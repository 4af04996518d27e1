//go:build tinygo || baremetal

package nrf

import (
	"machine"

	"github.com/ystepanoff/lbmwm1110/hal"
)

// IRQPin is the LR1110 IRQ line. Carriers that route it elsewhere set it
// before NewBoard.
var IRQPin = machine.P1_08

// DefaultWatchdogMillis is the WDT period used by NewBoard.
const DefaultWatchdogMillis = 2000

// NewBoard returns the nRF52840 primitives of the WM1110.
func NewBoard() hal.Board {
	return hal.Board{
		Bus:      New(),
		Flash:    Flash{},
		Counter:  Counter{},
		RNG:      RNG{},
		System:   System{},
		Watchdog: Watchdog{TimeoutMillis: DefaultWatchdogMillis},
		Trace:    machine.Serial,
		IRQ:      IRQLine{Pin: IRQPin},
	}
}

//go:build tinygo || baremetal

package nrf

import (
	"machine"
)

// WM1110 wiring of the LR1110.
const (
	NSSPin    = machine.P1_12
	SCKPin    = machine.P1_13
	MOSIPin   = machine.P1_14
	MISOPin   = machine.P1_15
	BusyPin   = machine.P1_11
	NResetPin = machine.P1_10

	SPIFrequency = 8000000
)

// Driver implements transport.Driver on the nRF52840 SPIM peripheral. NSS is
// a GPIO so that an empty select pulse can wake the LR1110.
type Driver struct {
	spi *machine.SPI
}

func New() *Driver { return &Driver{spi: machine.SPI0} }

func (d *Driver) Configure() error {
	StartHFCLK()

	NResetPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	NResetPin.High()
	BusyPin.Configure(machine.PinConfig{Mode: machine.PinInput})
	NSSPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	NSSPin.High()

	return d.spi.Configure(machine.SPIConfig{
		Frequency: SPIFrequency,
		SCK:       SCKPin,
		SDO:       MOSIPin,
		SDI:       MISOPin,
		Mode:      0,
	})
}

func (d *Driver) BeginTransfer() { NSSPin.Low() }

func (d *Driver) EndTransfer() { NSSPin.High() }

// Transfer never fails on this target; the SPIM has no error path once
// configured.
func (d *Driver) Transfer(tx, rx []byte) error {
	return d.spi.Tx(tx, rx)
}

func (d *Driver) Busy() bool { return BusyPin.Get() }

func (d *Driver) SetReset(high bool) { NResetPin.Set(high) }

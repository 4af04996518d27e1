//go:build !tinygo && !baremetal

// Package periph drives an LR1110 from a Linux host through periph.io SPI and
// GPIO, for bring-up of WM1110 modules wired to a single board computer.
package periph

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	proto "github.com/ystepanoff/lbmwm1110/protocol"
)

// BusConfig names the SPI port and the GPIO lines wired to the LR1110.
type BusConfig struct {
	Port      string
	Frequency physic.Frequency
	NSS       string
	Busy      string
	NReset    string
}

// Bus implements transport.Driver over a periph.io SPI port. NSS is driven as
// a plain GPIO so that an empty select pulse can wake the device.
type Bus struct {
	cfg    BusConfig
	port   spi.PortCloser
	conn   spi.Conn
	nss    gpio.PinIO
	busy   gpio.PinIO
	nreset gpio.PinIO

	mu  sync.Mutex
	err error
}

func NewBus(cfg BusConfig) *Bus {
	if cfg.Frequency == 0 {
		cfg.Frequency = 8 * physic.MegaHertz
	}
	return &Bus{cfg: cfg}
}

func pinByName(role, name string) (gpio.PinIO, error) {
	if name == "" {
		return nil, fmt.Errorf("periph: %s pin not configured", role)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("periph: %s pin %q not found", role, name)
	}
	return p, nil
}

func (b *Bus) Configure() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph: host init: %w", err)
	}

	var err error
	if b.nss, err = pinByName("nss", b.cfg.NSS); err != nil {
		return err
	}
	if b.busy, err = pinByName("busy", b.cfg.Busy); err != nil {
		return err
	}
	if b.nreset, err = pinByName("nreset", b.cfg.NReset); err != nil {
		return err
	}

	if err := b.nss.Out(gpio.High); err != nil {
		return fmt.Errorf("periph: nss: %w", err)
	}
	if err := b.nreset.Out(gpio.High); err != nil {
		return fmt.Errorf("periph: nreset: %w", err)
	}
	if err := b.busy.In(gpio.Float, gpio.NoEdge); err != nil {
		return fmt.Errorf("periph: busy: %w", err)
	}

	if b.port, err = spireg.Open(b.cfg.Port); err != nil {
		return fmt.Errorf("periph: open %q: %w", b.cfg.Port, err)
	}
	if b.conn, err = b.port.Connect(b.cfg.Frequency, spi.Mode0, 8); err != nil {
		b.port.Close()
		return fmt.Errorf("periph: connect %q: %w", b.cfg.Port, err)
	}
	return nil
}

// BeginTransfer and EndTransfer cannot report errors through the driver
// interface; a failed select line is remembered and returned by the next
// Transfer.
func (b *Bus) BeginTransfer() { b.setNSS(gpio.Low) }

func (b *Bus) EndTransfer() { b.setNSS(gpio.High) }

func (b *Bus) setNSS(l gpio.Level) {
	if b.nss == nil {
		return
	}
	if err := b.nss.Out(l); err != nil {
		b.mu.Lock()
		b.err = fmt.Errorf("periph: nss: %w", err)
		b.mu.Unlock()
	}
}

func (b *Bus) Transfer(tx, rx []byte) error {
	b.mu.Lock()
	err := b.err
	b.err = nil
	b.mu.Unlock()
	if err != nil {
		return err
	}
	if b.conn == nil {
		return errors.New("periph: bus not configured")
	}

	n := max(len(tx), len(rx))
	if tx == nil {
		tx = make([]byte, n)
		for i := range tx {
			tx[i] = proto.NOP
		}
	}
	if rx == nil {
		rx = make([]byte, n)
	}
	return b.conn.Tx(tx, rx)
}

func (b *Bus) Busy() bool {
	if b.busy == nil {
		return false
	}
	return b.busy.Read() == gpio.High
}

func (b *Bus) SetReset(high bool) {
	if b.nreset == nil {
		return
	}
	l := gpio.Low
	if high {
		l = gpio.High
	}
	if err := b.nreset.Out(l); err != nil {
		b.mu.Lock()
		b.err = fmt.Errorf("periph: nreset: %w", err)
		b.mu.Unlock()
	}
}

func (b *Bus) Close() error {
	if b.port == nil {
		return nil
	}
	return b.port.Close()
}

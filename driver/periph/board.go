//go:build !tinygo && !baremetal

package periph

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"

	"github.com/ystepanoff/lbmwm1110/hal"
	"github.com/ystepanoff/lbmwm1110/nvm"
	"github.com/ystepanoff/lbmwm1110/timing"
)

// IRQLine watches the radio IRQ pin for rising edges.
type IRQLine struct {
	name string

	mu   sync.Mutex
	pin  gpio.PinIO
	done chan struct{}
}

func NewIRQLine(name string) *IRQLine { return &IRQLine{name: name} }

func (l *IRQLine) Listen(fire func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pin != nil {
		return nil
	}
	pin, err := pinByName("irq", l.name)
	if err != nil {
		return err
	}
	if err := pin.In(gpio.PullDown, gpio.RisingEdge); err != nil {
		return fmt.Errorf("periph: irq: %w", err)
	}
	l.pin = pin
	l.done = make(chan struct{})

	go func(done <-chan struct{}) {
		for {
			if pin.WaitForEdge(-1) {
				fire()
			}
			select {
			case <-done:
				return
			default:
			}
		}
	}(l.done)
	return nil
}

func (l *IRQLine) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pin == nil {
		return nil
	}
	close(l.done)
	err := l.pin.Halt()
	l.pin = nil
	return err
}

// System ends the process: a host has no MCU to reset, and the supervisor
// restarts the tool with the persisted contexts.
type System struct {
	ExitCode int
}

func (s System) Reset() {
	log.Error().Int("code", s.ExitCode).Msg("mcu reset, exiting")
	os.Exit(s.ExitCode)
}

// BoardConfig is the host wiring of one WM1110.
type BoardConfig struct {
	Bus            BusConfig
	IRQ            string
	FlashImage     string
	PageSize       int
	PageCount      int
	WatchdogPeriod time.Duration
	Trace          io.Writer
}

// Board owns the host resources behind a hal.Board.
type Board struct {
	cfg BoardConfig

	Bus   *Bus
	Flash *nvm.FileFlash
	IRQ   *IRQLine
}

func Open(cfg BoardConfig) (*Board, error) {
	flash, err := nvm.OpenFileFlash(cfg.FlashImage, cfg.PageSize, cfg.PageCount)
	if err != nil {
		return nil, err
	}
	return &Board{
		cfg:   cfg,
		Bus:   NewBus(cfg.Bus),
		Flash: flash,
		IRQ:   NewIRQLine(cfg.IRQ),
	}, nil
}

// HAL returns the primitive set consumed by the hardware context.
func (b *Board) HAL() hal.Board {
	sys := System{ExitCode: 1}
	trace := b.cfg.Trace
	if trace == nil {
		trace = os.Stderr
	}
	return hal.Board{
		Bus:      b.Bus,
		Flash:    b.Flash,
		Counter:  timing.NewHostCounter(),
		RNG:      hal.CryptoRNG{},
		System:   sys,
		Watchdog: timing.NewSoftWatchdog(b.cfg.WatchdogPeriod, sys.Reset),
		Trace:    trace,
		IRQ:      b.IRQ,
	}
}

func (b *Board) Close() error {
	var first error
	for _, c := range []io.Closer{b.IRQ, b.Bus, b.Flash} {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

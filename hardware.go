package lbmwm1110

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ystepanoff/lbmwm1110/hal"
	"github.com/ystepanoff/lbmwm1110/nvm"
	"github.com/ystepanoff/lbmwm1110/timing"
	"github.com/ystepanoff/lbmwm1110/transport"
)

// Options tunes a Hardware. Zero values select the WM1110 defaults.
type Options struct {
	Radio          transport.Config
	ApplicationEnd int
	RegMode        hal.RegMode
	WatchdogPeriod time.Duration
	Observer       transport.Observer
}

// DefaultOptions returns the WM1110 defaults.
func DefaultOptions() Options {
	return Options{
		Radio:          transport.DefaultConfig(),
		ApplicationEnd: nvm.DefaultApplicationEnd,
		RegMode:        hal.RegModeDCDC,
		WatchdogPeriod: timing.DefaultWatchdogPeriod,
	}
}

// Hardware owns every component that touches the WM1110: the radio bus, the
// context pages, the time base and the interrupt lines. Create one per
// physical device and pass it to whatever needs the radio.
type Hardware struct {
	board Board
	radio *transport.Radio
	store *nvm.ContextStore
	clock *timing.RTC
	timer *timing.OneShot
	irq   *hal.EdgeInterrupt
	hooks *hal.ScanHooks
	modem *hal.Modem
	bsp   *hal.BSP
}

// NewHardwareWithBoard builds a Hardware on top of an arbitrary board.
func NewHardwareWithBoard(b Board, opts Options) (*Hardware, error) {
	if b.Bus == nil || b.Flash == nil || b.Counter == nil || b.System == nil {
		return nil, errors.New("lbmwm1110: board needs a bus, flash, counter and system")
	}
	if opts.ApplicationEnd == 0 {
		opts.ApplicationEnd = nvm.DefaultApplicationEnd
	}

	pages, err := nvm.NewPageMap(opts.ApplicationEnd, b.Flash.PageSize(), b.Flash.PageCount())
	if err != nil {
		return nil, fmt.Errorf("lbmwm1110: context pages: %w", err)
	}

	hw := &Hardware{
		board: b,
		radio: transport.NewRadioWithDriver(b.Bus, opts.Radio),
		store: nvm.NewContextStore(b.Flash, pages),
		clock: timing.NewRTC(b.Counter),
		timer: timing.NewOneShot(),
		irq:   hal.NewEdgeInterrupt(b.IRQ),
		hooks: &hal.ScanHooks{},
	}
	if opts.Observer != nil {
		hw.radio.SetObserver(opts.Observer)
	}
	hw.bsp = hal.NewBSP(hw.hooks, opts.RegMode)
	hw.modem = hal.NewModem(hal.ModemConfig{
		Store:    hw.store,
		Clock:    hw.clock,
		Timer:    hw.timer,
		IRQ:      hw.irq,
		RNG:      b.RNG,
		System:   b.System,
		Watchdog: b.Watchdog,
		Tracer:   hal.NewTracer(b.Trace),
	})
	return hw, nil
}

// Begin configures the bus and control lines. The radio is assumed awake.
func (hw *Hardware) Begin() error {
	if err := hw.radio.Begin(); err != nil {
		return err
	}
	page, err := hw.store.Pages().Page(nvm.ContextModem)
	if err != nil {
		return fmt.Errorf("lbmwm1110: context pages: %w", err)
	}
	log.Info().Int("modem_page", page).Msg("hardware ready")
	return nil
}

// Reset hard-resets the LR1110 and waits until it accepts commands.
func (hw *Hardware) Reset() error { return hw.radio.Reset() }

// AttachGnssPrescan sets the action run before a GNSS scan. It replaces any
// earlier one; nil detaches.
func (hw *Hardware) AttachGnssPrescan(fn func()) { hw.hooks.AttachPrescan(fn) }

func (hw *Hardware) AttachGnssPostscan(fn func()) { hw.hooks.AttachPostscan(fn) }

func (hw *Hardware) StartWatchdog() error {
	if hw.board.Watchdog == nil {
		return errors.New("lbmwm1110: board has no watchdog")
	}
	return hw.board.Watchdog.Start()
}

func (hw *Hardware) ReloadWatchdog() {
	if hw.board.Watchdog != nil {
		hw.board.Watchdog.Reload()
	}
}

func (hw *Hardware) Radio() *transport.Radio      { return hw.radio }
func (hw *Hardware) Store() *nvm.ContextStore     { return hw.store }
func (hw *Hardware) Clock() *timing.RTC           { return hw.clock }
func (hw *Hardware) Timer() *timing.OneShot       { return hw.timer }
func (hw *Hardware) RadioIRQ() *hal.EdgeInterrupt { return hw.irq }
func (hw *Hardware) ScanHooks() *hal.ScanHooks    { return hw.hooks }
func (hw *Hardware) Modem() *hal.Modem            { return hw.modem }
func (hw *Hardware) BSP() *hal.BSP                { return hw.bsp }

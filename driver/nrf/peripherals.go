//go:build tinygo || baremetal

package nrf

import (
	"device/arm"
	"device/nrf"
	"machine"
	"runtime/interrupt"
)

// StartHFCLK starts the high-frequency crystal required for 8 MHz SPI.
func StartHFCLK() {
	nrf.CLOCK.EVENTS_HFCLKSTARTED.Set(0)
	nrf.CLOCK.TASKS_HFCLKSTART.Set(1)
	for nrf.CLOCK.EVENTS_HFCLKSTARTED.Get() == 0 {
	}
}

// RTC2 runs from the 32.768 kHz clock the TinyGo runtime already started for
// RTC1.
var rtcOverflow func()

// Counter exposes RTC2 as a timing.CounterSource.
type Counter struct{}

func (Counter) Counter() uint32 { return nrf.RTC2.COUNTER.Get() }

// OverflowPending reports a wrap the RTC2 handler has not serviced yet.
func (Counter) OverflowPending() bool { return nrf.RTC2.EVENTS_OVRFLW.Get() != 0 }

func (Counter) OnOverflow(fn func()) {
	rtcOverflow = fn

	nrf.RTC2.TASKS_STOP.Set(1)
	nrf.RTC2.TASKS_CLEAR.Set(1)
	nrf.RTC2.PRESCALER.Set(0)
	nrf.RTC2.EVENTS_OVRFLW.Set(0)
	nrf.RTC2.INTENSET.Set(nrf.RTC_INTENSET_OVRFLW)

	intr := interrupt.New(nrf.IRQ_RTC2, rtc2Handler)
	intr.SetPriority(0xC0)
	intr.Enable()

	nrf.RTC2.TASKS_START.Set(1)
}

func rtc2Handler(interrupt.Interrupt) {
	if nrf.RTC2.EVENTS_OVRFLW.Get() != 0 {
		nrf.RTC2.EVENTS_OVRFLW.Set(0)
		if rtcOverflow != nil {
			rtcOverflow()
		}
	}
}

// RNG reads the hardware random number generator with bias correction.
type RNG struct{}

func (RNG) Uint32() uint32 {
	nrf.RNG.CONFIG.Set(nrf.RNG_CONFIG_DERCEN_Enabled)
	nrf.RNG.TASKS_START.Set(1)

	var v uint32
	for i := 0; i < 4; i++ {
		nrf.RNG.EVENTS_VALRDY.Set(0)
		for nrf.RNG.EVENTS_VALRDY.Get() == 0 {
		}
		v = v<<8 | nrf.RNG.VALUE.Get()
	}

	nrf.RNG.TASKS_STOP.Set(1)
	return v
}

// System resets the MCU through the AIRCR register.
type System struct{}

func (System) Reset() { arm.SystemReset() }

// Watchdog wraps the nRF52840 WDT. Once started it runs until reset.
type Watchdog struct {
	TimeoutMillis uint32
}

func (w Watchdog) Start() error {
	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: w.TimeoutMillis})
	return machine.Watchdog.Start()
}

func (w Watchdog) Reload() { machine.Watchdog.Update() }

// IRQLine delivers rising edges of the LR1110 IRQ pin.
type IRQLine struct {
	Pin machine.Pin
}

func (l IRQLine) Listen(fire func()) error {
	l.Pin.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	return l.Pin.SetInterrupt(machine.PinRising, func(machine.Pin) { fire() })
}

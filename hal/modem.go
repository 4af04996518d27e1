package hal

import (
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ystepanoff/lbmwm1110/nvm"
	"github.com/ystepanoff/lbmwm1110/timing"
)

// Fixed environment values reported to the stack.
const (
	BatteryLevel            uint8  = 254
	Temperature             int8   = 20
	Voltage                 uint8  = 254
	BoardDelayMs            int8   = 1
	RadioTCXOStartupDelayMs uint32 = 30
)

const crashTraceFormat = "\x1B[0;31mcrash log :%s:%d\n\x1B[0m"

// ModemConfig lists the collaborators of a Modem.
type ModemConfig struct {
	Store    ContextStorage
	Clock    Clock
	Timer    Timer
	IRQ      *EdgeInterrupt
	RNG      RNG
	System   System
	Watchdog timing.Watchdog
	Tracer   *Tracer
}

// Modem is the HAL surface called by the LoRaWAN modem stack. The stack
// treats every failure below it as a programming error, so methods that
// could fail end in AssertFail instead of returning an error.
type Modem struct {
	store    ContextStorage
	clock    Clock
	timer    Timer
	irq      *EdgeInterrupt
	rng      RNG
	system   System
	watchdog timing.Watchdog
	tracer   *Tracer
	crash    CrashLog
}

func NewModem(cfg ModemConfig) *Modem {
	m := &Modem{
		store:    cfg.Store,
		clock:    cfg.Clock,
		timer:    cfg.Timer,
		irq:      cfg.IRQ,
		rng:      cfg.RNG,
		system:   cfg.System,
		watchdog: cfg.Watchdog,
		tracer:   cfg.Tracer,
	}
	if m.irq == nil {
		m.irq = NewEdgeInterrupt(nil)
	}
	if m.rng == nil {
		m.rng = CryptoRNG{}
	}
	if m.tracer == nil {
		m.tracer = NewTracer(nil)
	}
	return m
}

// ResetMCU restarts the whole system.
func (m *Modem) ResetMCU() {
	log.Warn().Msg("mcu reset requested")
	m.system.Reset()
}

func (m *Modem) ReloadWatchdog() {
	if m.watchdog != nil {
		m.watchdog.Reload()
	}
}

func (m *Modem) TimeInSeconds() uint32 { return m.clock.ElapsedSeconds() }

// CompensatedTimeInSeconds equals TimeInSeconds: the RTC is not drift
// corrected.
func (m *Modem) CompensatedTimeInSeconds() uint32 { return m.clock.ElapsedSeconds() }

func (m *Modem) TimeCompensationInSeconds() int32 { return 0 }

func (m *Modem) TimeInMilliseconds() uint32 { return m.clock.ElapsedMilliseconds() }

func (m *Modem) TimeIn100Microseconds() uint32 { return m.clock.Elapsed100Microseconds() }

func (m *Modem) RadioIRQTimestampIn100Microseconds() uint32 {
	return m.clock.Elapsed100Microseconds()
}

func (m *Modem) StartTimer(ms uint32, fn func()) {
	if err := m.timer.Start(ms, fn); err != nil {
		m.fatal(err)
	}
}

func (m *Modem) StopTimer() { m.timer.Stop() }

// DisableModemIRQ masks the deadline timer and the radio IRQ together.
func (m *Modem) DisableModemIRQ() {
	m.timer.DisableIRQ()
	m.irq.Disable()
}

func (m *Modem) EnableModemIRQ() {
	m.timer.EnableIRQ()
	m.irq.Enable()
}

func (m *Modem) ContextRestore(id nvm.ContextID, buf []byte) {
	if err := m.store.Restore(id, buf); err != nil {
		m.fatal(err)
	}
}

func (m *Modem) ContextStore(id nvm.ContextID, blob []byte) {
	if err := m.store.Store(id, blob); err != nil {
		m.fatal(err)
	}
}

func (m *Modem) StoreCrashLog(p []byte) { m.crash.Store(p) }

func (m *Modem) RestoreCrashLog() [CrashLogSize]byte { return m.crash.Restore() }

func (m *Modem) SetCrashLogStatus(available bool) { m.crash.SetStatus(available) }

func (m *Modem) CrashLogStatus() bool { return m.crash.Status() }

// AssertFail records fn as the crash record, traces the failure site and
// resets the MCU.
func (m *Modem) AssertFail(fn string, line uint32) {
	m.StoreCrashLog([]byte(fn))
	m.SetCrashLogStatus(true)
	m.PrintTrace(crashTraceFormat, fn, line)
	m.ResetMCU()
}

// fatal turns err into an assert attributed to the calling HAL method.
func (m *Modem) fatal(err error) {
	fn, line := "unknown", uint32(0)
	if pc, _, l, ok := runtime.Caller(1); ok {
		line = uint32(l)
		if f := runtime.FuncForPC(pc); f != nil {
			fn = f.Name()[strings.LastIndex(f.Name(), "/")+1:]
		}
	}
	log.Error().Err(err).Str("func", fn).Uint32("line", line).Msg("modem assert")
	m.AssertFail(fn, line)
}

func (m *Modem) RandomNumber() uint32 { return m.rng.Uint32() }

func (m *Modem) RandomInRange(a, b uint32) uint32 { return RandomInRange(m.rng, a, b) }

func (m *Modem) SignedRandomInRange(a, b int32) int32 { return SignedRandomInRange(m.rng, a, b) }

// ConfigRadioIRQ installs fn as the radio IRQ handler.
func (m *Modem) ConfigRadioIRQ(fn func()) {
	if err := m.irq.Begin(fn); err != nil {
		m.fatal(err)
	}
}

func (m *Modem) ClearRadioIRQPending() { m.irq.Clear() }

// The board does not switch the TCXO supply.
func (m *Modem) StartRadioTCXO() {}
func (m *Modem) StopRadioTCXO()  {}

func (m *Modem) RadioTCXOStartupDelayMs() uint32 { return RadioTCXOStartupDelayMs }

func (m *Modem) BatteryLevel() uint8 { return BatteryLevel }

func (m *Modem) Temperature() int8 { return Temperature }

func (m *Modem) Voltage() uint8 { return Voltage }

func (m *Modem) BoardDelayMs() int8 { return BoardDelayMs }

func (m *Modem) PrintTrace(format string, args ...any) { m.tracer.Printf(format, args...) }

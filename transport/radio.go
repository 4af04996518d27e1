package transport

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	proto "github.com/ystepanoff/lbmwm1110/protocol"
)

// Config holds the device-revision specific parameters of the framing layer.
// Zero fields take the LR1110 defaults.
type Config struct {
	// SleepOpcode is the command prefix after which the device powers down.
	SleepOpcode proto.Opcode
	// SleepSettle is held after the sleep command so the next call cannot
	// wake the device before it is fully asleep.
	SleepSettle time.Duration
	// ResetPulse is the NRESET low time and the post-release wait.
	ResetPulse time.Duration
	// ResetPoll is the BUSY polling interval after a reset.
	ResetPoll time.Duration
	// BusyTimeout bounds every wait on the BUSY line. Zero spins forever.
	BusyTimeout time.Duration
}

// DefaultConfig returns the LR1110 parameters.
func DefaultConfig() Config {
	return Config{
		SleepOpcode: proto.DefaultSleepOpcode,
		SleepSettle: proto.SleepSettleMicros * time.Microsecond,
		ResetPulse:  proto.ResetPulseMicros * time.Microsecond,
		ResetPoll:   proto.ResetPollMillis * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SleepOpcode == (proto.Opcode{}) {
		c.SleepOpcode = d.SleepOpcode
	}
	if c.SleepSettle <= 0 {
		c.SleepSettle = d.SleepSettle
	}
	if c.ResetPulse <= 0 {
		c.ResetPulse = d.ResetPulse
	}
	if c.ResetPoll <= 0 {
		c.ResetPoll = d.ResetPoll
	}
	return c
}

// Radio tracks the transceiver power state and frames commands on top of a
// Driver. It is not safe for concurrent use: the bus carries one exchange at
// a time and callers serialize access.
type Radio struct {
	driver   Driver
	cfg      Config
	state    PowerState
	delay    func(time.Duration)
	observer Observer
}

func NewRadioWithDriver(d Driver, cfg Config) *Radio {
	return &Radio{
		driver:   d,
		cfg:      cfg.withDefaults(),
		state:    PowerAwake,
		delay:    time.Sleep,
		observer: nopObserver{},
	}
}

// SetObserver installs o as the activity observer. A nil o disables it.
func (r *Radio) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	r.observer = o
}

// SetDelay replaces the settle/reset delay function.
func (r *Radio) SetDelay(fn func(time.Duration)) {
	if fn == nil {
		fn = time.Sleep
	}
	r.delay = fn
}

func (r *Radio) Config() Config { return r.cfg }

func (r *Radio) State() PowerState { return r.state }

// Begin configures the driver. The device is assumed awake after power-on.
func (r *Radio) Begin() error {
	if err := r.driver.Configure(); err != nil {
		return fmt.Errorf("transport: configure: %w", err)
	}
	r.state = PowerAwake
	return nil
}

// Reset pulses NRESET and waits for the device to accept commands again.
// At the end of the startup sequence the device is in standby and awake.
func (r *Radio) Reset() error {
	r.driver.EndTransfer()

	r.driver.SetReset(false)
	r.delay(r.cfg.ResetPulse)
	r.driver.SetReset(true)
	r.delay(r.cfg.ResetPulse)

	var deadline time.Time
	if r.cfg.BusyTimeout > 0 {
		deadline = time.Now().Add(r.cfg.BusyTimeout)
	}
	for r.driver.Busy() {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return fmt.Errorf("transport: reset: %w", proto.ErrBusyTimeout)
		}
		r.delay(r.cfg.ResetPoll)
	}

	r.state = PowerAwake
	r.observer.ResetDone()
	log.Debug().Msg("radio reset")
	return nil
}

// WakeupAndWaitForReady wakes a sleeping device with an empty NSS pulse and
// then waits for BUSY to release. It runs before every exchange, not only
// after sleep, because BUSY also covers command processing.
//
// With a zero BusyTimeout a device that never releases BUSY hangs the caller;
// the system watchdog is what guarantees forward progress in that case.
func (r *Radio) WakeupAndWaitForReady() error {
	if r.state == PowerSleep {
		r.pulse()
	}
	return r.waitReady()
}

// Wake sends a wake pulse whatever the tracked state and waits for BUSY to
// release. Use it when attaching to a device another process may have put
// to sleep; a pulse on an awake device is ignored.
func (r *Radio) Wake() error {
	r.pulse()
	if err := r.waitReady(); err != nil {
		return fmt.Errorf("transport: wake: %w", err)
	}
	return nil
}

func (r *Radio) pulse() {
	r.driver.BeginTransfer()
	r.driver.EndTransfer()
	r.state = PowerAwake
	r.observer.WakePulse()
}

func (r *Radio) waitReady() error {
	if r.cfg.BusyTimeout <= 0 {
		for r.driver.Busy() {
		}
		return nil
	}

	deadline := time.Now().Add(r.cfg.BusyTimeout)
	for r.driver.Busy() {
		if time.Now().After(deadline) {
			return proto.ErrBusyTimeout
		}
	}
	return nil
}

func (r *Radio) exchange(kind ExchangeKind, tx, rx []byte) error {
	r.driver.BeginTransfer()
	err := r.driver.Transfer(tx, rx)
	r.driver.EndTransfer()
	if err != nil {
		return fmt.Errorf("transport: %s exchange: %w", kind, err)
	}
	r.observer.ExchangeDone(kind, max(len(tx), len(rx)))
	return nil
}

// Write sends command followed by data in a single exchange. When the
// command is the sleep opcode the radio is marked asleep and the settle delay
// elapses before Write returns.
func (r *Radio) Write(command, data []byte) error {
	if err := proto.ValidateWrite(command, data); err != nil {
		return err
	}

	if err := r.WakeupAndWaitForReady(); err != nil {
		return err
	}
	if err := r.exchange(KindWrite, proto.WriteBuffer(command, data), nil); err != nil {
		return err
	}

	if proto.IsCommand(command, r.cfg.SleepOpcode) {
		r.state = PowerSleep
		r.observer.EnteredSleep()
		r.delay(r.cfg.SleepSettle)
		log.Debug().Msg("radio entered sleep")
	}
	return nil
}

// Read sends command and, when data is non-empty, clocks the reply into data.
// The reply phase is a second exchange of NOPs one byte longer than data; the
// leading status byte is dropped.
func (r *Radio) Read(command, data []byte) error {
	if err := proto.ValidateRead(command, data); err != nil {
		return err
	}

	if err := r.WakeupAndWaitForReady(); err != nil {
		return err
	}
	if err := r.exchange(KindCommand, command, nil); err != nil {
		return err
	}

	if len(data) == 0 {
		return nil
	}

	tx := proto.ReadPadding(len(data))
	rx := make([]byte, len(tx))

	if err := r.WakeupAndWaitForReady(); err != nil {
		return err
	}
	if err := r.exchange(KindReply, tx, rx); err != nil {
		return err
	}

	copy(data, rx[proto.StatusByteSize:])
	return nil
}

// DirectRead clocks len(data) bytes out of the device without sending a
// command first.
func (r *Radio) DirectRead(data []byte) error {
	if err := proto.ValidateDirectRead(data); err != nil {
		return err
	}

	if err := r.WakeupAndWaitForReady(); err != nil {
		return err
	}
	return r.exchange(KindDirectRead, nil, data)
}

// internal/config/validate.go
package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ystepanoff/lbmwm1110/hal"
	"github.com/ystepanoff/lbmwm1110/nvm"
	proto "github.com/ystepanoff/lbmwm1110/protocol"
	"github.com/ystepanoff/lbmwm1110/timing"
	"github.com/ystepanoff/lbmwm1110/transport"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	// ------------------------------------------------------------
	// BUS
	// ------------------------------------------------------------

	if strings.TrimSpace(cfg.SPI.Port) == "" {
		return fmt.Errorf("spi.port is required")
	}
	if cfg.SPI.FrequencyHz <= 0 {
		return fmt.Errorf("spi.frequency must be positive, got %d", cfg.SPI.FrequencyHz)
	}

	pins := map[string]string{
		"nss":    cfg.Pins.NSS,
		"busy":   cfg.Pins.Busy,
		"nreset": cfg.Pins.NReset,
	}
	seen := make(map[string]string)
	for _, role := range []string{"nss", "busy", "nreset"} {
		name := strings.TrimSpace(pins[role])
		if name == "" {
			return fmt.Errorf("pins.%s is required", role)
		}
		if prev, dup := seen[name]; dup {
			return fmt.Errorf("pins.%s and pins.%s both use %q", prev, role, name)
		}
		seen[name] = role
	}
	if irq := strings.TrimSpace(cfg.Pins.IRQ); irq != "" {
		if prev, dup := seen[irq]; dup {
			return fmt.Errorf("pins.%s and pins.irq both use %q", prev, irq)
		}
	}

	// ------------------------------------------------------------
	// CONTEXT STORE
	// ------------------------------------------------------------

	if strings.TrimSpace(cfg.Flash.Image) == "" {
		return fmt.Errorf("flash.image is required")
	}
	if cfg.Flash.PageSize <= 0 || cfg.Flash.PageSize%nvm.WriteBlockSize != 0 {
		return fmt.Errorf("flash.page_size must be a positive multiple of %d, got %d",
			nvm.WriteBlockSize, cfg.Flash.PageSize)
	}
	if _, err := nvm.NewPageMap(cfg.Flash.ApplicationEnd, cfg.Flash.PageSize, cfg.Flash.PageCount); err != nil {
		return fmt.Errorf("flash: %w", err)
	}

	// ------------------------------------------------------------
	// RADIO
	// ------------------------------------------------------------

	if _, err := ParseOpcode(cfg.Radio.SleepOpcode); err != nil {
		return fmt.Errorf("radio.sleep_opcode: %w", err)
	}
	if cfg.Radio.SleepSettleUs < 0 || cfg.Radio.ResetPulseUs < 0 || cfg.Radio.BusyTimeoutMs < 0 {
		return fmt.Errorf("radio timings must not be negative")
	}
	if _, err := hal.ParseRegMode(cfg.Radio.RegMode); err != nil {
		return fmt.Errorf("radio.reg_mode: %w", err)
	}

	// ------------------------------------------------------------
	// TRACE / SUPERVISION
	// ------------------------------------------------------------

	if cfg.Trace.SerialPort != "" && cfg.Trace.Baud <= 0 {
		return fmt.Errorf("trace.baud must be positive when trace.serial_port is set")
	}
	if cfg.Watchdog.PeriodMs < 0 {
		return fmt.Errorf("watchdog.period_ms must not be negative")
	}

	return nil
}

// ParseOpcode decodes a two-byte hex opcode such as "011B" or "0x011B".
func ParseOpcode(s string) (proto.Opcode, error) {
	var op proto.Opcode
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return op, err
	}
	if len(b) != proto.OpcodeSize {
		return op, fmt.Errorf("opcode must be %d bytes, got %d", proto.OpcodeSize, len(b))
	}
	copy(op[:], b)
	return op, nil
}

// Transport returns the framing parameters of a validated configuration.
func (c *Config) Transport() transport.Config {
	op, _ := ParseOpcode(c.Radio.SleepOpcode)
	return transport.Config{
		SleepOpcode: op,
		SleepSettle: time.Duration(c.Radio.SleepSettleUs) * time.Microsecond,
		ResetPulse:  time.Duration(c.Radio.ResetPulseUs) * time.Microsecond,
		BusyTimeout: time.Duration(c.Radio.BusyTimeoutMs) * time.Millisecond,
	}
}

// WatchdogPeriod returns the period the watchdog actually runs with: zero
// selects timing.DefaultWatchdogPeriod.
func (c *Config) WatchdogPeriod() time.Duration {
	if c.Watchdog.PeriodMs == 0 {
		return timing.DefaultWatchdogPeriod
	}
	return time.Duration(c.Watchdog.PeriodMs) * time.Millisecond
}

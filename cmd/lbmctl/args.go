//go:build !tinygo && !baremetal

package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
)

// parseHex decodes a byte string such as "0101", "0x01 1B" or "01:1b".
func parseHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	s = strings.NewReplacer(" ", "", ":", "", "-", "").Replace(s)
	if s == "" {
		return nil, fmt.Errorf("empty hex string")
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", s, err)
	}
	return b, nil
}

// parseCount parses a positive byte count.
func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid count %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("count must be positive, got %d", n)
	}
	return n, nil
}

// requireArgs fails unless the command got between min and max arguments.
func requireArgs(c *cli.Context, min, max int) error {
	if n := c.NArg(); n < min || n > max {
		if min == max {
			return fmt.Errorf("%s: expected %d argument(s), got %d", c.Command.Name, min, n)
		}
		return fmt.Errorf("%s: expected %d to %d arguments, got %d", c.Command.Name, min, max, n)
	}
	return nil
}

// formatHex prints b as space separated upper case bytes.
func formatHex(b []byte) string {
	if len(b) == 0 {
		return "-"
	}
	var sb strings.Builder
	for i, v := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", v)
	}
	return sb.String()
}

// temperatureCelsius converts the 11-bit GetTemp reading.
func temperatureCelsius(raw uint16) float64 {
	v := float64(raw & 0x07FF)
	return 25 + (1000/-1.7)*((v/2047)*1.35-0.7295)
}

// checkInterval rejects polling intervals the watchdog would not survive.
func checkInterval(interval, watchdog time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("--interval must be positive")
	}
	if interval >= watchdog {
		return fmt.Errorf("--interval %s must be shorter than the watchdog period %s", interval, watchdog)
	}
	return nil
}

//go:build !tinygo && !baremetal

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/ystepanoff/lbmwm1110/nvm"
	proto "github.com/ystepanoff/lbmwm1110/protocol"
)

// ResetCommand hard resets the LR1110.
func ResetCommand() *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Pulse NRESET and wait for the radio",
		Action: withSession(func(c *cli.Context, s *session) error {
			if err := s.hw.Reset(); err != nil {
				return fmt.Errorf("reset failed: %w", err)
			}
			fmt.Printf("reset done, state %s\n", s.hw.Radio().State())
			return nil
		}),
	}
}

// VersionCommand reads the system version.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Read the LR1110 hardware and firmware version",
		Action: withSession(func(c *cli.Context, s *session) error {
			v := make([]byte, proto.VersionReplySize)
			if err := s.hw.Radio().Read(proto.Command(proto.OpGetVersion), v); err != nil {
				return fmt.Errorf("get version failed: %w", err)
			}
			fmt.Printf("Hardware:  0x%02X\n", v[0])
			fmt.Printf("Type:      0x%02X\n", v[1])
			fmt.Printf("Firmware:  0x%02X%02X\n", v[2], v[3])
			return nil
		}),
	}
}

func WriteCommand() *cli.Command {
	return &cli.Command{
		Name:      "write",
		Usage:     "Send a command with optional data",
		ArgsUsage: "<cmd-hex> [data-hex]",
		Action: withSession(func(c *cli.Context, s *session) error {
			if err := requireArgs(c, 1, 2); err != nil {
				return err
			}
			cmd, err := parseHex(c.Args().Get(0))
			if err != nil {
				return err
			}
			var data []byte
			if c.NArg() == 2 {
				if data, err = parseHex(c.Args().Get(1)); err != nil {
					return err
				}
			}
			if err := s.hw.Radio().Write(cmd, data); err != nil {
				return fmt.Errorf("write failed: %w", err)
			}
			fmt.Printf("sent %s | %s, state %s\n", formatHex(cmd), formatHex(data), s.hw.Radio().State())
			return nil
		}),
	}
}

func ReadCommand() *cli.Command {
	return &cli.Command{
		Name:      "read",
		Usage:     "Send a command and read n reply bytes",
		ArgsUsage: "<cmd-hex> <n>",
		Action: withSession(func(c *cli.Context, s *session) error {
			if err := requireArgs(c, 2, 2); err != nil {
				return err
			}
			cmd, err := parseHex(c.Args().Get(0))
			if err != nil {
				return err
			}
			n, err := parseCount(c.Args().Get(1))
			if err != nil {
				return err
			}
			data := make([]byte, n)
			if err := s.hw.Radio().Read(cmd, data); err != nil {
				return fmt.Errorf("read failed: %w", err)
			}
			fmt.Println(formatHex(data))
			return nil
		}),
	}
}

func DirectReadCommand() *cli.Command {
	return &cli.Command{
		Name:      "direct-read",
		Usage:     "Clock n bytes out of the radio without a command",
		ArgsUsage: "<n>",
		Action: withSession(func(c *cli.Context, s *session) error {
			if err := requireArgs(c, 1, 1); err != nil {
				return err
			}
			n, err := parseCount(c.Args().Get(0))
			if err != nil {
				return err
			}
			data := make([]byte, n)
			if err := s.hw.Radio().DirectRead(data); err != nil {
				return fmt.Errorf("direct read failed: %w", err)
			}
			fmt.Println(formatHex(data))
			return nil
		}),
	}
}

// SleepCommand sends SetSleep with the configured opcode and no retention.
func SleepCommand() *cli.Command {
	return &cli.Command{
		Name:  "sleep",
		Usage: "Put the radio to sleep",
		Action: withSession(func(c *cli.Context, s *session) error {
			radio := s.hw.Radio()
			op := radio.Config().SleepOpcode
			before := radio.State()
			// sleep config byte, then a 32-bit wake-up time of zero
			cmd := append(op[:], 0x00, 0x00, 0x00, 0x00, 0x00)
			if err := radio.Write(cmd, nil); err != nil {
				return fmt.Errorf("sleep failed: %w", err)
			}
			fmt.Printf("%s -> %s\n", before, radio.State())
			return nil
		}),
	}
}

// ContextCommand returns the context subcommand group.
func ContextCommand() *cli.Command {
	return &cli.Command{
		Name:  "context",
		Usage: "Inspect and edit the persisted modem contexts",
		Subcommands: []*cli.Command{
			{
				Name:      "store",
				Usage:     "Write a blob to a context page",
				ArgsUsage: "<id> <hex>",
				Action:    withSession(contextStore),
			},
			{
				Name:      "restore",
				Usage:     "Read n bytes from a context page",
				ArgsUsage: "<id> <n>",
				Action:    withSession(contextRestore),
			},
			{
				Name:  "dump",
				Usage: "Show the page layout and head of every context",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "bytes",
						Usage: "bytes to show per context",
						Value: 32,
					},
				},
				Action: withSession(contextDump),
			},
		},
	}
}

func contextStore(c *cli.Context, s *session) error {
	if err := requireArgs(c, 2, 2); err != nil {
		return err
	}
	id, err := nvm.ParseContextID(c.Args().Get(0))
	if err != nil {
		return err
	}
	blob, err := parseHex(c.Args().Get(1))
	if err != nil {
		return err
	}
	if err := s.hw.Store().Store(id, blob); err != nil {
		return fmt.Errorf("store %s failed: %w", id, err)
	}
	fmt.Printf("stored %d bytes in %s\n", len(blob), id)
	return nil
}

func contextRestore(c *cli.Context, s *session) error {
	if err := requireArgs(c, 2, 2); err != nil {
		return err
	}
	id, err := nvm.ParseContextID(c.Args().Get(0))
	if err != nil {
		return err
	}
	n, err := parseCount(c.Args().Get(1))
	if err != nil {
		return err
	}
	buf := make([]byte, n)
	if err := s.hw.Store().Restore(id, buf); err != nil {
		return fmt.Errorf("restore %s failed: %w", id, err)
	}
	fmt.Println(formatHex(buf))
	return nil
}

func contextDump(c *cli.Context, s *session) error {
	n := c.Int("bytes")
	if n <= 0 {
		return fmt.Errorf("--bytes must be positive")
	}
	pages := s.hw.Store().Pages()
	if n > s.cfg.Flash.PageSize {
		n = s.cfg.Flash.PageSize
	}
	erased := bytes.Repeat([]byte{0xFF}, n)

	fmt.Printf("%-14s %5s %8s  %s\n", "CONTEXT", "PAGE", "ADDR", "DATA")
	for _, id := range nvm.ContextIDs() {
		page, err := pages.Page(id)
		if err != nil {
			return err
		}
		addr, err := pages.Addr(id)
		if err != nil {
			return err
		}
		buf := make([]byte, n)
		if err := s.hw.Store().Restore(id, buf); err != nil {
			return fmt.Errorf("restore %s failed: %w", id, err)
		}
		data := formatHex(buf)
		if bytes.Equal(buf, erased) {
			data = "(erased)"
		}
		fmt.Printf("%-14s %5d %#8x  %s\n", id, page, addr, data)
	}
	return nil
}

// MonitorCommand polls the radio temperature under the watchdog and serves
// the bus counters over HTTP.
func MonitorCommand() *cli.Command {
	return &cli.Command{
		Name:  "monitor",
		Usage: "Poll the radio and serve Prometheus metrics",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "polling interval",
				Value: time.Second,
			},
		},
		Action: withSession(monitor),
	}
}

func monitor(c *cli.Context, s *session) error {
	interval := c.Duration("interval")
	if err := checkInterval(interval, s.cfg.WatchdogPeriod()); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              s.cfg.Metrics.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("metrics listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server failed")
			stop()
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := s.hw.StartWatchdog(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	raw := make([]byte, proto.TempReplySize)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("monitor stopped")
			return nil
		case <-ticker.C:
		}

		if err := s.hw.Radio().Read(proto.Command(proto.OpGetTemp), raw); err != nil {
			log.Error().Err(err).Msg("temperature read failed")
			continue
		}
		s.hw.ReloadWatchdog()

		word := uint16(raw[0])<<8 | uint16(raw[1])
		log.Info().
			Uint16("raw", word).
			Float64("celsius", temperatureCelsius(word)).
			Uint32("uptime_s", s.hw.Clock().ElapsedSeconds()).
			Msg("radio temperature")
	}
}

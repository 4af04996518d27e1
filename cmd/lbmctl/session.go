//go:build !tinygo && !baremetal

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/goburrow/serial"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"periph.io/x/conn/v3/physic"

	"github.com/ystepanoff/lbmwm1110"
	"github.com/ystepanoff/lbmwm1110/driver/periph"
	"github.com/ystepanoff/lbmwm1110/hal"
	"github.com/ystepanoff/lbmwm1110/internal/config"
	"github.com/ystepanoff/lbmwm1110/internal/metrics"
)

// session is one opened board for the lifetime of a command.
type session struct {
	cfg      *config.Config
	board    *periph.Board
	hw       *lbmwm1110.Hardware
	trace    io.Closer
	registry *prometheus.Registry
}

func openSession(c *cli.Context) (*session, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, registry: prometheus.NewRegistry()}

	var trace io.Writer
	if cfg.Trace.SerialPort != "" {
		port, err := serial.Open(&serial.Config{
			Address:  cfg.Trace.SerialPort,
			BaudRate: cfg.Trace.Baud,
			DataBits: 8,
			StopBits: 1,
			Parity:   "N",
			Timeout:  time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("open trace port %s: %w", cfg.Trace.SerialPort, err)
		}
		trace, s.trace = port, port
	}

	board, err := periph.Open(periph.BoardConfig{
		Bus: periph.BusConfig{
			Port:      cfg.SPI.Port,
			Frequency: physic.Frequency(cfg.SPI.FrequencyHz) * physic.Hertz,
			NSS:       cfg.Pins.NSS,
			Busy:      cfg.Pins.Busy,
			NReset:    cfg.Pins.NReset,
		},
		IRQ:            cfg.Pins.IRQ,
		FlashImage:     cfg.Flash.Image,
		PageSize:       cfg.Flash.PageSize,
		PageCount:      cfg.Flash.PageCount,
		WatchdogPeriod: cfg.WatchdogPeriod(),
		Trace:          trace,
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	s.board = board

	observer, err := metrics.NewRadio(s.registry)
	if err != nil {
		s.Close()
		return nil, err
	}
	regMode, _ := hal.ParseRegMode(cfg.Radio.RegMode)

	hw, err := lbmwm1110.NewHardwareWithBoard(board.HAL(), lbmwm1110.Options{
		Radio:          cfg.Transport(),
		ApplicationEnd: cfg.Flash.ApplicationEnd,
		RegMode:        regMode,
		WatchdogPeriod: cfg.WatchdogPeriod(),
		Observer:       observer,
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	if err := hw.Begin(); err != nil {
		s.Close()
		return nil, err
	}
	// An earlier run may have left the radio asleep.
	if err := hw.Radio().Wake(); err != nil {
		s.Close()
		return nil, err
	}
	s.hw = hw

	log.Debug().
		Str("port", cfg.SPI.Port).
		Str("image", cfg.Flash.Image).
		Str("reg_mode", regMode.String()).
		Msg("session opened")
	return s, nil
}

func (s *session) Close() {
	if s.board != nil {
		if err := s.board.Close(); err != nil {
			log.Warn().Err(err).Msg("board close failed")
		}
	}
	if s.trace != nil {
		if err := s.trace.Close(); err != nil {
			log.Warn().Err(err).Msg("trace port close failed")
		}
	}
}

// withSession opens the board, runs fn and releases the board.
func withSession(fn func(c *cli.Context, s *session) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		s, err := openSession(c)
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(c, s)
	}
}

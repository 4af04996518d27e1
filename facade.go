// Package lbmwm1110 connects the LoRa Basics Modem and the geolocation
// middleware to the LR1110 of a WM1110 module.
package lbmwm1110

import (
	"github.com/ystepanoff/lbmwm1110/hal"
	"github.com/ystepanoff/lbmwm1110/nvm"
	proto "github.com/ystepanoff/lbmwm1110/protocol"
	"github.com/ystepanoff/lbmwm1110/timing"
	"github.com/ystepanoff/lbmwm1110/transport"
)

// The actual implementation is split into build-tag specific files:
// - constructors_nrf.go - for embedded platforms (//go:build tinygo || baremetal)
// - constructors_host.go - for development/testing (//go:build !tinygo && !baremetal)

// Re-export types for convenience
type (
	Board      = hal.Board
	Modem      = hal.Modem
	BSP        = hal.BSP
	Radio      = transport.Radio
	PowerState = transport.PowerState
	ContextID  = nvm.ContextID
)

// Error constants exposed in the public API
var (
	ErrEmptyExchange  = proto.ErrEmptyExchange
	ErrLengthMismatch = proto.ErrLengthMismatch
	ErrMissingCommand = proto.ErrMissingCommand
	ErrMissingData    = proto.ErrMissingData
	ErrBusyTimeout    = proto.ErrBusyTimeout
	ErrUnknownContext = nvm.ErrUnknownContext
	ErrContextSize    = nvm.ErrContextSize
	ErrTimerRunning   = timing.ErrTimerRunning
)

// Constants exposed in the public API
const (
	PowerAwake = transport.PowerAwake
	PowerSleep = transport.PowerSleep

	ContextModem         = nvm.ContextModem
	ContextLR1MAC        = nvm.ContextLR1MAC
	ContextDevNonce      = nvm.ContextDevNonce
	ContextSecureElement = nvm.ContextSecureElement
)

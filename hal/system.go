// Package hal exposes the board to the LoRaWAN modem stack and to the
// geolocation middleware.
package hal

import (
	crand "crypto/rand"
	"encoding/binary"
	mrand "math/rand"
	"time"

	"github.com/ystepanoff/lbmwm1110/nvm"
)

// System is the interface that wraps the MCU reset. On hardware Reset does
// not return.
type System interface {
	Reset()
}

// RNG is the interface that wraps a uniform 32-bit entropy source.
type RNG interface {
	Uint32() uint32
}

// Clock is the monotonic time base of the modem.
type Clock interface {
	ElapsedSeconds() uint32
	ElapsedMilliseconds() uint32
	Elapsed100Microseconds() uint32
}

// Timer is the single-slot deadline timer of the modem.
type Timer interface {
	Start(ms uint32, fn func()) error
	Stop()
	EnableIRQ()
	DisableIRQ()
}

// ContextStorage persists modem context blobs.
type ContextStorage interface {
	Store(id nvm.ContextID, blob []byte) error
	Restore(id nvm.ContextID, buf []byte) error
}

// CryptoRNG reads entropy from crypto/rand. If crypto/rand fails (rare on
// host), it falls back to math/rand.
type CryptoRNG struct{}

func (CryptoRNG) Uint32() uint32 {
	var b [4]byte
	if _, err := crand.Read(b[:]); err == nil {
		return binary.LittleEndian.Uint32(b[:])
	}
	src := mrand.NewSource(time.Now().UnixNano())
	return mrand.New(src).Uint32()
}

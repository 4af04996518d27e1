//go:build !tinygo && !baremetal

package stub

import (
	"encoding/binary"
	"sync"

	proto "github.com/ystepanoff/lbmwm1110/protocol"
)

// Bus simulates an LR1110 on the SPI bus for host-side testing.
//
// The simulated device holds BUSY while asleep and for a few polls after a
// reset, answers registered opcodes in the following reply phase, and logs
// every exchange and wake pulse.
type Bus struct {
	mu         sync.Mutex
	log        ringBuffer
	replies    ringBuffer
	responses  map[uint16][]byte
	selected   bool
	moved      bool
	asleep     bool
	busyPolls  int
	resetLevel bool
	status     byte
	failNext   error
}

// ResetBusyPolls is how many Busy polls report busy after NRESET is released.
const ResetBusyPolls = 3

// Default replies of the simulated device.
var (
	DefaultVersion     = []byte{0x22, 0x01, 0x04, 0x01}
	DefaultTemperature = []byte{0x03, 0x20}
)

func New() *Bus {
	b := &Bus{responses: make(map[uint16][]byte), resetLevel: true}
	b.responses[proto.OpGetVersion] = DefaultVersion
	b.responses[proto.OpGetTemp] = DefaultTemperature
	return b
}

// Exchange is one logged bus transaction. A wake pulse is a selection with
// no bytes moved.
type Exchange struct {
	Tx    []byte
	Rx    []byte
	Pulse bool
}

func (b *Bus) Configure() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selected = false
	return nil
}

func (b *Bus) BeginTransfer() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selected = true
	b.moved = false
}

func (b *Bus) EndTransfer() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.selected && !b.moved {
		// NSS falling edge wakes the device.
		b.asleep = false
		b.log.push(Exchange{Pulse: true})
	}
	b.selected = false
}

func (b *Bus) Transfer(tx, rx []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.moved = true
	if err := b.failNext; err != nil {
		b.failNext = nil
		return err
	}

	ex := Exchange{Tx: clone(tx)}
	if rx != nil {
		for i := range rx {
			rx[i] = 0
		}
		if reply, ok := b.replies.pop(); ok {
			copy(rx, reply.Rx)
		}
		ex.Rx = clone(rx)
	}
	b.log.push(ex)

	if len(tx) >= proto.OpcodeSize && rx == nil {
		b.command(tx)
	}
	return nil
}

func (b *Bus) command(tx []byte) {
	op := binary.BigEndian.Uint16(tx)
	if op == proto.OpSetSleep {
		b.asleep = true
		return
	}
	if data, ok := b.responses[op]; ok {
		reply := make([]byte, 0, proto.StatusByteSize+len(data))
		reply = append(reply, b.status)
		reply = append(reply, data...)
		b.replies.push(Exchange{Rx: reply})
	}
}

func (b *Bus) Busy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.resetLevel || b.asleep {
		return true
	}
	if b.busyPolls > 0 {
		b.busyPolls--
		return true
	}
	return false
}

func (b *Bus) SetReset(high bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !high {
		b.asleep = false
		b.replies = ringBuffer{}
	} else if !b.resetLevel {
		b.busyPolls = ResetBusyPolls
	}
	b.resetLevel = high
}

// Respond registers the payload returned in the reply phase after op.
func (b *Bus) Respond(op uint16, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responses[op] = clone(data)
}

// SetStatus sets the status byte leading every reply.
func (b *Bus) SetStatus(status byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
}

// InjectReply queues raw bytes, status byte included, for the next capturing
// exchange.
func (b *Bus) InjectReply(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replies.push(Exchange{Rx: clone(data)})
}

// HoldBusy reports busy for the next n polls.
func (b *Bus) HoldBusy(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.busyPolls = n
}

// FailNext makes the next Transfer return err.
func (b *Bus) FailNext(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failNext = err
}

func (b *Bus) Asleep() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.asleep
}

func (b *Bus) GetLog() []Exchange {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.log.snapshot()
}

func (b *Bus) ClearLog() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log = ringBuffer{}
}

func clone(p []byte) []byte {
	if p == nil {
		return nil
	}
	out := make([]byte, len(p))
	copy(out, p)
	return out
}

const ringCapacity = 64

type ringBuffer struct {
	data       [ringCapacity]Exchange
	head, tail int // head = next pop, tail = next push
	count      int
}

func (rb *ringBuffer) push(ex Exchange) {
	if rb.count == ringCapacity {
		// Overwrite the oldest when buffer is full to keep memory bounded
		rb.data[rb.tail] = Exchange{}
		rb.head = (rb.head + 1) % ringCapacity
		rb.count--
	}
	rb.data[rb.tail] = ex
	rb.tail = (rb.tail + 1) % ringCapacity
	rb.count++
}

func (rb *ringBuffer) pop() (Exchange, bool) {
	if rb.count == 0 {
		return Exchange{}, false
	}
	ex := rb.data[rb.head]
	rb.data[rb.head] = Exchange{}
	rb.head = (rb.head + 1) % ringCapacity
	rb.count--
	return ex, true
}

func (rb *ringBuffer) snapshot() []Exchange {
	out := make([]Exchange, 0, rb.count)
	i := rb.head
	for c := 0; c < rb.count; c++ {
		ex := rb.data[i]
		out = append(out, Exchange{Tx: clone(ex.Tx), Rx: clone(ex.Rx), Pulse: ex.Pulse})
		i = (i + 1) % ringCapacity
	}
	return out
}

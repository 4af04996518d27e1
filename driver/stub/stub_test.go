//go:build !tinygo && !baremetal

package stub

import (
	"bytes"
	"errors"
	"testing"
	"time"

	proto "github.com/ystepanoff/lbmwm1110/protocol"
	"github.com/ystepanoff/lbmwm1110/timing"
	"github.com/ystepanoff/lbmwm1110/transport"
)

func newRadio(t *testing.T) (*transport.Radio, *Bus) {
	t.Helper()
	bus := New()
	radio := transport.NewRadioWithDriver(bus, transport.Config{BusyTimeout: time.Second})
	radio.SetDelay(func(time.Duration) {})
	if err := radio.Begin(); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	return radio, bus
}

func TestBus_VersionRead(t *testing.T) {
	radio, bus := newRadio(t)

	got := make([]byte, proto.VersionReplySize)
	if err := radio.Read(proto.Command(proto.OpGetVersion), got); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !bytes.Equal(got, DefaultVersion) {
		t.Errorf("version = %x, want %x", got, DefaultVersion)
	}

	log := bus.GetLog()
	if len(log) != 2 {
		t.Fatalf("logged %d exchanges, want 2", len(log))
	}
	if !bytes.Equal(log[1].Tx, []byte{0, 0, 0, 0, 0}) {
		t.Errorf("reply phase sent %x, want 5 NOPs", log[1].Tx)
	}
}

func TestBus_SleepNeedsWakePulse(t *testing.T) {
	radio, bus := newRadio(t)

	if err := radio.Write(proto.Command(proto.OpSetSleep, 0x00, 0, 0, 0, 0), nil); err != nil {
		t.Fatal(err)
	}
	if !bus.Asleep() || !bus.Busy() {
		t.Fatal("simulated device did not go to sleep")
	}

	bus.Respond(proto.OpGetTemp, []byte{0x01, 0x90})
	got := make([]byte, proto.TempReplySize)
	if err := radio.Read(proto.Command(proto.OpGetTemp), got); err != nil {
		t.Fatalf("Read() after sleep error = %v", err)
	}
	if !bytes.Equal(got, []byte{0x01, 0x90}) {
		t.Errorf("temperature = %x", got)
	}

	pulses := 0
	for _, ex := range bus.GetLog() {
		if ex.Pulse {
			pulses++
		}
	}
	if pulses != 1 {
		t.Errorf("wake pulses = %d, want 1", pulses)
	}
}

func TestBus_ResetHoldsBusy(t *testing.T) {
	bus := New()
	bus.SetReset(false)
	if !bus.Busy() {
		t.Error("not busy while held in reset")
	}
	bus.SetReset(true)
	for i := 0; i < ResetBusyPolls; i++ {
		if !bus.Busy() {
			t.Fatalf("poll %d: ready too early", i)
		}
	}
	if bus.Busy() {
		t.Error("still busy after the boot polls")
	}
}

func TestBus_FailNextAndStatus(t *testing.T) {
	radio, bus := newRadio(t)

	boom := errors.New("spi fault")
	bus.FailNext(boom)
	if err := radio.Write([]byte{0x02, 0x01}, nil); !errors.Is(err, boom) {
		t.Errorf("Write() error = %v, want %v", err, boom)
	}

	bus.SetStatus(0x04)
	bus.InjectReply([]byte{0xAA, 0xBB})
	got := make([]byte, 2)
	if err := radio.DirectRead(got); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0xAA, 0xBB}) {
		t.Errorf("DirectRead() = %x", got)
	}
}

func TestRingBuffer_Overwrite(t *testing.T) {
	var rb ringBuffer
	for i := 0; i < ringCapacity+5; i++ {
		rb.push(Exchange{Tx: []byte{byte(i)}})
	}
	snap := rb.snapshot()
	if len(snap) != ringCapacity {
		t.Fatalf("len = %d, want %d", len(snap), ringCapacity)
	}
	if snap[0].Tx[0] != 5 {
		t.Errorf("oldest = %d, want 5", snap[0].Tx[0])
	}
}

func TestCounter_Advance(t *testing.T) {
	c := &Counter{}
	rtc := timing.NewRTC(c)

	c.Advance(timing.MaxCounts + 2*timing.Frequency)
	if got := rtc.ElapsedSeconds(); got != 514 {
		t.Errorf("ElapsedSeconds() = %d, want 514", got)
	}
	if c.Counter() != 2*timing.Frequency {
		t.Errorf("Counter() = %d", c.Counter())
	}
}

func TestBoard_WatchdogResetsSystem(t *testing.T) {
	b := NewBoard()
	hb := b.HAL(20 * time.Millisecond)
	if err := hb.Watchdog.Start(); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for b.System.Resets() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("watchdog never reset the system")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBus_SecondRadioWakesSleepingDevice(t *testing.T) {
	first, bus := newRadio(t)
	if err := first.Write(proto.Command(proto.OpSetSleep, 0x00, 0, 0, 0, 0), nil); err != nil {
		t.Fatal(err)
	}
	if !bus.Asleep() {
		t.Fatal("simulated device did not go to sleep")
	}

	second := transport.NewRadioWithDriver(bus, transport.Config{BusyTimeout: 50 * time.Millisecond})
	second.SetDelay(func(time.Duration) {})
	if err := second.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := second.Wake(); err != nil {
		t.Fatalf("Wake() error = %v", err)
	}
	if bus.Asleep() {
		t.Fatal("device still asleep after Wake")
	}

	got := make([]byte, proto.VersionReplySize)
	if err := second.Read(proto.Command(proto.OpGetVersion), got); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !bytes.Equal(got, DefaultVersion) {
		t.Errorf("version = %x, want %x", got, DefaultVersion)
	}
}

//go:build !tinygo && !baremetal

package lbmwm1110

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ystepanoff/lbmwm1110/driver/stub"
	"github.com/ystepanoff/lbmwm1110/internal/testutil/testlog"
	"github.com/ystepanoff/lbmwm1110/nvm"
	proto "github.com/ystepanoff/lbmwm1110/protocol"
	"github.com/ystepanoff/lbmwm1110/timing"
	"github.com/ystepanoff/lbmwm1110/transport"
)

func newStubHardware(t *testing.T) (*Hardware, *stub.Board) {
	t.Helper()
	testlog.Start(t)

	sb := stub.NewBoard()
	opts := DefaultOptions()
	opts.Radio.BusyTimeout = time.Second
	hw, err := NewHardwareWithBoard(sb.HAL(time.Hour), opts)
	if err != nil {
		t.Fatalf("NewHardwareWithBoard() error = %v", err)
	}
	hw.Radio().SetDelay(func(time.Duration) {})
	if err := hw.Begin(); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	return hw, sb
}

func TestNewHardware_Host(t *testing.T) {
	hw, err := NewHardware(DefaultOptions())
	if err != nil {
		t.Fatalf("NewHardware() error = %v", err)
	}
	if hw.Radio().State() != PowerAwake {
		t.Errorf("initial state = %s", hw.Radio().State())
	}
}

func TestNewHardwareWithBoard_Invalid(t *testing.T) {
	if _, err := NewHardwareWithBoard(Board{}, DefaultOptions()); err == nil {
		t.Error("empty board accepted")
	}

	sb := stub.NewBoard()
	opts := DefaultOptions()
	opts.ApplicationEnd = 2 * nvm.DefaultPageSize
	if _, err := NewHardwareWithBoard(sb.HAL(time.Hour), opts); !errors.Is(err, nvm.ErrPageRange) {
		t.Errorf("application end too low: error = %v, want %v", err, nvm.ErrPageRange)
	}
}

func TestHardware_ResetAndVersion(t *testing.T) {
	hw, sb := newStubHardware(t)

	if err := hw.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	version := make([]byte, proto.VersionReplySize)
	if err := hw.Radio().Read(proto.Command(proto.OpGetVersion), version); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !bytes.Equal(version, stub.DefaultVersion) {
		t.Errorf("version = %x", version)
	}

	if err := hw.Radio().Write(proto.Command(proto.OpSetSleep, 0, 0, 0, 0, 0), nil); err != nil {
		t.Fatal(err)
	}
	if hw.Radio().State() != transport.PowerSleep || !sb.Bus.Asleep() {
		t.Fatal("radio not asleep after SetSleep")
	}
	if err := hw.Radio().Read(proto.Command(proto.OpGetVersion), version); err != nil {
		t.Fatalf("Read() after sleep error = %v", err)
	}
	if hw.Radio().State() != PowerAwake {
		t.Error("radio not awake after read")
	}
}

func TestHardware_ContextPersistence(t *testing.T) {
	hw, sb := newStubHardware(t)

	blob := []byte("lr1mac nonce state")
	hw.Modem().ContextStore(ContextLR1MAC, blob)

	raw := make([]byte, len(blob))
	if err := sb.Flash.Read(235*nvm.DefaultPageSize, raw); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(raw, blob) {
		t.Errorf("page 235 holds %q, want %q", raw, blob)
	}

	got := make([]byte, len(blob))
	hw.Modem().ContextRestore(ContextLR1MAC, got)
	if !bytes.Equal(got, blob) {
		t.Errorf("restored %q", got)
	}
	if sb.System.Resets() != 0 {
		t.Errorf("resets = %d", sb.System.Resets())
	}
}

func TestHardware_AssertResetsAndTraces(t *testing.T) {
	hw, sb := newStubHardware(t)

	hw.Modem().ContextStore(ContextModem, make([]byte, nvm.DefaultPageSize+1))

	if sb.System.Resets() != 1 {
		t.Errorf("resets = %d, want 1", sb.System.Resets())
	}
	if !hw.Modem().CrashLogStatus() {
		t.Error("crash log not available")
	}
	if !strings.Contains(sb.Trace.String(), "crash log :") {
		t.Errorf("trace = %q", sb.Trace.String())
	}
}

func TestHardware_ClockAndTimer(t *testing.T) {
	hw, sb := newStubHardware(t)

	sb.Counter.Advance(timing.MaxCounts + 3*timing.Frequency)
	if got := hw.Modem().TimeInSeconds(); got != 515 {
		t.Errorf("TimeInSeconds() = %d, want 515", got)
	}

	fired := make(chan struct{})
	hw.Modem().StartTimer(1, func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}

	hw.Modem().StartTimer(0, func() {})
	if sb.System.Resets() != 1 {
		t.Errorf("zero delay: resets = %d, want 1", sb.System.Resets())
	}
}

func TestHardware_RadioIRQ(t *testing.T) {
	hw, sb := newStubHardware(t)

	edges := 0
	hw.Modem().ConfigRadioIRQ(func() { edges++ })
	sb.IRQ.Raise()
	if edges != 1 {
		t.Fatalf("edges = %d, want 1", edges)
	}

	hw.Modem().DisableModemIRQ()
	sb.IRQ.Raise()
	if edges != 1 {
		t.Fatal("edge delivered while masked")
	}
	hw.Modem().EnableModemIRQ()
	if edges != 2 {
		t.Errorf("latched edge lost: edges = %d", edges)
	}
}

func TestHardware_ScanHooksAndBSP(t *testing.T) {
	hw, _ := newStubHardware(t)

	var calls []string
	hw.AttachGnssPrescan(func() { calls = append(calls, "pre") })
	hw.AttachGnssPostscan(func() { calls = append(calls, "post") })

	hw.BSP().GnssPrescanActions()
	hw.BSP().GnssPostscanActions()
	if strings.Join(calls, ",") != "pre,post" {
		t.Errorf("calls = %v", calls)
	}
}

func TestHardware_Watchdog(t *testing.T) {
	testlog.Start(t)

	sb := stub.NewBoard()
	hw, err := NewHardwareWithBoard(sb.HAL(30*time.Millisecond), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err := hw.StartWatchdog(); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for sb.System.Resets() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("watchdog did not reset the board")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hw2, err := NewHardwareWithBoard(Board{Bus: sb.Bus, Flash: sb.Flash, Counter: sb.Counter, System: sb.System}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err := hw2.StartWatchdog(); err == nil {
		t.Error("StartWatchdog() without a watchdog succeeded")
	}
	hw2.ReloadWatchdog()
}

func TestHardware_BeginChecksModemPage(t *testing.T) {
	hw, _ := newStubHardware(t)

	page, err := hw.Store().Pages().Page(ContextModem)
	if err != nil {
		t.Fatalf("Page(modem) error = %v", err)
	}
	if page != 236 {
		t.Errorf("modem page = %d, want 236", page)
	}
}

func TestHardware_AttachToSleepingRadio(t *testing.T) {
	first, sb := newStubHardware(t)
	if err := first.Radio().Write(proto.Command(proto.OpSetSleep, 0, 0, 0, 0, 0), nil); err != nil {
		t.Fatal(err)
	}
	if !sb.Bus.Asleep() {
		t.Fatal("radio did not go to sleep")
	}

	// A new process sees the same device but starts with a fresh Radio.
	opts := DefaultOptions()
	opts.Radio.BusyTimeout = 50 * time.Millisecond
	second, err := NewHardwareWithBoard(sb.HAL(time.Hour), opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := second.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := second.Radio().Wake(); err != nil {
		t.Fatalf("Wake() error = %v", err)
	}

	version := make([]byte, proto.VersionReplySize)
	if err := second.Radio().Read(proto.Command(proto.OpGetVersion), version); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !bytes.Equal(version, stub.DefaultVersion) {
		t.Errorf("version = %x, want %x", version, stub.DefaultVersion)
	}
}

package hal

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/ystepanoff/lbmwm1110/internal/testutil/testlog"
	"github.com/ystepanoff/lbmwm1110/nvm"
	"github.com/ystepanoff/lbmwm1110/timing"
)

type seqRNG struct {
	values []uint32
	reads  int
}

func (r *seqRNG) Uint32() uint32 {
	v := r.values[r.reads%len(r.values)]
	r.reads++
	return v
}

type recordingSystem struct{ resets int }

func (s *recordingSystem) Reset() { s.resets++ }

type fixedClock struct{ s, ms, us100 uint32 }

func (c fixedClock) ElapsedSeconds() uint32         { return c.s }
func (c fixedClock) ElapsedMilliseconds() uint32    { return c.ms }
func (c fixedClock) Elapsed100Microseconds() uint32 { return c.us100 }

type fakeTimer struct {
	startErr error
	started  []uint32
	stops    int
	irqOff   bool
}

func (t *fakeTimer) Start(ms uint32, fn func()) error {
	if t.startErr != nil {
		return t.startErr
	}
	t.started = append(t.started, ms)
	return nil
}
func (t *fakeTimer) Stop()       { t.stops++ }
func (t *fakeTimer) EnableIRQ()  { t.irqOff = false }
func (t *fakeTimer) DisableIRQ() { t.irqOff = true }

type fakeWatchdog struct{ reloads int }

func (w *fakeWatchdog) Start() error { return nil }
func (w *fakeWatchdog) Reload()      { w.reloads++ }

type testModem struct {
	*Modem
	sys   *recordingSystem
	timer *fakeTimer
	rng   *seqRNG
	trace *bytes.Buffer
	irq   *EdgeInterrupt
	wd    *fakeWatchdog
}

func newTestModem(t *testing.T) *testModem {
	t.Helper()
	testlog.Start(t)

	pages, err := nvm.NewPageMap(nvm.DefaultApplicationEnd, nvm.DefaultPageSize, nvm.DefaultPageCount)
	if err != nil {
		t.Fatal(err)
	}
	tm := &testModem{
		sys:   &recordingSystem{},
		timer: &fakeTimer{},
		rng:   &seqRNG{values: []uint32{7}},
		trace: &bytes.Buffer{},
		irq:   NewEdgeInterrupt(nil),
		wd:    &fakeWatchdog{},
	}
	tm.Modem = NewModem(ModemConfig{
		Store:    nvm.NewContextStore(nvm.NewMemFlash(nvm.DefaultPageSize, nvm.DefaultPageCount), pages),
		Clock:    fixedClock{s: 3, ms: 3500, us100: 35000},
		Timer:    tm.timer,
		IRQ:      tm.irq,
		RNG:      tm.rng,
		System:   tm.sys,
		Watchdog: tm.wd,
		Tracer:   NewTracer(tm.trace),
	})
	return tm
}

func TestRandomInRange(t *testing.T) {
	tests := []struct {
		name      string
		raw       uint32
		a, b      uint32
		want      uint32
		wantReads int
	}{
		{name: "ordered", raw: 17, a: 10, b: 14, want: 12, wantReads: 1},
		{name: "swapped", raw: 17, a: 14, b: 10, want: 12, wantReads: 1},
		{name: "equal", raw: 17, a: 9, b: 9, want: 9, wantReads: 0},
		{name: "full range", raw: 0xDEADBEEF, a: 0, b: math.MaxUint32, want: 0xDEADBEEF, wantReads: 1},
		{name: "upper half", raw: 0xFFFFFFFF, a: 0x80000000, b: math.MaxUint32, want: 0xFFFFFFFF, wantReads: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := &seqRNG{values: []uint32{tt.raw}}
			got := RandomInRange(rng, tt.a, tt.b)
			if got != tt.want {
				t.Errorf("RandomInRange(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if rng.reads != tt.wantReads {
				t.Errorf("entropy reads = %d, want %d", rng.reads, tt.wantReads)
			}
		})
	}
}

func TestSignedRandomInRange(t *testing.T) {
	tests := []struct {
		name      string
		raw       uint32
		a, b      int32
		want      int32
		wantReads int
	}{
		{name: "around zero", raw: 11, a: -3, b: 3, want: 1, wantReads: 1},
		{name: "swapped", raw: 11, a: 3, b: -3, want: 1, wantReads: 1},
		{name: "negative", raw: 0, a: -10, b: -5, want: -10, wantReads: 1},
		{name: "equal", raw: 7, a: -42, b: -42, want: -42, wantReads: 0},
		{name: "full range zero", raw: 0, a: math.MinInt32, b: math.MaxInt32, want: math.MinInt32, wantReads: 1},
		{name: "full range max", raw: 0xFFFFFFFF, a: math.MaxInt32, b: math.MinInt32, want: math.MaxInt32, wantReads: 1},
		{name: "wide span", raw: 5, a: math.MinInt32, b: 0, want: math.MinInt32 + 5, wantReads: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := &seqRNG{values: []uint32{tt.raw}}
			got := SignedRandomInRange(rng, tt.a, tt.b)
			if got != tt.want {
				t.Errorf("SignedRandomInRange(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if rng.reads != tt.wantReads {
				t.Errorf("entropy reads = %d, want %d", rng.reads, tt.wantReads)
			}
		})
	}
}

func TestSignedRandomInRange_StaysInBounds(t *testing.T) {
	rng := &seqRNG{values: []uint32{0, 1, 0x7FFFFFFF, 0x80000000, 0xFFFFFFFF, 12345}}
	for i := 0; i < len(rng.values); i++ {
		got := SignedRandomInRange(rng, -100, 100)
		if got < -100 || got > 100 {
			t.Fatalf("value %d out of [-100, 100]", got)
		}
	}
}

func TestTracer_Truncation(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want string
	}{
		{name: "empty", msg: "", want: ""},
		{name: "short", msg: "hello\n", want: "hello\n"},
		{name: "at limit", msg: strings.Repeat("a", TraceMaxLength-1), want: strings.Repeat("a", TraceMaxLength-1)},
		{name: "overlong", msg: strings.Repeat("b", 400), want: strings.Repeat("b", TraceMaxLength-3) + "~\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewTracer(&buf).Printf("%s", tt.msg)
			if buf.String() != tt.want {
				t.Errorf("trace = %q (%d bytes), want %d bytes", buf.String(), buf.Len(), len(tt.want))
			}
		})
	}
}

func TestCrashLog(t *testing.T) {
	var c CrashLog

	if c.Status() {
		t.Error("new crash log reports available")
	}
	c.Store(bytes.Repeat([]byte{0xAB}, 40))
	rec := c.Restore()
	if !bytes.Equal(rec[:], bytes.Repeat([]byte{0xAB}, CrashLogSize)) {
		t.Errorf("record = %x", rec)
	}

	c.Store([]byte("short"))
	rec = c.Restore()
	if string(rec[:5]) != "short" || rec[5] != 0 {
		t.Errorf("record after short store = %q", rec)
	}

	c.SetStatus(true)
	if !c.Status() {
		t.Error("Status() = false after SetStatus(true)")
	}
}

func TestModem_AssertFail(t *testing.T) {
	m := newTestModem(t)

	m.AssertFail("lr1mac_core_process", 1234)

	if !m.CrashLogStatus() {
		t.Error("crash log not marked available")
	}
	rec := m.RestoreCrashLog()
	if !bytes.HasPrefix(rec[:], []byte("lr1mac_core_process")) {
		t.Errorf("crash record = %q", rec)
	}
	if want := "\x1B[0;31mcrash log :lr1mac_core_process:1234\n\x1B[0m"; m.trace.String() != want {
		t.Errorf("trace = %q, want %q", m.trace.String(), want)
	}
	if m.sys.resets != 1 {
		t.Errorf("resets = %d, want 1", m.sys.resets)
	}
}

func TestModem_ContextFatalOnError(t *testing.T) {
	m := newTestModem(t)

	m.ContextStore(nvm.ContextModem, []byte{1, 2, 3})
	buf := make([]byte, 3)
	m.ContextRestore(nvm.ContextModem, buf)
	if !bytes.Equal(buf, []byte{1, 2, 3}) {
		t.Errorf("restored %x", buf)
	}
	if m.sys.resets != 0 {
		t.Fatalf("valid store reset the MCU")
	}

	m.ContextStore(nvm.ContextID(4), []byte{1})
	if m.sys.resets != 1 {
		t.Errorf("invalid context id: resets = %d, want 1", m.sys.resets)
	}
	rec := m.RestoreCrashLog()
	if !strings.Contains(string(rec[:]), "ContextStore") {
		t.Errorf("crash record %q does not name the failing call", rec)
	}

	m.ContextRestore(nvm.ContextLR1MAC, make([]byte, nvm.DefaultPageSize+1))
	if m.sys.resets != 2 {
		t.Errorf("oversize restore: resets = %d, want 2", m.sys.resets)
	}
}

func TestModem_Timer(t *testing.T) {
	m := newTestModem(t)

	m.StartTimer(100, func() {})
	if len(m.timer.started) != 1 || m.timer.started[0] != 100 {
		t.Errorf("started = %v", m.timer.started)
	}
	m.StopTimer()
	if m.timer.stops != 1 {
		t.Errorf("stops = %d", m.timer.stops)
	}

	m.timer.startErr = timing.ErrTimerRunning
	m.StartTimer(100, func() {})
	if m.sys.resets != 1 {
		t.Errorf("rejected start: resets = %d, want 1", m.sys.resets)
	}
}

func TestModem_IRQGating(t *testing.T) {
	m := newTestModem(t)

	calls := 0
	m.ConfigRadioIRQ(func() { calls++ })
	m.irq.Fire()
	if calls != 1 {
		t.Fatalf("calls = %d after edge, want 1", calls)
	}

	m.DisableModemIRQ()
	if !m.timer.irqOff {
		t.Error("timer IRQ not disabled")
	}
	m.irq.Fire()
	if calls != 1 {
		t.Fatal("edge delivered while disabled")
	}
	m.EnableModemIRQ()
	if calls != 2 {
		t.Errorf("latched edge not delivered on enable: calls = %d", calls)
	}

	m.DisableModemIRQ()
	m.irq.Fire()
	m.ClearRadioIRQPending()
	m.EnableModemIRQ()
	if calls != 2 {
		t.Errorf("cleared edge delivered: calls = %d", calls)
	}

	m.ConfigRadioIRQ(nil)
	if m.sys.resets != 1 {
		t.Errorf("nil handler: resets = %d, want 1", m.sys.resets)
	}
}

func TestModem_Environment(t *testing.T) {
	m := newTestModem(t)

	if m.TimeInSeconds() != 3 || m.CompensatedTimeInSeconds() != 3 || m.TimeCompensationInSeconds() != 0 {
		t.Error("seconds accessors disagree with the clock")
	}
	if m.TimeInMilliseconds() != 3500 {
		t.Errorf("TimeInMilliseconds() = %d", m.TimeInMilliseconds())
	}
	if m.TimeIn100Microseconds() != 35000 || m.RadioIRQTimestampIn100Microseconds() != 35000 {
		t.Error("100us accessors disagree with the clock")
	}

	if m.BatteryLevel() != 254 || m.Temperature() != 20 || m.Voltage() != 254 || m.BoardDelayMs() != 1 {
		t.Error("environment constants changed")
	}
	if m.RadioTCXOStartupDelayMs() != 30 {
		t.Errorf("TCXO delay = %d", m.RadioTCXOStartupDelayMs())
	}
	m.StartRadioTCXO()
	m.StopRadioTCXO()

	if m.RandomNumber() != 7 {
		t.Error("RandomNumber() does not read the RNG")
	}

	m.ReloadWatchdog()
	if m.wd.reloads != 1 {
		t.Errorf("reloads = %d", m.wd.reloads)
	}
	m.ResetMCU()
	if m.sys.resets != 1 {
		t.Errorf("resets = %d", m.sys.resets)
	}
}

func TestScanHooks(t *testing.T) {
	var hooks ScanHooks
	hooks.InvokePrescan()
	hooks.InvokePostscan()

	var got []string
	hooks.AttachPrescan(func() { got = append(got, "pre-1") })
	hooks.AttachPrescan(func() { got = append(got, "pre-2") })
	hooks.AttachPostscan(func() { got = append(got, "post") })

	bsp := NewBSP(&hooks, RegModeDCDC)
	bsp.GnssPrescanActions()
	bsp.WifiPrescanActions()
	bsp.WifiPostscanActions()
	bsp.GnssPostscanActions()

	if strings.Join(got, ",") != "pre-2,post" {
		t.Errorf("hook calls = %v, want [pre-2 post]", got)
	}

	hooks.AttachPostscan(nil)
	hooks.InvokePostscan()
	if len(got) != 2 {
		t.Error("detached hook still called")
	}
}

func TestBSP(t *testing.T) {
	bsp := NewBSP(nil, RegModeLDO)
	if bsp.LFClockConfig() != LFClockXTAL {
		t.Errorf("LFClockConfig() = %d", bsp.LFClockConfig())
	}
	if bsp.RegMode() != RegModeLDO {
		t.Errorf("RegMode() = %s", bsp.RegMode())
	}

	for _, tt := range []struct {
		in   string
		want RegMode
	}{{"", RegModeDCDC}, {"dcdc", RegModeDCDC}, {"ldo", RegModeLDO}} {
		got, err := ParseRegMode(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseRegMode(%q) = %v, %v", tt.in, got, err)
		}
	}
	if _, err := ParseRegMode("buck"); err == nil {
		t.Error("ParseRegMode(buck) accepted")
	}
}

type failingSource struct{ err error }

func (s failingSource) Listen(func()) error { return s.err }

func TestEdgeInterrupt_Begin(t *testing.T) {
	e := NewEdgeInterrupt(nil)
	if err := e.Begin(nil); !errors.Is(err, ErrNilHandler) {
		t.Errorf("Begin(nil) error = %v", err)
	}
	e.Fire()

	wantErr := errors.New("no such pin")
	e = NewEdgeInterrupt(failingSource{err: wantErr})
	if err := e.Begin(func() {}); !errors.Is(err, wantErr) {
		t.Errorf("Begin() error = %v, want %v", err, wantErr)
	}
}

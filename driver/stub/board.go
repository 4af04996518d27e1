//go:build !tinygo && !baremetal

package stub

import (
	"bytes"
	"math/rand"
	"sync"
	"time"

	"github.com/ystepanoff/lbmwm1110/hal"
	"github.com/ystepanoff/lbmwm1110/nvm"
	"github.com/ystepanoff/lbmwm1110/timing"
)

// Board bundles the simulated primitives so tests can drive them directly.
type Board struct {
	Bus     *Bus
	Flash   *nvm.MemFlash
	Counter *Counter
	RNG     *RNG
	System  *System
	Trace   *TraceLog
	IRQ     *IRQLine
}

func NewBoard() *Board {
	return &Board{
		Bus:     New(),
		Flash:   nvm.NewMemFlash(nvm.DefaultPageSize, nvm.DefaultPageCount),
		Counter: &Counter{},
		RNG:     NewRNG(1),
		System:  &System{},
		Trace:   &TraceLog{},
		IRQ:     &IRQLine{},
	}
}

// HAL returns the board as the primitive set consumed by the hardware
// context. The watchdog resets the simulated system on expiry.
func (b *Board) HAL(watchdogPeriod time.Duration) hal.Board {
	return hal.Board{
		Bus:      b.Bus,
		Flash:    b.Flash,
		Counter:  b.Counter,
		RNG:      b.RNG,
		System:   b.System,
		Watchdog: timing.NewSoftWatchdog(watchdogPeriod, b.System.Reset),
		Trace:    b.Trace,
		IRQ:      b.IRQ,
	}
}

// Counter is a manually advanced RTC counter.
type Counter struct {
	mu       sync.Mutex
	value    uint32
	overflow func()
}

func (c *Counter) OnOverflow(fn func()) {
	c.mu.Lock()
	c.overflow = fn
	c.mu.Unlock()
}

func (c *Counter) Counter() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Advance moves the counter by ticks, raising one overflow per wrap.
func (c *Counter) Advance(ticks uint64) {
	c.mu.Lock()
	total := uint64(c.value) + ticks
	wraps := total >> timing.CounterBits
	c.value = uint32(total & (timing.MaxCounts - 1))
	fn := c.overflow
	c.mu.Unlock()

	if fn != nil {
		for ; wraps > 0; wraps-- {
			fn()
		}
	}
}

// RNG is a deterministic entropy source.
type RNG struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewSource(seed))}
}

func (g *RNG) Uint32() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.r.Uint32()
}

// System records MCU reset requests instead of restarting the process.
type System struct {
	mu     sync.Mutex
	resets int
}

func (s *System) Reset() {
	s.mu.Lock()
	s.resets++
	s.mu.Unlock()
}

func (s *System) Resets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resets
}

// TraceLog collects trace output.
type TraceLog struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (t *TraceLog) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.Write(p)
}

func (t *TraceLog) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}

// IRQLine is the simulated radio IRQ pin.
type IRQLine struct {
	mu   sync.Mutex
	fire func()
}

func (l *IRQLine) Listen(fire func()) error {
	l.mu.Lock()
	l.fire = fire
	l.mu.Unlock()
	return nil
}

// Raise produces one rising edge.
func (l *IRQLine) Raise() {
	l.mu.Lock()
	fire := l.fire
	l.mu.Unlock()
	if fire != nil {
		fire()
	}
}

package timing

import (
	"sync"
	"time"
)

// HostCounter emulates the RTC counter from the process monotonic clock.
// The counter has no interrupt of its own: a wrap is reported to the
// overflow callback by the first read that observes it.
type HostCounter struct {
	mu       sync.Mutex
	now      func() time.Time
	start    time.Time
	wraps    uint64
	overflow func()
}

func NewHostCounter() *HostCounter {
	return newHostCounter(time.Now)
}

func newHostCounter(now func() time.Time) *HostCounter {
	return &HostCounter{now: now, start: now()}
}

func (hc *HostCounter) OnOverflow(fn func()) {
	hc.mu.Lock()
	hc.overflow = fn
	hc.mu.Unlock()
}

func (hc *HostCounter) Counter() uint32 {
	hc.mu.Lock()
	d := hc.now().Sub(hc.start)
	ticks := uint64(d/time.Second)*Frequency + uint64(d%time.Second)*Frequency/uint64(time.Second)
	wraps := ticks >> CounterBits
	pending := wraps - hc.wraps
	hc.wraps = wraps
	fn := hc.overflow
	hc.mu.Unlock()

	if fn != nil {
		for ; pending > 0; pending-- {
			fn()
		}
	}
	return uint32(ticks & (MaxCounts - 1))
}

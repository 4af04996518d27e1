// Package timing provides the modem time base, the deadline timer and the
// watchdog used by the HAL.
package timing

import "sync/atomic"

const (
	// Frequency is the RTC tick rate in Hz.
	Frequency = 32768
	// CounterBits is the width of the hardware counter.
	CounterBits = 24
	// MaxCounts is the number of counts the hardware counter holds before
	// it wraps.
	MaxCounts = 1 << CounterBits
)

// CounterSource is the interface that wraps a free-running 24-bit counter.
type CounterSource interface {
	// Counter returns the current raw counter value.
	Counter() uint32
	// OnOverflow registers fn to run each time the counter wraps.
	OnOverflow(fn func())
}

// PendingOverflowSource is implemented by counters that can report a wrap
// whose overflow callback has not run yet, such as when the clock is read
// from an interrupt handler that masks the counter interrupt.
type PendingOverflowSource interface {
	OverflowPending() bool
}

// RTC extends a CounterSource into a monotonic count. Overflows are
// accumulated in MaxCounts steps; the overflow callback may run concurrently
// with reads, so the accumulated value is read twice until stable.
type RTC struct {
	src       CounterSource
	pending   PendingOverflowSource
	overflows atomic.Uint64
}

// NewRTC wires the overflow callback of src and returns the clock.
func NewRTC(src CounterSource) *RTC {
	rtc := &RTC{src: src}
	rtc.pending, _ = src.(PendingOverflowSource)
	src.OnOverflow(rtc.Overflow)
	return rtc
}

// Overflow accounts one counter wrap.
func (c *RTC) Overflow() {
	c.overflows.Add(MaxCounts)
}

// ElapsedCounts returns the number of ticks since the counter was started.
func (c *RTC) ElapsedCounts() uint64 {
	for {
		before := c.overflows.Load()
		counter := c.src.Counter()
		// The pending flag is sampled after the counter: a wrap before the
		// counter read leaves a small value, a wrap after it a large one.
		wrapped := c.pending != nil && c.pending.OverflowPending() && counter < MaxCounts/2
		if c.overflows.Load() != before {
			continue
		}
		counts := before + uint64(counter)
		if wrapped {
			counts += MaxCounts
		}
		return counts
	}
}

func (c *RTC) ElapsedSeconds() uint32 {
	return uint32(c.ElapsedCounts() / Frequency)
}

func (c *RTC) ElapsedMilliseconds() uint32 {
	return uint32(c.ElapsedCounts() * 1000 / Frequency)
}

func (c *RTC) Elapsed100Microseconds() uint32 {
	return uint32(c.ElapsedCounts() * 10000 / Frequency)
}

package timing

import (
	"sync"
	"time"
)

// OneShot is a single-slot deadline timer. At most one deadline is pending;
// its callback runs once and the timer becomes inactive again.
//
// While the IRQ is disabled an expired deadline is held and delivered by
// EnableIRQ, the way a masked interrupt stays pending.
type OneShot struct {
	mu        sync.Mutex
	timer     *time.Timer
	fn        func()
	gen       uint64
	running   bool
	irqOff    bool
	pending   func()
	afterFunc func(time.Duration, func()) *time.Timer
}

func NewOneShot() *OneShot {
	return &OneShot{afterFunc: time.AfterFunc}
}

// Start arms the timer to call fn after ms milliseconds.
func (o *OneShot) Start(ms uint32, fn func()) error {
	if ms == 0 {
		return ErrZeroDelay
	}
	if fn == nil {
		return ErrNilCallback
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running || o.pending != nil {
		return ErrTimerRunning
	}

	o.gen++
	gen := o.gen
	o.fn = fn
	o.running = true
	o.timer = o.afterFunc(time.Duration(ms)*time.Millisecond, func() { o.expire(gen) })
	return nil
}

func (o *OneShot) expire(gen uint64) {
	o.mu.Lock()
	if gen != o.gen || !o.running {
		o.mu.Unlock()
		return
	}
	fn := o.fn
	o.fn = nil
	o.running = false
	if o.irqOff {
		o.pending = fn
		o.mu.Unlock()
		return
	}
	o.mu.Unlock()

	fn()
}

// Stop cancels the pending deadline, including one held by a disabled IRQ.
// A callback that has already started is not interrupted.
func (o *OneShot) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.gen++
	o.fn = nil
	o.pending = nil
	o.running = false
}

// Running reports whether a deadline is armed or held for delivery.
func (o *OneShot) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running || o.pending != nil
}

func (o *OneShot) DisableIRQ() {
	o.mu.Lock()
	o.irqOff = true
	o.mu.Unlock()
}

func (o *OneShot) EnableIRQ() {
	o.mu.Lock()
	o.irqOff = false
	fn := o.pending
	o.pending = nil
	o.mu.Unlock()

	if fn != nil {
		fn()
	}
}

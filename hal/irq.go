package hal

import (
	"errors"
	"sync"
)

var ErrNilHandler = errors.New("interrupt handler is nil")

// EdgeSource is the interface that wraps the radio IRQ line. Listen arranges
// for fire to be called on every rising edge.
type EdgeSource interface {
	Listen(fire func()) error
}

// EdgeInterrupt dispatches radio IRQ edges to one handler. While disabled an
// edge is latched and delivered on Enable unless cleared first.
type EdgeInterrupt struct {
	mu        sync.Mutex
	src       EdgeSource
	handler   func()
	listening bool
	enabled   bool
	pending   bool
}

func NewEdgeInterrupt(src EdgeSource) *EdgeInterrupt {
	return &EdgeInterrupt{src: src}
}

// Begin installs fn as the handler and enables delivery. A later Begin
// replaces the handler.
func (e *EdgeInterrupt) Begin(fn func()) error {
	if fn == nil {
		return ErrNilHandler
	}

	e.mu.Lock()
	e.handler = fn
	e.enabled = true
	listen := !e.listening && e.src != nil
	e.listening = true
	e.mu.Unlock()

	if listen {
		if err := e.src.Listen(e.Fire); err != nil {
			e.mu.Lock()
			e.listening = false
			e.mu.Unlock()
			return err
		}
	}
	return nil
}

// Fire signals one edge.
func (e *EdgeInterrupt) Fire() {
	e.mu.Lock()
	if e.handler == nil {
		e.mu.Unlock()
		return
	}
	if !e.enabled {
		e.pending = true
		e.mu.Unlock()
		return
	}
	fn := e.handler
	e.mu.Unlock()

	fn()
}

func (e *EdgeInterrupt) Disable() {
	e.mu.Lock()
	e.enabled = false
	e.mu.Unlock()
}

func (e *EdgeInterrupt) Enable() {
	e.mu.Lock()
	e.enabled = true
	fn := e.handler
	deliver := e.pending && fn != nil
	e.pending = false
	e.mu.Unlock()

	if deliver {
		fn()
	}
}

// Clear drops a latched edge.
func (e *EdgeInterrupt) Clear() {
	e.mu.Lock()
	e.pending = false
	e.mu.Unlock()
}

func (e *EdgeInterrupt) Pending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending
}

package hal

import (
	"sync"
	"sync/atomic"
)

// CrashLogSize is the size of the crash record kept across a fatal reset.
const CrashLogSize = 32

// CrashLog holds the last crash record and its availability flag. The flag is
// independent of the record: the stack clears it once the record is read.
type CrashLog struct {
	mu        sync.Mutex
	record    [CrashLogSize]byte
	available atomic.Bool
}

// Store copies up to CrashLogSize bytes of p into the record, zero-filling
// the rest.
func (c *CrashLog) Store(p []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.record = [CrashLogSize]byte{}
	copy(c.record[:], p)
}

func (c *CrashLog) Restore() [CrashLogSize]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record
}

func (c *CrashLog) SetStatus(available bool) { c.available.Store(available) }

func (c *CrashLog) Status() bool { return c.available.Load() }

package hal

import "sync"

// ScanHooks holds the GNSS prescan and postscan actions. Each slot keeps the
// last attached function; invoking an empty slot does nothing.
type ScanHooks struct {
	mu       sync.Mutex
	prescan  func()
	postscan func()
}

func (h *ScanHooks) AttachPrescan(fn func()) {
	h.mu.Lock()
	h.prescan = fn
	h.mu.Unlock()
}

func (h *ScanHooks) AttachPostscan(fn func()) {
	h.mu.Lock()
	h.postscan = fn
	h.mu.Unlock()
}

func (h *ScanHooks) InvokePrescan() {
	h.mu.Lock()
	fn := h.prescan
	h.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (h *ScanHooks) InvokePostscan() {
	h.mu.Lock()
	fn := h.postscan
	h.mu.Unlock()
	if fn != nil {
		fn()
	}
}

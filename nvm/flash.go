// Package nvm persists modem context blobs to fixed flash pages.
package nvm

import (
	"fmt"
	"sync"
)

const (
	// DefaultPageSize is the nRF52840 erase page size.
	DefaultPageSize = 4096
	// DefaultPageCount covers the 1 MiB nRF52840 flash.
	DefaultPageCount = 256
	// WriteBlockSize is the programming granularity used by the store.
	WriteBlockSize = 16
	// ErasedByte is the value of every byte of an erased page.
	ErasedByte = 0xFF
)

// Flash is the interface that wraps page-erasable NOR storage. Addresses are
// absolute byte offsets from the start of flash.
type Flash interface {
	PageSize() int
	PageCount() int
	// ErasePage sets every byte of page to ErasedByte.
	ErasePage(page int) error
	// Program writes p at addr. Programming only clears bits; addr and
	// len(p) are multiples of WriteBlockSize.
	Program(addr int, p []byte) error
	// Read copies len(p) bytes starting at addr into p.
	Read(addr int, p []byte) error
}

func checkRange(f Flash, addr, n int) error {
	if addr < 0 || n < 0 || addr+n > f.PageSize()*f.PageCount() {
		return fmt.Errorf("%w: [%#x, %#x)", ErrAddressRange, addr, addr+n)
	}
	return nil
}

func checkProgram(f Flash, addr int, p []byte) error {
	if addr%WriteBlockSize != 0 || len(p)%WriteBlockSize != 0 {
		return fmt.Errorf("%w: addr %#x len %d", ErrUnaligned, addr, len(p))
	}
	return checkRange(f, addr, len(p))
}

// MemFlash is a RAM-backed Flash with NOR semantics.
type MemFlash struct {
	mu       sync.Mutex
	pageSize int
	data     []byte
	erases   map[int]int
}

// NewMemFlash returns an erased flash of pageCount pages.
func NewMemFlash(pageSize, pageCount int) *MemFlash {
	data := make([]byte, pageSize*pageCount)
	for i := range data {
		data[i] = ErasedByte
	}
	return &MemFlash{pageSize: pageSize, data: data, erases: make(map[int]int)}
}

func (m *MemFlash) PageSize() int  { return m.pageSize }
func (m *MemFlash) PageCount() int { return len(m.data) / m.pageSize }

func (m *MemFlash) ErasePage(page int) error {
	if page < 0 || page >= m.PageCount() {
		return fmt.Errorf("%w: page %d", ErrPageRange, page)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	start := page * m.pageSize
	for i := start; i < start+m.pageSize; i++ {
		m.data[i] = ErasedByte
	}
	m.erases[page]++
	return nil
}

func (m *MemFlash) Program(addr int, p []byte) error {
	if err := checkProgram(m, addr, p); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, b := range p {
		m.data[addr+i] &= b
	}
	return nil
}

func (m *MemFlash) Read(addr int, p []byte) error {
	if err := checkRange(m, addr, len(p)); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	copy(p, m.data[addr:addr+len(p)])
	return nil
}

// EraseCount reports how many times page has been erased.
func (m *MemFlash) EraseCount(page int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.erases[page]
}

package nvm

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// ContextID names one persisted modem state block.
type ContextID uint8

const (
	ContextModem ContextID = iota
	ContextLR1MAC
	ContextDevNonce
	ContextSecureElement

	contextCount
)

// DefaultApplicationEnd is the first address reserved for application code
// on the WM1110 (nRF52840 with the S140 softdevice linker layout).
const DefaultApplicationEnd = 0xED000

func (id ContextID) String() string {
	switch id {
	case ContextModem:
		return "modem"
	case ContextLR1MAC:
		return "lr1mac"
	case ContextDevNonce:
		return "devnonce"
	case ContextSecureElement:
		return "secure_element"
	default:
		return fmt.Sprintf("context(%d)", uint8(id))
	}
}

// ContextIDs lists every context in page order.
func ContextIDs() []ContextID {
	ids := make([]ContextID, 0, contextCount)
	for id := ContextID(0); id < contextCount; id++ {
		ids = append(ids, id)
	}
	return ids
}

// ParseContextID maps a context name back to its identifier.
func ParseContextID(name string) (ContextID, error) {
	for _, id := range ContextIDs() {
		if id.String() == name {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownContext, name)
}

// PageMap assigns each context the pages directly below the application end:
// the modem context takes the highest page, the next one below it, and so on.
type PageMap struct {
	pages    [contextCount]int
	pageSize int
	appEnd   int
}

// NewPageMap builds and checks the context page assignment.
func NewPageMap(appEnd, pageSize, pageCount int) (PageMap, error) {
	var pm PageMap
	if pageSize <= 0 {
		return pm, fmt.Errorf("%w: page size %d", ErrPageRange, pageSize)
	}
	pm.pageSize = pageSize
	pm.appEnd = appEnd

	top := appEnd / pageSize
	seen := make(map[int]ContextID, contextCount)
	for _, id := range ContextIDs() {
		page := top - 1 - int(id)
		if page < 0 || page >= pageCount {
			return pm, fmt.Errorf("%w: %s at page %d of %d", ErrPageRange, id, page, pageCount)
		}
		if (page+1)*pageSize > appEnd {
			return pm, fmt.Errorf("%w: %s at page %d", ErrPageBoundary, id, page)
		}
		if other, dup := seen[page]; dup {
			return pm, fmt.Errorf("%w: %s and %s at page %d", ErrPageOverlap, other, id, page)
		}
		seen[page] = id
		pm.pages[id] = page
	}
	return pm, nil
}

// Page returns the flash page of id.
func (pm PageMap) Page(id ContextID) (int, error) {
	if id >= contextCount {
		return 0, fmt.Errorf("%w: %d", ErrUnknownContext, id)
	}
	return pm.pages[id], nil
}

// Addr returns the absolute flash address of the page of id.
func (pm PageMap) Addr(id ContextID) (int, error) {
	page, err := pm.Page(id)
	if err != nil {
		return 0, err
	}
	return page * pm.pageSize, nil
}

func (pm PageMap) ApplicationEnd() int { return pm.appEnd }

// ContextStore writes and reads whole context blobs. There is no partial
// update: a store erases the page and reprograms it from scratch.
type ContextStore struct {
	flash Flash
	pages PageMap
}

func NewContextStore(f Flash, pages PageMap) *ContextStore {
	return &ContextStore{flash: f, pages: pages}
}

func (s *ContextStore) Pages() PageMap { return s.pages }

func (s *ContextStore) check(id ContextID, n int) (int, error) {
	page, err := s.pages.Page(id)
	if err != nil {
		return 0, err
	}
	if n <= 0 || n > s.flash.PageSize() {
		return 0, fmt.Errorf("%w: %d bytes for %s (page size %d)", ErrContextSize, n, id, s.flash.PageSize())
	}
	if page >= s.flash.PageCount() {
		return 0, fmt.Errorf("%w: %s at page %d", ErrPageRange, id, page)
	}
	return page, nil
}

// Store erases the page of id and programs blob into it. The tail of the last
// write block is padded with ErasedByte so it reads back as erased.
func (s *ContextStore) Store(id ContextID, blob []byte) error {
	page, err := s.check(id, len(blob))
	if err != nil {
		return err
	}

	if err := s.flash.ErasePage(page); err != nil {
		return fmt.Errorf("nvm: store %s: %w", id, err)
	}

	addr := page * s.flash.PageSize()
	full := len(blob) / WriteBlockSize * WriteBlockSize
	if full > 0 {
		if err := s.flash.Program(addr, blob[:full]); err != nil {
			return fmt.Errorf("nvm: store %s: %w", id, err)
		}
	}

	if rest := len(blob) - full; rest > 0 {
		var chunk [WriteBlockSize]byte
		for i := range chunk {
			chunk[i] = ErasedByte
		}
		copy(chunk[:], blob[full:])
		if err := s.flash.Program(addr+full, chunk[:]); err != nil {
			return fmt.Errorf("nvm: store %s: %w", id, err)
		}
	}

	log.Debug().Stringer("context", id).Int("page", page).Int("size", len(blob)).Msg("context stored")
	return nil
}

// Restore reads len(buf) bytes of the page of id into buf.
func (s *ContextStore) Restore(id ContextID, buf []byte) error {
	page, err := s.check(id, len(buf))
	if err != nil {
		return err
	}
	if err := s.flash.Read(page*s.flash.PageSize(), buf); err != nil {
		return fmt.Errorf("nvm: restore %s: %w", id, err)
	}
	return nil
}

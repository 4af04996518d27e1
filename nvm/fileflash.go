package nvm

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// FileFlash is a Flash backed by an image file, so context pages survive a
// restart of the host process the same way they survive a device reset.
type FileFlash struct {
	mu        sync.Mutex
	f         *os.File
	pageSize  int
	pageCount int
}

// OpenFileFlash opens the image at path, creating an erased one if needed.
// An existing image must have exactly pageSize*pageCount bytes.
func OpenFileFlash(path string, pageSize, pageCount int) (*FileFlash, error) {
	size := int64(pageSize * pageCount)

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if errors.Is(err, fs.ErrNotExist) {
		f, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			return nil, fmt.Errorf("nvm: create image: %w", err)
		}
		if _, err := f.WriteAt(bytes.Repeat([]byte{ErasedByte}, int(size)), 0); err != nil {
			f.Close()
			return nil, fmt.Errorf("nvm: initialise image: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("nvm: open image: %w", err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("nvm: stat image: %w", err)
	}
	if st.Size() != size {
		f.Close()
		return nil, fmt.Errorf("nvm: image %s is %d bytes, want %d", path, st.Size(), size)
	}

	return &FileFlash{f: f, pageSize: pageSize, pageCount: pageCount}, nil
}

func (ff *FileFlash) PageSize() int  { return ff.pageSize }
func (ff *FileFlash) PageCount() int { return ff.pageCount }

func (ff *FileFlash) ErasePage(page int) error {
	if page < 0 || page >= ff.pageCount {
		return fmt.Errorf("%w: page %d", ErrPageRange, page)
	}
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, err := ff.f.WriteAt(bytes.Repeat([]byte{ErasedByte}, ff.pageSize), int64(page*ff.pageSize)); err != nil {
		return fmt.Errorf("nvm: erase page %d: %w", page, err)
	}
	return ff.f.Sync()
}

func (ff *FileFlash) Program(addr int, p []byte) error {
	if err := checkProgram(ff, addr, p); err != nil {
		return err
	}
	ff.mu.Lock()
	defer ff.mu.Unlock()

	cur := make([]byte, len(p))
	if _, err := ff.f.ReadAt(cur, int64(addr)); err != nil {
		return fmt.Errorf("nvm: program %#x: %w", addr, err)
	}
	for i := range cur {
		cur[i] &= p[i]
	}
	if _, err := ff.f.WriteAt(cur, int64(addr)); err != nil {
		return fmt.Errorf("nvm: program %#x: %w", addr, err)
	}
	return ff.f.Sync()
}

func (ff *FileFlash) Read(addr int, p []byte) error {
	if err := checkRange(ff, addr, len(p)); err != nil {
		return err
	}
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, err := ff.f.ReadAt(p, int64(addr)); err != nil {
		return fmt.Errorf("nvm: read %#x: %w", addr, err)
	}
	return nil
}

func (ff *FileFlash) Close() error {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	return ff.f.Close()
}

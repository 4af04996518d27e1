package nvm

import "errors"

var (
	ErrUnknownContext = errors.New("unknown context identifier")
	ErrContextSize    = errors.New("context size out of range")
	ErrPageRange      = errors.New("flash page out of range")
	ErrAddressRange   = errors.New("flash address out of range")
	ErrUnaligned      = errors.New("flash program not block aligned")
	ErrPageOverlap    = errors.New("context pages overlap")
	ErrPageBoundary   = errors.New("context page not below application end")
)

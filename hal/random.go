package hal

import "math"

// RandomInRange returns a value in [min(a, b), max(a, b)]. Equal bounds are
// returned without reading the RNG.
func RandomInRange(rng RNG, a, b uint32) uint32 {
	lo, hi := a, b
	switch {
	case a < b:
	case b < a:
		lo, hi = b, a
	default:
		return a
	}

	if lo == 0 && hi == math.MaxUint32 {
		return rng.Uint32()
	}
	return rng.Uint32()%(hi-lo+1) + lo
}

// SignedRandomInRange is RandomInRange over int32 bounds.
func SignedRandomInRange(rng RNG, a, b int32) int32 {
	lo, hi := a, b
	switch {
	case a < b:
	case b < a:
		lo, hi = b, a
	default:
		return a
	}

	if lo == math.MinInt32 && hi == math.MaxInt32 {
		return int32(rng.Uint32() ^ 0x80000000)
	}
	span := uint32(hi) - uint32(lo) + 1
	return int32(rng.Uint32()%span + uint32(lo))
}

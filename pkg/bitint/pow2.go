// Package bitint has power-of-two helpers for sizing audio buffers.
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of two >= size, or 1 for
// size <= 0.
func NextPowerOfTwo(size int) int {
	if size <= 1 {
		return 1
	}
	// size-1 keeps exact powers of two from doubling.
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

/*
Package bitint provides the power-of-two helpers used for FFT block sizing.

Design Principles:
- Zero Allocations: All operations use stack memory only
- Predictable Performance: O(1) constant time operations
- Real-Time Safe: No locks, syscalls, or blocking operations

Usage:

	// Verify an FFT block size is valid
	ok := bitint.IsPowerOfTwo(blockSize)

	// Suggest the nearest valid block size for a rejected one
	size := bitint.NextPowerOfTwo(1000) // Returns 1024

	// Number of butterfly stages for a block
	stages := bitint.Log2(1024) // Returns 10

----------------------------------------------------------------------

Why NextPowerOfTwo subtracts one before measuring:

	For input 8 (binary 1000), bits.Len(7) = 3 and 1 << 3 = 8, so a
	power of two maps to itself. Measuring 8 directly would give
	bits.Len(8) = 4 and double the input to 16.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of 2 >= size. Zero and
// negative sizes return 1.
//
//	Input  Output
//	4      4
//	5      8
//	0      1
//	-1     1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// PrevPowerOfTwo returns the largest power of 2 <= size, or 0 when size
// is not positive.
func PrevPowerOfTwo(size int) int {
	if size <= 0 {
		return 0
	}
	return 1 << (bits.Len(uint(size)) - 1)
}

// IsPowerOfTwo checks if n is a power of 2 using bit manipulation.
// Powers of 2 have exactly one bit set, so n & (n-1) clears it to zero.
//
//	Input  Output  Binary
//	8      true    1000 & 0111 = 0000
//	7      false   0111 & 0110 = 0110
//	0      false   Not positive
//	-8     false   Not positive
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// Log2 returns the exponent of a power of two: Log2(1024) == 10. The
// result for other values is floor(log2(n)); n must be positive.
func Log2(n int) int {
	return bits.Len(uint(n)) - 1
}

package format

import "math/bits"

// AlignWord returns n rounded up to the next word boundary.
//
// Example:
//
//	AlignWord(1)  = 8
//	AlignWord(8)  = 8
//	AlignWord(9)  = 16
func AlignWord(n int) int {
	return (n + WordMask) &^ WordMask
}

// AlignUp returns n rounded up to a multiple of align, which must be a power of two.
//
// Example:
//
//	AlignUp(13, 16) = 16
//	AlignUp(32, 16) = 32
func AlignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// AlignDown returns n rounded down to a multiple of align, which must be a power of two.
func AlignDown(n, align int) int {
	return n &^ (align - 1)
}

// AlignAddr is the uintptr flavour of AlignUp, used for absolute arena addresses.
func AlignAddr(addr uintptr, align int) uintptr {
	a := uintptr(align)
	return (addr + a - 1) &^ (a - 1)
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && bits.OnesCount(uint(n)) == 1
}

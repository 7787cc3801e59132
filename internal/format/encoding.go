package format

import "encoding/binary"

// Headers are stored little-endian regardless of the host, so an arena dump
// reads the same on every platform.

// PutWord writes v as a signed 64-bit word at off.
func PutWord(b []byte, off int, v int) {
	binary.LittleEndian.PutUint64(b[off:off+WordSize], uint64(int64(v)))
}

// ReadWord reads the signed 64-bit word at off.
func ReadWord(b []byte, off int) int {
	return int(int64(binary.LittleEndian.Uint64(b[off : off+WordSize])))
}

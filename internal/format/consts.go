// Package format holds the low-level arithmetic and in-band word accessors
// shared by the memory resources. Allocator metadata lives inside the arena
// it describes, so every header read or write goes through these helpers.
package format

const (
	// WordSize is the size of one in-band header word.
	WordSize = 8

	// WordMask is used to round sizes to whole words.
	WordMask = WordSize - 1

	// Nil is the link value that terminates an in-band list.
	Nil = -1
)

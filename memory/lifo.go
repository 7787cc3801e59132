package memory

import "github.com/micro-os-plus/micro-os-plus-iii-sub003/internal/format"

// LIFO is a variable-size allocator for stack-like lifetimes. It only ever
// carves from the lowest free chunk, and only while that chunk starts the
// arena, so allocation never scans. Freeing in reverse order merges each
// chunk straight back into the bottom chunk.
//
// Freeing out of order still works, but the space stays unusable until the
// chunks below it are freed as well.
type LIFO struct {
	chunkResource
}

// NewLIFO builds a LIFO allocator over storage.
func NewLIFO(name string, storage []byte, opts ...Option) *LIFO {
	l := &LIFO{}
	l.setup(name, l, storage, opts)
	return l
}

// NewLIFOFrom builds a LIFO allocator over size bytes taken from upstream.
func NewLIFOFrom(name string, size int, upstream Resource, opts ...Option) (*LIFO, error) {
	l := &LIFO{}
	if err := l.setupFrom(name, l, size, upstream, opts); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *LIFO) doAllocate(bytes, alignment int) []byte {
	size := adjustedSize(bytes, alignment)
	c := l.list.head
	if c == format.Nil || !l.list.atArenaStart(c) || l.list.sizeOf(c) < size {
		return nil
	}
	chunk, chunkSize, split := l.list.take(format.Nil, c, size)
	l.list.commit(chunkSize, split)
	_, p := l.list.place(chunk, bytes, alignment)
	return p
}

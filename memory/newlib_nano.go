package memory

import (
	"github.com/cockroachdb/errors"

	"github.com/micro-os-plus/micro-os-plus-iii-sub003/internal/format"
)

// NewlibNano is a small first-fit allocator in the style of newlib-nano's
// malloc. Requests are carved from the top of the first chunk that fits and
// the payload is aligned afterwards; an alignment gap large enough to be a
// chunk of its own is handed back to the free list.
type NewlibNano struct {
	chunkResource
}

// NewNewlibNano builds a newlib-nano allocator over storage.
func NewNewlibNano(name string, storage []byte, opts ...Option) *NewlibNano {
	n := &NewlibNano{}
	n.setup(name, n, storage, opts)
	return n
}

// NewNewlibNanoFrom builds a newlib-nano allocator over size bytes taken
// from upstream.
func NewNewlibNanoFrom(name string, size int, upstream Resource, opts ...Option) (*NewlibNano, error) {
	n := &NewlibNano{}
	if err := n.setupFrom(name, n, size, upstream, opts); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *NewlibNano) doAllocate(bytes, alignment int) []byte {
	size := adjustedSize(bytes, alignment)
	prev, c := n.list.firstFit(size)
	if c == format.Nil {
		return nil
	}
	chunk, chunkSize, split := n.list.take(prev, c, size)

	payload := chunk + headerSize
	addr := n.list.arena.addr(payload)
	gap := int(format.AlignAddr(addr, alignment) - addr)
	if gap >= minChunkSize {
		// Give the gap back as a chunk of its own; it merges with the
		// remainder below when the chunk was split.
		n.list.setSize(chunk, gap)
		if n.list.insert(chunk) {
			n.stats.FreeChunks++
		}
		chunk += gap
		chunkSize -= gap
		n.list.setSize(chunk, chunkSize)
	}

	n.list.commit(chunkSize, split)
	_, p := n.list.place(chunk, bytes, alignment)
	return p
}

// UsableSize returns how many bytes the allocation p can hold, which may be
// more than was requested.
func (n *NewlibNano) UsableSize(p []byte) int {
	cs := n.domain.Enter()
	defer cs.Exit()
	chunk, payload, ok := n.list.locate(p)
	if !ok {
		panic(errors.AssertionFailedf("memory: %s: usable size of a chunk that is not allocated", n.Name()))
	}
	return n.list.usable(chunk, payload)
}

// Reallocate resizes the allocation p to bytes, in place when the chunk is
// already large enough, otherwise by moving the contents to a new chunk.
// A nil p allocates; bytes == 0 frees p and returns nil.
func (n *NewlibNano) Reallocate(p []byte, bytes, alignment int) ([]byte, error) {
	if p == nil {
		return n.Allocate(bytes, alignment)
	}
	if bytes == 0 {
		n.Deallocate(p, 0, alignment)
		return nil, nil
	}
	_, alignment = normalize(bytes, alignment)

	in, old := n.resizeInPlace(p, bytes, alignment)
	if in != nil {
		return in, nil
	}

	q, err := n.Allocate(bytes, alignment)
	if err != nil {
		return nil, err
	}
	copy(q, old)
	n.Deallocate(old, 0, alignment)
	return q, nil
}

// resizeInPlace returns p resized to bytes when its chunk already fits,
// otherwise nil and the whole usable payload to copy from.
func (n *NewlibNano) resizeInPlace(p []byte, bytes, alignment int) (in, old []byte) {
	cs := n.domain.Enter()
	defer cs.Exit()
	chunk, payload, ok := n.list.locate(p)
	if !ok {
		panic(errors.AssertionFailedf("memory: %s: reallocate of a chunk that is not allocated", n.Name()))
	}
	usable := n.list.usable(chunk, payload)
	if bytes <= usable && n.list.arena.addr(payload)%uintptr(alignment) == 0 {
		return n.list.arena.slice(payload, bytes), nil
	}
	return nil, n.list.arena.slice(payload, usable)
}

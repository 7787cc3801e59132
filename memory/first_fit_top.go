package memory

import "github.com/micro-os-plus/micro-os-plus-iii-sub003/internal/format"

// FirstFitTop is a general variable-size allocator. It takes the first free
// chunk large enough and carves the request from its top, leaving the
// remainder in place on the free list.
type FirstFitTop struct {
	chunkResource
}

// NewFirstFitTop builds a first-fit-top allocator over storage.
func NewFirstFitTop(name string, storage []byte, opts ...Option) *FirstFitTop {
	f := &FirstFitTop{}
	f.setup(name, f, storage, opts)
	return f
}

// NewFirstFitTopFrom builds a first-fit-top allocator over size bytes taken
// from upstream.
func NewFirstFitTopFrom(name string, size int, upstream Resource, opts ...Option) (*FirstFitTop, error) {
	f := &FirstFitTop{}
	if err := f.setupFrom(name, f, size, upstream, opts); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *FirstFitTop) doAllocate(bytes, alignment int) []byte {
	size := adjustedSize(bytes, alignment)
	prev, c := f.list.firstFit(size)
	if c == format.Nil {
		return nil
	}
	chunk, chunkSize, split := f.list.take(prev, c, size)
	f.list.commit(chunkSize, split)
	_, p := f.list.place(chunk, bytes, alignment)
	return p
}

package memory

import (
	"github.com/micro-os-plus/micro-os-plus-iii-sub003/internal/format"
)

// arena is the usable, chunk-aligned region of a storage slice. Offsets used
// by the allocators are relative to buf[0].
type arena struct {
	buf  []byte
	base uintptr
}

// newArena trims storage so both ends are aligned to align.
func newArena(storage []byte, align int) arena {
	if len(storage) == 0 {
		return arena{}
	}
	addr := addrOf(storage)
	pad := int(format.AlignAddr(addr, align) - addr)
	if pad >= len(storage) {
		return arena{}
	}
	n := format.AlignDown(len(storage)-pad, align)
	buf := storage[pad : pad+n : pad+n]
	return arena{buf: buf, base: addr + uintptr(pad)}
}

func (a *arena) size() int { return len(a.buf) }

// offsetOf returns p's offset in the arena, and false when p does not start
// inside it.
func (a *arena) offsetOf(p []byte) (int, bool) {
	addr := addrOf(p)
	if addr < a.base || addr >= a.base+uintptr(len(a.buf)) {
		return 0, false
	}
	return int(addr - a.base), true
}

// slice returns n bytes at off with capacity capped at n.
func (a *arena) slice(off, n int) []byte {
	return a.buf[off : off+n : off+n]
}

func (a *arena) word(off int) int       { return format.ReadWord(a.buf, off) }
func (a *arena) setWord(off int, v int) { format.PutWord(a.buf, off, v) }
func (a *arena) addr(off int) uintptr   { return a.base + uintptr(off) }

// backing remembers storage obtained from an upstream resource so it can be
// returned exactly once.
type backing struct {
	upstream Resource
	storage  []byte
	owns     bool
}

func acquire(upstream Resource, n int) (backing, error) {
	storage, err := upstream.Allocate(n, MaxAlign)
	if err != nil {
		return backing{}, err
	}
	return backing{upstream: upstream, storage: storage, owns: true}, nil
}

// release gives the storage back to upstream. It is a no-op for caller
// supplied storage and on every call after the first.
func (b *backing) release() {
	if !b.owns {
		return
	}
	storage := b.storage
	b.storage, b.owns = nil, false
	b.upstream.Deallocate(storage, len(storage), MaxAlign)
}

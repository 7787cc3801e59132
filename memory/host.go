package memory

import (
	"math"

	"github.com/cockroachdb/errors"

	"github.com/micro-os-plus/micro-os-plus-iii-sub003/internal/format"
)

// Host allocates from the Go heap. It stands in for the C library's
// malloc on the host and is mostly useful as the upstream of arena-based
// resources. An optional limit makes it fail like a bounded heap.
type Host struct {
	resource
	limit int
	live  map[uintptr]int
}

// NewHost returns a host resource. limit 0 means unbounded.
func NewHost(name string, limit int, opts ...Option) *Host {
	h := &Host{limit: limit, live: make(map[uintptr]int)}
	h.init(name, h, opts)
	h.doReset()
	return h
}

func (h *Host) doAllocate(bytes, alignment int) []byte {
	if h.limit > 0 && h.stats.AllocatedBytes+bytes > h.limit {
		return nil
	}
	buf := make([]byte, bytes+alignment-1)
	addr := addrOf(buf)
	off := int(format.AlignAddr(addr, alignment) - addr)
	p := buf[off : off+bytes : off+bytes]
	h.live[addrOf(p)] = bytes
	h.stats.increase(bytes)
	h.settle()
	return p
}

func (h *Host) doDeallocate(p []byte, bytes, _ int) {
	addr := addrOf(p)
	n, ok := h.live[addr]
	if !ok {
		panic(errors.AssertionFailedf("memory: %s: deallocate of %#x, not allocated here", h.Name(), addr))
	}
	if bytes > n {
		panic(errors.AssertionFailedf("memory: %s: deallocate of %d bytes from a %d-byte block", h.Name(), bytes, n))
	}
	delete(h.live, addr)
	h.stats.decrease(n)
	h.settle()
}

// settle drops the free-space counters a heap without chunks cannot keep.
func (h *Host) settle() {
	h.stats.FreeChunks = 0
	if h.limit == 0 {
		h.stats.FreeBytes = 0
	}
}

func (h *Host) doMaxSize() int {
	if h.limit > 0 {
		return h.limit
	}
	return math.MaxInt
}

// doReset forgets every live block; the garbage collector reclaims them.
func (h *Host) doReset() {
	clear(h.live)
	h.stats = fresh(h.limit, 0)
}

func (h *Host) doCoalesce() bool { return false }

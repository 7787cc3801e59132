package memory

import (
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/micro-os-plus/micro-os-plus-iii-sub003/critical"
	"github.com/micro-os-plus/micro-os-plus-iii-sub003/internal/format"
	"github.com/micro-os-plus/micro-os-plus-iii-sub003/internal/logger"
)

const (
	// MaxAlign is the alignment used when a request passes alignment 0.
	MaxAlign = 8

	// ChunkAlign is the granularity of every chunk and arena boundary.
	ChunkAlign = format.WordSize
)

// Resource is the polymorphic allocation interface shared by every memory
// resource in this package.
type Resource interface {
	// Allocate returns bytes bytes aligned to alignment (0 means MaxAlign),
	// or an error wrapping ErrOutOfMemory.
	Allocate(bytes, alignment int) ([]byte, error)

	// TryAllocate is Allocate without the error: it returns nil on exhaustion.
	TryAllocate(bytes, alignment int) []byte

	// Deallocate returns p to the resource. bytes may be 0 when the size is
	// not known to the caller. A nil p is ignored.
	Deallocate(p []byte, bytes, alignment int)

	// MaxSize is the largest request that could ever succeed.
	MaxSize() int

	// Reset forgets every allocation and returns to the initial state.
	Reset()

	// Coalesce merges adjacent free space and reports whether anything changed.
	Coalesce() bool

	Name() string
	Stats() Stats
}

// OutOfMemoryHandler is called once when an allocation fails, before the
// request is retried. It typically releases caches back to the resource.
type OutOfMemoryHandler func()

// algorithm is the variant-specific part of a resource. Every method runs
// inside the owning resource's critical section.
type algorithm interface {
	doAllocate(bytes, alignment int) []byte
	doDeallocate(p []byte, bytes, alignment int)
	doMaxSize() int
	doReset()
	doCoalesce() bool
}

// resource is the core embedded by every concrete Resource. It owns the
// public wrappers: alignment normalisation, the critical section, the
// out-of-memory retry, statistics and tracing.
type resource struct {
	name   string
	domain *critical.Domain
	oom    OutOfMemoryHandler
	tracer Tracer
	stats  Stats
	closed bool
	algo   algorithm
}

// Option configures a resource at construction.
type Option func(*resource)

// WithDomain selects the critical-section domain guarding the resource.
// The default is critical.Scheduler; resources used from interrupt handlers
// must pass critical.Interrupts.
func WithDomain(d *critical.Domain) Option {
	return func(r *resource) { r.domain = d }
}

// WithTracer routes allocator events to t.
func WithTracer(t Tracer) Option {
	return func(r *resource) { r.tracer = t }
}

// WithOutOfMemoryHandler installs h as the initial out-of-memory handler.
func WithOutOfMemoryHandler(h OutOfMemoryHandler) Option {
	return func(r *resource) { r.oom = h }
}

func (r *resource) init(name string, algo algorithm, opts []Option) {
	r.name = name
	r.algo = algo
	r.domain = critical.Scheduler
	for _, opt := range opts {
		opt(r)
	}
	if r.domain == nil {
		r.domain = critical.Scheduler
	}
}

func normalize(bytes, alignment int) (int, int) {
	if alignment == 0 {
		alignment = MaxAlign
	}
	if !format.IsPowerOfTwo(alignment) {
		panic(errors.AssertionFailedf("memory: alignment %d is not a power of two", alignment))
	}
	if bytes < 0 {
		panic(errors.AssertionFailedf("memory: negative size %d", bytes))
	}
	if bytes == 0 {
		bytes = 1
	}
	return bytes, alignment
}

// Allocate implements Resource.
func (r *resource) Allocate(bytes, alignment int) ([]byte, error) {
	return r.allocate(bytes, alignment, false)
}

// TryAllocate implements Resource.
func (r *resource) TryAllocate(bytes, alignment int) []byte {
	p, _ := r.allocate(bytes, alignment, true)
	return p
}

func (r *resource) allocate(bytes, alignment int, noFail bool) ([]byte, error) {
	bytes, alignment = normalize(bytes, alignment)

	retried := false
	for {
		p, closed, handler := r.attempt(bytes, alignment)
		if closed {
			if noFail {
				return nil, nil
			}
			return nil, errors.Wrapf(ErrClosed, "%s: allocate %d bytes", r.Name(), bytes)
		}

		if p != nil {
			r.trace(TraceAllocate, p, bytes, alignment)
			return p, nil
		}
		if handler == nil || retried {
			break
		}
		retried = true
		logger.Debug("memory: out of memory, calling handler", "resource", r.Name(), "bytes", bytes)
		handler()
	}

	r.trace(TraceOutOfMemory, nil, bytes, alignment)
	if noFail {
		return nil, nil
	}
	st := r.Stats()
	err := errors.Wrapf(ErrOutOfMemory, "%s: allocate %d bytes aligned %d", r.Name(), bytes, alignment)
	return nil, errors.WithDetailf(err, "free %d of %d bytes in %d chunks", st.FreeBytes, st.TotalBytes, st.FreeChunks)
}

// attempt runs one allocation inside the critical section.
func (r *resource) attempt(bytes, alignment int) (p []byte, closed bool, handler OutOfMemoryHandler) {
	cs := r.domain.Enter()
	defer cs.Exit()
	if r.closed {
		return nil, true, nil
	}
	return r.algo.doAllocate(bytes, alignment), false, r.oom
}

// Deallocate implements Resource.
func (r *resource) Deallocate(p []byte, bytes, alignment int) {
	if p == nil {
		return
	}
	if alignment == 0 {
		alignment = MaxAlign
	}
	r.domain.Do(func() { r.algo.doDeallocate(p, bytes, alignment) })
	r.trace(TraceDeallocate, p, bytes, alignment)
}

// MaxSize implements Resource.
func (r *resource) MaxSize() int {
	cs := r.domain.Enter()
	defer cs.Exit()
	return r.algo.doMaxSize()
}

// Reset implements Resource.
func (r *resource) Reset() {
	r.domain.Do(r.algo.doReset)
	r.trace(TraceReset, nil, 0, 0)
}

// Coalesce implements Resource.
func (r *resource) Coalesce() bool {
	cs := r.domain.Enter()
	defer cs.Exit()
	return r.algo.doCoalesce()
}

// Name implements Resource.
func (r *resource) Name() string {
	if r.name == "" {
		return "-"
	}
	return r.name
}

// Stats implements Resource.
func (r *resource) Stats() Stats {
	cs := r.domain.Enter()
	defer cs.Exit()
	return r.stats
}

// Domain returns the critical-section domain guarding the resource.
func (r *resource) Domain() *critical.Domain { return r.domain }

// OutOfMemoryHandler returns the installed handler, or nil.
func (r *resource) OutOfMemoryHandler() OutOfMemoryHandler {
	cs := r.domain.Enter()
	defer cs.Exit()
	return r.oom
}

// SetOutOfMemoryHandler installs h and returns the previous handler.
func (r *resource) SetOutOfMemoryHandler(h OutOfMemoryHandler) OutOfMemoryHandler {
	cs := r.domain.Enter()
	defer cs.Exit()
	prev := r.oom
	r.oom = h
	return prev
}

func (r *resource) trace(op TraceOp, p []byte, bytes, alignment int) {
	if r.tracer == nil {
		return
	}
	r.tracer.Trace(TraceEvent{
		Op:        op,
		Resource:  r.Name(),
		Addr:      addrOf(p),
		Bytes:     bytes,
		Alignment: alignment,
		Stats:     r.Stats(),
	})
}

// addrOf returns the address of p's first byte, 0 for nil.
func addrOf(p []byte) uintptr {
	if cap(p) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(p)))
}

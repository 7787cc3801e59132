package memory

// TraceOp identifies a traced allocator event.
type TraceOp uint8

const (
	// TraceConstruct is emitted once a resource is ready.
	TraceConstruct TraceOp = iota
	// TraceDestroy is emitted when a resource is closed.
	TraceDestroy
	// TraceAllocate reports a successful allocation.
	TraceAllocate
	// TraceDeallocate reports a block returned to the resource.
	TraceDeallocate
	// TraceOutOfMemory reports a request that failed after the retry.
	TraceOutOfMemory
	// TraceReset reports that every allocation was forgotten.
	TraceReset
)

func (op TraceOp) String() string {
	switch op {
	case TraceConstruct:
		return "construct"
	case TraceDestroy:
		return "destroy"
	case TraceAllocate:
		return "allocate"
	case TraceDeallocate:
		return "deallocate"
	case TraceOutOfMemory:
		return "out-of-memory"
	case TraceReset:
		return "reset"
	default:
		return "unknown"
	}
}

// TraceEvent describes one allocator event. Addr is 0 when no block is involved.
type TraceEvent struct {
	Op        TraceOp
	Resource  string
	Addr      uintptr
	Bytes     int
	Alignment int
	Stats     Stats
}

// Tracer receives allocator events. Implementations must not call back into
// the resource that emitted the event.
type Tracer interface {
	Trace(ev TraceEvent)
}

// TracerFunc adapts a function to the Tracer interface.
type TracerFunc func(ev TraceEvent)

// Trace implements Tracer.
func (f TracerFunc) Trace(ev TraceEvent) { f(ev) }

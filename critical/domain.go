package critical

import (
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/petermattis/goid"
)

// Kind names the mechanism a Domain models.
type Kind uint8

const (
	// KindInterrupts models masking interrupts.
	KindInterrupts Kind = iota
	// KindScheduler models locking the scheduler.
	KindScheduler
)

func (k Kind) String() string {
	switch k {
	case KindInterrupts:
		return "interrupts"
	case KindScheduler:
		return "scheduler"
	default:
		return "unknown"
	}
}

var (
	// Interrupts is the process-wide interrupts domain.
	Interrupts = NewDomain(KindInterrupts)

	// Scheduler is the process-wide scheduler-lock domain.
	Scheduler = NewDomain(KindScheduler)
)

// Status is the state of a domain as seen before a Disable call. It is
// opaque to callers and only meaningful when handed back to Restore.
type Status struct {
	depth int
}

// Held reports whether the domain was already held when the status was taken.
func (s Status) Held() bool { return s.depth > 0 }

// Domain is a reentrant critical-section domain.
type Domain struct {
	kind  Kind
	mu    sync.Mutex
	owner atomic.Int64 // goroutine id of the holder, 0 when free
	depth int          // guarded by mu
}

// NewDomain returns an unheld domain of the given kind. Most code uses the
// package-level Interrupts and Scheduler domains; separate instances are
// useful for isolating tests.
func NewDomain(kind Kind) *Domain {
	return &Domain{kind: kind}
}

// Kind returns the mechanism this domain models.
func (d *Domain) Kind() Kind { return d.kind }

// current returns the calling goroutine's id. Ownership is keyed on it and
// 0 marks a free domain, so a runtime the goid offsets do not cover must
// fail here rather than let every goroutine share one identity.
func current() int64 {
	gid := goid.Get()
	if gid <= 0 {
		panic(errors.AssertionFailedf("critical: goroutine id %d unavailable on this runtime", gid))
	}
	return gid
}

// Disable enters the domain and returns the prior status.
func (d *Domain) Disable() Status {
	gid := current()
	if d.owner.Load() == gid {
		prev := Status{depth: d.depth}
		d.depth++
		return prev
	}
	d.mu.Lock()
	d.owner.Store(gid)
	d.depth = 1
	return Status{}
}

// Restore returns the domain to the state recorded in st. It must be called
// by the goroutine that called the matching Disable.
func (d *Domain) Restore(st Status) {
	if d.owner.Load() != current() {
		panic(errors.AssertionFailedf("critical: %s domain restored by a goroutine that does not hold it", d.kind))
	}
	if st.depth >= d.depth {
		panic(errors.AssertionFailedf("critical: %s domain restored out of order (depth %d, status %d)", d.kind, d.depth, st.depth))
	}
	d.depth = st.depth
	if d.depth == 0 {
		d.owner.Store(0)
		d.mu.Unlock()
	}
}

// Held reports whether the calling goroutine currently holds the domain.
func (d *Domain) Held() bool {
	return d.owner.Load() == current()
}

// Depth returns the calling goroutine's nesting depth, 0 when not held.
func (d *Domain) Depth() int {
	if !d.Held() {
		return 0
	}
	return d.depth
}

// Do runs fn inside a section of d.
func (d *Domain) Do(fn func()) {
	st := d.Disable()
	defer d.Restore(st)
	fn()
}

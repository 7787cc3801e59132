package waitlist

import (
	"github.com/cockroachdb/errors"

	"github.com/micro-os-plus/micro-os-plus-iii-sub003/critical"
)

// Timestamp is a clock reading in ticks.
type Timestamp uint64

// Timeout is a node of a Deadlines list.
type Timeout struct {
	prev, next *Timeout
	at         Timestamp
	action     func()
}

// NewTimeout returns an unlinked timeout firing action at ts.
func NewTimeout(ts Timestamp, action func()) *Timeout {
	return &Timeout{at: ts, action: action}
}

// At returns the expiry timestamp.
func (t *Timeout) At() Timestamp { return t.at }

// Linked reports whether the timeout is pending in a list.
func (t *Timeout) Linked() bool { return t.next != nil }

// Deadlines keeps timeouts in ascending timestamp order, FIFO among equal
// timestamps.
type Deadlines struct {
	head   *Timeout
	domain *critical.Domain
}

// NewDeadlines returns an empty list guarded by d. A nil domain selects
// critical.Interrupts, since expiry runs from the clock tick.
func NewDeadlines(d *critical.Domain) *Deadlines {
	if d == nil {
		d = critical.Interrupts
	}
	return &Deadlines{domain: d}
}

// Link inserts t after every timeout expiring at or before it.
// Linking a timeout that is already pending is a programming error.
func (dl *Deadlines) Link(t *Timeout) {
	cs := dl.domain.Enter()
	defer cs.Exit()

	if t.next != nil {
		panic(errors.AssertionFailedf("waitlist: timeout linked twice"))
	}
	if dl.head == nil {
		t.prev, t.next = t, t
		dl.head = t
		return
	}
	tail := dl.head.prev
	if t.at >= tail.at {
		linkTimeoutAfter(tail, t)
		return
	}
	if t.at < dl.head.at {
		linkTimeoutAfter(tail, t)
		dl.head = t
		return
	}
	at := dl.head.next
	for at.at <= t.at {
		at = at.next
	}
	linkTimeoutAfter(at.prev, t)
}

func linkTimeoutAfter(after, t *Timeout) {
	t.prev = after
	t.next = after.next
	after.next.prev = t
	after.next = t
}

// Unlink cancels t. Unlinking an unlinked timeout is a no-op.
func (dl *Deadlines) Unlink(t *Timeout) {
	cs := dl.domain.Enter()
	defer cs.Exit()
	dl.unlink(t)
}

func (dl *Deadlines) unlink(t *Timeout) {
	if t.next == nil {
		return
	}
	if t.next == t {
		dl.head = nil
	} else {
		t.prev.next = t.next
		t.next.prev = t.prev
		if dl.head == t {
			dl.head = t.next
		}
	}
	t.prev, t.next = nil, nil
}

// Next returns the earliest pending timestamp.
func (dl *Deadlines) Next() (Timestamp, bool) {
	cs := dl.domain.Enter()
	defer cs.Exit()
	if dl.head == nil {
		return 0, false
	}
	return dl.head.at, true
}

// Expire unlinks every timeout due at now and runs their actions, in order,
// after leaving the critical section. It returns the number expired.
func (dl *Deadlines) Expire(now Timestamp) int {
	var due []*Timeout

	cs := dl.domain.Enter()
	for dl.head != nil && dl.head.at <= now {
		t := dl.head
		dl.unlink(t)
		due = append(due, t)
	}
	cs.Exit()

	for _, t := range due {
		if t.action != nil {
			t.action()
		}
	}
	return len(due)
}

package waitlist

import (
	"github.com/cockroachdb/errors"

	"github.com/micro-os-plus/micro-os-plus-iii-sub003/critical"
	"github.com/micro-os-plus/micro-os-plus-iii-sub003/internal/logger"
)

// Priority orders waiters; larger values wake first.
type Priority uint8

// Standard priority levels. Values in between are valid and order the same way.
const (
	// PriorityNone is reserved for threads that must never run.
	PriorityNone Priority = 0
	// PriorityIdle is the level of the idle thread.
	PriorityIdle Priority = 1
	// PriorityLowest is the lowest level for application threads.
	PriorityLowest      Priority = 2
	PriorityLow         Priority = 2 << 4
	PriorityBelowNormal Priority = 4 << 4
	// PriorityNormal is the default for new threads.
	PriorityNormal      Priority = 6 << 4
	PriorityAboveNormal Priority = 8 << 4
	PriorityHigh        Priority = 10 << 4
	PriorityRealtime    Priority = 12 << 4
	// PriorityHighest is the top level, just below the reserved ISR band.
	PriorityHighest Priority = (15 << 4) - 1
)

// Thread is the view of a waiting thread the list needs.
type Thread interface {
	Priority() Priority
	Resume()
	Terminated() bool
}

// Node links one waiting thread into a List. A node with a nil next link is
// not in any list.
type Node struct {
	prev, next *Node
	thread     Thread
	prio       Priority
}

// NewNode returns an unlinked node for th.
func NewNode(th Thread) *Node {
	return &Node{thread: th}
}

// Thread returns the waiter this node stands for.
func (n *Node) Thread() Thread { return n.thread }

// Priority returns the sort key captured when the node was linked.
func (n *Node) Priority() Priority { return n.prio }

// Linked reports whether the node is currently in a list.
func (n *Node) Linked() bool { return n.next != nil }

// List is a circular doubly linked, priority-ordered waiting list.
type List struct {
	head   *Node
	count  int
	domain *critical.Domain
}

// New returns an empty list guarded by d. A nil domain selects
// critical.Scheduler.
func New(d *critical.Domain) *List {
	if d == nil {
		d = critical.Scheduler
	}
	return &List{domain: d}
}

// Domain returns the critical-section domain guarding the list.
func (l *List) Domain() *critical.Domain { return l.domain }

// Link inserts node after all nodes of greater or equal priority.
// Linking a node that is already linked is a programming error.
func (l *List) Link(node *Node) {
	if node.thread == nil {
		panic(errors.AssertionFailedf("waitlist: link of a node without a thread"))
	}
	cs := l.domain.Enter()
	defer cs.Exit()

	if node.next != nil {
		panic(errors.AssertionFailedf("waitlist: node linked twice"))
	}
	node.prio = node.thread.Priority()
	l.count++

	if l.head == nil {
		node.prev, node.next = node, node
		l.head = node
		return
	}

	tail := l.head.prev
	switch {
	case node.prio <= tail.prio:
		insertAfter(tail, node)
	case node.prio > l.head.prio:
		insertAfter(tail, node)
		l.head = node
	default:
		// head.prio >= prio > tail.prio, so the walk stops before wrapping.
		at := l.head.next
		for at.prio >= node.prio {
			at = at.next
		}
		insertAfter(at.prev, node)
	}
}

func insertAfter(after, node *Node) {
	node.prev = after
	node.next = after.next
	after.next.prev = node
	after.next = node
}

// Unlink removes node from the list. Unlinking an unlinked node is a no-op,
// which lets a timeout path and a wakeup path race safely.
func (l *List) Unlink(node *Node) {
	cs := l.domain.Enter()
	defer cs.Exit()
	l.unlink(node)
}

func (l *List) unlink(node *Node) {
	if node.next == nil {
		return
	}
	if node.next == node {
		l.head = nil
	} else {
		node.prev.next = node.next
		node.next.prev = node.prev
		if l.head == node {
			l.head = node.next
		}
	}
	node.prev, node.next = nil, nil
	l.count--
}

// Head returns the highest priority node, or nil.
func (l *List) Head() *Node {
	cs := l.domain.Enter()
	defer cs.Exit()
	return l.head
}

// Empty reports whether no node is linked.
func (l *List) Empty() bool {
	cs := l.domain.Enter()
	defer cs.Exit()
	return l.head == nil
}

// Len returns the number of linked nodes.
func (l *List) Len() int {
	cs := l.domain.Enter()
	defer cs.Exit()
	return l.count
}

// Threads returns the waiting threads in wake order.
func (l *List) Threads() []Thread {
	cs := l.domain.Enter()
	defer cs.Exit()

	out := make([]Thread, 0, l.count)
	if l.head == nil {
		return out
	}
	n := l.head
	for {
		out = append(out, n.thread)
		n = n.next
		if n == l.head {
			return out
		}
	}
}

// WakeupOne removes the head and resumes its thread. It reports whether a
// thread was resumed; a popped thread that has already terminated is dropped.
func (l *List) WakeupOne() bool {
	cs := l.domain.Enter()
	node := l.head
	if node == nil {
		cs.Exit()
		return false
	}
	l.unlink(node)
	cs.Exit()

	th := node.thread
	if th.Terminated() {
		logger.Debug("waitlist: dropped wakeup of terminated thread", "priority", node.prio)
		return false
	}
	th.Resume()
	return true
}

// WakeupAll resumes every waiter and returns how many were resumed.
func (l *List) WakeupAll() int {
	n := 0
	for !l.Empty() {
		if l.WakeupOne() {
			n++
		}
	}
	return n
}

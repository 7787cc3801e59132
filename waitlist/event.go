package waitlist

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrTerminated is returned by Wait when the waiting thread was terminated.
var ErrTerminated = errors.New("waitlist: thread terminated")

// Event is a Thread backed by channels, letting a goroutine block in a List.
type Event struct {
	prio    Priority
	resumed chan struct{}
	dead    chan struct{}
	once    sync.Once
}

// NewEvent returns a live event with priority prio.
func NewEvent(prio Priority) *Event {
	return &Event{
		prio:    prio,
		resumed: make(chan struct{}, 1),
		dead:    make(chan struct{}),
	}
}

// Priority implements Thread.
func (e *Event) Priority() Priority { return e.prio }

// Resume implements Thread. Resumes coalesce; only one is pending at a time.
func (e *Event) Resume() {
	select {
	case e.resumed <- struct{}{}:
	default:
	}
}

// Terminated implements Thread.
func (e *Event) Terminated() bool {
	select {
	case <-e.dead:
		return true
	default:
		return false
	}
}

// Terminate marks the thread as gone. Pending and future waits fail.
func (e *Event) Terminate() {
	e.once.Do(func() { close(e.dead) })
}

// Wait links e into l and blocks until it is resumed, terminated or ctx is
// done. On cancellation the node is unlinked; if a wakeup already popped it,
// the wakeup wins and Wait returns nil.
func (l *List) Wait(ctx context.Context, e *Event) error {
	if e.Terminated() {
		return ErrTerminated
	}
	node := NewNode(e)
	l.Link(node)

	select {
	case <-e.resumed:
		return nil
	case <-e.dead:
		l.Unlink(node)
		return ErrTerminated
	case <-ctx.Done():
	}

	cs := l.domain.Enter()
	linked := node.Linked()
	l.unlink(node)
	cs.Exit()

	if linked {
		return ctx.Err()
	}
	// Popped by a concurrent WakeupOne; its Resume is imminent.
	select {
	case <-e.resumed:
		return nil
	case <-e.dead:
		return ErrTerminated
	}
}

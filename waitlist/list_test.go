package waitlist

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micro-os-plus/micro-os-plus-iii-sub003/critical"
)

type fakeThread struct {
	id      int
	prio    Priority
	resumed int
	dead    bool
}

func (f *fakeThread) Priority() Priority { return f.prio }
func (f *fakeThread) Resume()            { f.resumed++ }
func (f *fakeThread) Terminated() bool   { return f.dead }

func ids(ths []Thread) []int {
	out := make([]int, len(ths))
	for i, th := range ths {
		out[i] = th.(*fakeThread).id
	}
	return out
}

func newTestList() *List {
	return New(critical.NewDomain(critical.KindScheduler))
}

func TestLinkOrdersByPriorityFIFOAmongEquals(t *testing.T) {
	l := newTestList()
	threads := []*fakeThread{
		{id: 1, prio: PriorityNormal},
		{id: 2, prio: PriorityHigh},
		{id: 3, prio: PriorityNormal},
		{id: 4, prio: PriorityLow},
		{id: 5, prio: PriorityHigh},
		{id: 6, prio: PriorityAboveNormal},
	}
	for _, th := range threads {
		l.Link(NewNode(th))
	}

	require.Equal(t, 6, l.Len())
	assert.Equal(t, []int{2, 5, 6, 1, 3, 4}, ids(l.Threads()))
}

func TestWakeupOrderMatchesPriority(t *testing.T) {
	l := newTestList()
	a := &fakeThread{id: 1, prio: PriorityNormal}
	b := &fakeThread{id: 2, prio: PriorityNormal}
	c := &fakeThread{id: 3, prio: PriorityHigh}
	for _, th := range []*fakeThread{a, b, c} {
		l.Link(NewNode(th))
	}

	require.True(t, l.WakeupOne())
	assert.Equal(t, 1, c.resumed)
	assert.Equal(t, 0, a.resumed)

	require.True(t, l.WakeupOne())
	assert.Equal(t, 1, a.resumed)
	assert.Equal(t, 0, b.resumed)

	require.True(t, l.WakeupOne())
	assert.Equal(t, 1, b.resumed)

	assert.False(t, l.WakeupOne())
	assert.True(t, l.Empty())
}

func TestWakeupDropsTerminatedThread(t *testing.T) {
	l := newTestList()
	gone := &fakeThread{id: 1, prio: PriorityHigh, dead: true}
	alive := &fakeThread{id: 2, prio: PriorityLow}
	l.Link(NewNode(gone))
	l.Link(NewNode(alive))

	assert.False(t, l.WakeupOne())
	assert.Equal(t, 0, gone.resumed)
	assert.Equal(t, 1, l.Len())
	assert.True(t, l.WakeupOne())
	assert.Equal(t, 1, alive.resumed)
}

func TestWakeupAll(t *testing.T) {
	l := newTestList()
	var threads []*fakeThread
	for i := range 5 {
		th := &fakeThread{id: i, prio: Priority(i * 10)}
		threads = append(threads, th)
		l.Link(NewNode(th))
	}
	threads[2].dead = true

	assert.Equal(t, 4, l.WakeupAll())
	assert.True(t, l.Empty())
	for i, th := range threads {
		if i == 2 {
			assert.Equal(t, 0, th.resumed)
			continue
		}
		assert.Equal(t, 1, th.resumed)
	}
}

func TestUnlinkIsIdempotent(t *testing.T) {
	l := newTestList()
	a := NewNode(&fakeThread{id: 1, prio: PriorityNormal})
	b := NewNode(&fakeThread{id: 2, prio: PriorityNormal})
	c := NewNode(&fakeThread{id: 3, prio: PriorityNormal})
	l.Link(a)
	l.Link(b)
	l.Link(c)

	l.Unlink(a)
	l.Unlink(a)
	assert.False(t, a.Linked())
	assert.Equal(t, 2, l.Len())
	assert.Same(t, b, l.Head())

	l.Unlink(c)
	assert.Equal(t, []int{2}, ids(l.Threads()))
	l.Unlink(b)
	assert.True(t, l.Empty())
	assert.Nil(t, l.Head())
}

func TestLinkTwicePanics(t *testing.T) {
	l := newTestList()
	n := NewNode(&fakeThread{prio: PriorityNormal})
	l.Link(n)
	require.Panics(t, func() { l.Link(n) })
	require.Panics(t, func() { l.Link(&Node{}) })
}

func TestRandomOrderProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	l := newTestList()

	var threads []*fakeThread
	for i := range 200 {
		th := &fakeThread{id: i, prio: Priority(rng.Intn(8))}
		threads = append(threads, th)
		l.Link(NewNode(th))
	}

	want := append([]*fakeThread(nil), threads...)
	sort.SliceStable(want, func(i, j int) bool { return want[i].prio > want[j].prio })
	wantIDs := make([]int, len(want))
	for i, th := range want {
		wantIDs[i] = th.id
	}
	assert.Equal(t, wantIDs, ids(l.Threads()))
}

func BenchmarkLinkTail(b *testing.B) {
	l := newTestList()
	th := &fakeThread{prio: PriorityNormal}
	for b.Loop() {
		n := NewNode(th)
		l.Link(n)
		l.Unlink(n)
	}
}

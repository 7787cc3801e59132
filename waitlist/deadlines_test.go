package waitlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micro-os-plus/micro-os-plus-iii-sub003/critical"
)

func TestDeadlinesExpireInOrder(t *testing.T) {
	dl := NewDeadlines(critical.NewDomain(critical.KindInterrupts))

	var fired []string
	mk := func(name string, ts Timestamp) *Timeout {
		return NewTimeout(ts, func() { fired = append(fired, name) })
	}
	a := mk("a", 30)
	b := mk("b", 10)
	c := mk("c", 20)
	d := mk("d", 10)
	e := mk("e", 40)
	for _, to := range []*Timeout{a, b, c, d, e} {
		dl.Link(to)
	}

	next, ok := dl.Next()
	require.True(t, ok)
	assert.Equal(t, Timestamp(10), next)

	assert.Equal(t, 0, dl.Expire(5))
	assert.Equal(t, 2, dl.Expire(10))
	assert.Equal(t, []string{"b", "d"}, fired)

	dl.Unlink(a)
	assert.False(t, a.Linked())
	assert.Equal(t, 2, dl.Expire(100))
	assert.Equal(t, []string{"b", "d", "c", "e"}, fired)

	_, ok = dl.Next()
	assert.False(t, ok)
}

func TestDeadlinesUnlinkIdempotent(t *testing.T) {
	dl := NewDeadlines(nil)
	to := NewTimeout(5, nil)
	dl.Link(to)
	dl.Unlink(to)
	dl.Unlink(to)
	assert.Equal(t, 0, dl.Expire(10))
}

func TestDeadlinesLinkTwicePanics(t *testing.T) {
	d := critical.NewDomain(critical.KindInterrupts)
	dl := NewDeadlines(d)
	to := NewTimeout(5, nil)
	dl.Link(to)
	require.Panics(t, func() { dl.Link(to) })
	assert.Equal(t, 0, d.Depth())

	// The pending timeout is untouched and still fires once.
	assert.Equal(t, 1, dl.Expire(5))
	assert.False(t, to.Linked())
}

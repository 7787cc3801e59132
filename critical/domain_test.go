package critical

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNestingRestoresPriorState(t *testing.T) {
	for _, d := range []*Domain{NewDomain(KindInterrupts), NewDomain(KindScheduler)} {
		t.Run(d.Kind().String(), func(t *testing.T) {
			require.False(t, d.Held())

			s1 := d.Enter()
			assert.False(t, s1.Prior().Held())
			assert.Equal(t, 1, d.Depth())

			s2 := d.Enter()
			assert.True(t, s2.Prior().Held())
			assert.Equal(t, 2, d.Depth())

			s3 := d.Enter()
			assert.Equal(t, 3, d.Depth())

			s3.Exit()
			assert.Equal(t, 2, d.Depth())
			assert.True(t, d.Held())

			s2.Exit()
			assert.Equal(t, 1, d.Depth())

			s1.Exit()
			assert.Equal(t, 0, d.Depth())
			assert.False(t, d.Held())
		})
	}
}

func TestRawDisableRestore(t *testing.T) {
	d := NewDomain(KindInterrupts)
	outer := d.Disable()
	inner := d.Disable()
	assert.True(t, inner.Held())
	d.Restore(inner)
	assert.True(t, d.Held())
	d.Restore(outer)
	assert.False(t, d.Held())
}

func TestExitIsIdempotent(t *testing.T) {
	d := NewDomain(KindScheduler)
	s := d.Enter()
	s.Exit()
	s.Exit()
	assert.False(t, d.Held())

	var zero Section
	zero.Exit()
}

func TestRestoreFromOtherGoroutinePanics(t *testing.T) {
	d := NewDomain(KindScheduler)
	st := d.Disable()
	defer d.Restore(st)

	var recovered any
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() { recovered = recover() }()
		d.Restore(st)
	}()
	wg.Wait()
	require.NotNil(t, recovered)
}

func TestRestoreOutOfOrderPanics(t *testing.T) {
	d := NewDomain(KindInterrupts)
	outer := d.Disable()
	inner := d.Disable()
	d.Restore(outer)
	require.Panics(t, func() { d.Restore(inner) })
}

func TestGoroutineIdentity(t *testing.T) {
	mine := current()
	require.NotZero(t, mine)
	assert.Equal(t, mine, current(), "id is stable within a goroutine")

	ids := make(chan int64, 2)
	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- current()
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{mine: true}
	for id := range ids {
		require.NotZero(t, id)
		assert.False(t, seen[id], "goroutine id %d reused", id)
		seen[id] = true
	}
}

func TestFreshDomainIsNotHeld(t *testing.T) {
	d := NewDomain(KindInterrupts)
	assert.False(t, d.Held())
	assert.Equal(t, 0, d.Depth())

	held := make(chan bool)
	d.Do(func() {
		go func() { held <- d.Held() }()
		assert.True(t, d.Held())
		assert.False(t, <-held, "holder identity leaked to another goroutine")
	})
}

func TestDomainExcludesOtherGoroutines(t *testing.T) {
	d := NewDomain(KindScheduler)
	s := d.Enter()

	entered := make(chan struct{})
	go func() {
		d.Do(func() {})
		close(entered)
	}()

	select {
	case <-entered:
		t.Fatal("second goroutine entered a held domain")
	case <-time.After(20 * time.Millisecond):
	}
	s.Exit()

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("second goroutine never entered after release")
	}
}

func TestDomainSerialisesCounter(t *testing.T) {
	d := NewDomain(KindScheduler)
	counter := 0
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 1000 {
				d.Do(func() {
					d.Do(func() { counter++ })
				})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 8000, counter)
}

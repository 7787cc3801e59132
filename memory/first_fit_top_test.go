package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstFitTopReusesOutOfOrderFree(t *testing.T) {
	arena := alignedArena(t, 256)
	f := NewFirstFitTop("fft", arena, testDomain())

	a := f.TryAllocate(64, 0)
	f.TryAllocate(64, 0)
	f.Deallocate(a, 64, 0)

	c := f.TryAllocate(64, 0)
	require.NotNil(t, c)
	assert.Equal(t, 16, offset(arena, c))

	d := f.TryAllocate(64, 0)
	require.NotNil(t, d, "first fit scans past the bottom chunk")
	assert.Equal(t, addrOf(a), addrOf(d))
	assert.Empty(t, f.FreeChunks())
	assert.Nil(t, f.TryAllocate(1, 0))
}

func TestFirstFitTopSplitsFirstFit(t *testing.T) {
	arena := alignedArena(t, 1024)
	f := NewFirstFitTop("fft", arena, testDomain())

	// Three 120-byte chunks at the top: [664,784) [784,904) [904,1024).
	p := [][]byte{f.TryAllocate(100, 0), f.TryAllocate(100, 0), f.TryAllocate(100, 0)}
	f.Deallocate(p[1], 100, 0)
	assert.Equal(t, [][2]int{{0, 664}, {784, 120}}, f.FreeChunks())

	// 40 bytes need 56: the first chunk fits and is carved from its top.
	q := f.TryAllocate(40, 0)
	assert.Equal(t, 664-56+16, offset(arena, q))
	assert.Equal(t, [][2]int{{0, 608}, {784, 120}}, f.FreeChunks())
	assert.Equal(t, 2, f.Stats().FreeChunks)
}

package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWorkload(t *testing.T) {
	ops, err := parseWorkload(strings.NewReader(`
# setup
alloc a 64
alloc b 10 32   # aligned
free a
reset
stats
`))
	require.NoError(t, err)
	require.Len(t, ops, 5)
	assert.Equal(t, op{kind: opAlloc, id: "a", bytes: 64, line: 3}, ops[0])
	assert.Equal(t, op{kind: opAlloc, id: "b", bytes: 10, align: 32, line: 4}, ops[1])
	assert.Equal(t, opFree, ops[2].kind)
	assert.Equal(t, opReset, ops[3].kind)
	assert.Equal(t, opStats, ops[4].kind)
}

func TestParseWorkloadErrors(t *testing.T) {
	for _, script := range []string{
		"alloc a",
		"alloc a x",
		"alloc a 8 -1",
		"free",
		"jump a",
	} {
		_, err := parseWorkload(strings.NewReader(script))
		assert.Error(t, err, script)
		assert.Contains(t, err.Error(), "line 1")
	}
}

func TestRunWorkloadPool(t *testing.T) {
	r, err := newResource(resourceFlags{kind: "pool", blocks: 2, blockSize: 32})
	require.NoError(t, err)
	ops, err := parseWorkload(strings.NewReader("alloc a 32\nalloc b 32\nalloc c 32\nfree a\nalloc d 32\n"))
	require.NoError(t, err)

	results, err := runWorkload(r, ops)
	require.NoError(t, err)
	require.Len(t, results, 5)
	assert.True(t, results[1].OK)
	assert.False(t, results[2].OK)
	assert.True(t, results[4].OK)
	assert.Equal(t, 2, results[4].Stats.AllocatedChunks)
}

func TestRunWorkloadErrors(t *testing.T) {
	r, err := newResource(resourceFlags{kind: "pool", blocks: 2, blockSize: 32})
	require.NoError(t, err)

	ops, _ := parseWorkload(strings.NewReader("free ghost"))
	_, err = runWorkload(r, ops)
	assert.ErrorContains(t, err, `"ghost" is not allocated`)

	ops, _ = parseWorkload(strings.NewReader("alloc a 8\nalloc a 8"))
	_, err = runWorkload(r, ops)
	assert.ErrorContains(t, err, "already allocated")

	ops, _ = parseWorkload(strings.NewReader("alloc big 100"))
	_, err = runWorkload(r, ops)
	assert.ErrorContains(t, err, "line 1")
}

func TestNewResourceRejects(t *testing.T) {
	_, err := newResource(resourceFlags{kind: "buddy", arena: 1024})
	assert.Error(t, err)
	_, err = newResource(resourceFlags{kind: "lifo", arena: 0})
	assert.Error(t, err)
	_, err = newResource(resourceFlags{kind: "lifo", arena: 8})
	assert.Error(t, err)
	_, err = newResource(resourceFlags{kind: "pool", blocks: 0, blockSize: 8})
	assert.Error(t, err)
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workload.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRunCommand(t *testing.T) {
	resetFlags()
	path := writeScript(t, "alloc a 600\nalloc b 600\nfree a\n")

	out, err := captureOutput(t, func() error {
		return runRun(path, resourceFlags{kind: "first-fit-top", arena: 1024})
	})
	require.NoError(t, err)
	assert.Contains(t, out, "alloc b (600 bytes): out of memory")
	assert.Contains(t, out, "3 instructions, 1 failed allocations")
}

func TestRunCommandJSONKeepsPartialResults(t *testing.T) {
	resetFlags()
	jsonOut = true
	defer resetFlags()
	path := writeScript(t, "alloc a 8\nfree ghost\n")

	out, err := captureOutput(t, func() error {
		return runRun(path, resourceFlags{kind: "nano", arena: 256})
	})
	require.Error(t, err)

	var got struct {
		Steps []stepResult `json:"steps"`
	}
	decodeJSON(t, out, &got)
	assert.Len(t, got.Steps, 1)
}

func TestRunCommandMissingScript(t *testing.T) {
	resetFlags()
	err := runRun(filepath.Join(t.TempDir(), "missing"), resourceFlags{kind: "nano", arena: 256})
	assert.ErrorContains(t, err, "failed to open script")
}

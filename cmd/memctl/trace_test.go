package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micro-os-plus/micro-os-plus-iii-sub003/internal/logger"
)

// traceInto enables --trace with the logger writing to buf.
func traceInto(t *testing.T, buf *bytes.Buffer) {
	t.Helper()
	resetFlags()
	traceOn = true
	logger.Init(logger.Options{Enabled: true, Writer: buf, Level: slog.LevelDebug})
	t.Cleanup(func() {
		resetFlags()
		logger.Init(logger.Options{})
	})
}

func TestTraceOffInstallsNothing(t *testing.T) {
	resetFlags()
	assert.Nil(t, tracer())
	assert.Empty(t, resourceOptions())
}

func TestRunWithTrace(t *testing.T) {
	var buf bytes.Buffer
	traceInto(t, &buf)
	path := writeScript(t, "alloc a 64\nalloc b 5000\nfree a\nreset\n")

	_, err := captureOutput(t, func() error {
		return runRun(path, resourceFlags{kind: "nano", arena: 1024})
	})
	require.NoError(t, err)

	log := buf.String()
	for _, ev := range []string{"memory construct", "memory allocate", "memory out-of-memory", "memory deallocate", "memory reset"} {
		assert.Contains(t, log, ev)
	}
	assert.Contains(t, log, "resource=nano")
}

func TestBootstrapWithTrace(t *testing.T) {
	var buf bytes.Buffer
	traceInto(t, &buf)
	setBootstrapDefaults()

	_, err := captureOutput(t, runBootstrap)
	require.NoError(t, err)

	log := buf.String()
	assert.Contains(t, log, "resource=application")
	assert.Contains(t, log, "resource=thread")
	assert.Contains(t, log, "memory destroy")
}

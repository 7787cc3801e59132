package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioPool(t *testing.T) {
	resetFlags()
	out, err := captureOutput(t, func() error { return runScenario("pool") })
	require.NoError(t, err)
	assert.Contains(t, out, "alloc  b9   out of memory")
	assert.Contains(t, out, "alloc  b10  ok")
}

func TestScenarioLIFOJSON(t *testing.T) {
	resetFlags()
	jsonOut = true
	defer resetFlags()

	out, err := captureOutput(t, func() error { return runScenario("lifo") })
	require.NoError(t, err)

	var got struct {
		Scenario string `json:"scenario"`
		Steps    []struct {
			ID string `json:"id"`
			OK bool   `json:"ok"`
		} `json:"steps"`
	}
	decodeJSON(t, out, &got)
	assert.Equal(t, "lifo", got.Scenario)
	require.Len(t, got.Steps, 7)
	assert.True(t, got.Steps[4].OK, "c takes the bottom chunk")
	assert.False(t, got.Steps[5].OK, "d cannot use a's chunk")
}

func TestScenarioNanoCoalesce(t *testing.T) {
	resetFlags()
	jsonOut = true
	defer resetFlags()

	out, err := captureOutput(t, func() error { return runScenario("nano-coalesce") })
	require.NoError(t, err)

	var got struct {
		Final struct {
			FreeChunks int `json:"free_chunks"`
			FreeBytes  int `json:"free_bytes"`
		} `json:"final"`
	}
	decodeJSON(t, out, &got)
	assert.Equal(t, 1, got.Final.FreeChunks)
	assert.Equal(t, 1024, got.Final.FreeBytes)
}

func TestScenarioUnknownAndList(t *testing.T) {
	resetFlags()
	assert.ErrorContains(t, runScenario("nope"), "nano-coalesce")

	out, err := captureOutput(t, listScenarios)
	require.NoError(t, err)
	for _, name := range scenarioNames() {
		assert.Contains(t, out, name)
	}
}

package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitDisabledDiscards(t *testing.T) {
	Init(Options{})
	Info("dropped")
	assert.NotNil(t, L)
}

func TestInitWritesAtLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Enabled: true, Writer: &buf, Level: slog.LevelWarn})
	t.Cleanup(func() { Init(Options{}) })

	Info("quiet")
	Warn("loud", "resource", "pool")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "loud")
	assert.Contains(t, out, "resource=pool")
}

func TestInitJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Enabled: true, Writer: &buf, JSON: true})
	t.Cleanup(func() { Init(Options{}) })

	Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

// Package tracing provides memory.Tracer sinks for structured loggers.
package tracing

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/zap"

	"github.com/micro-os-plus/micro-os-plus-iii-sub003/memory"
)

// Slog writes each event as a debug record on l.
type Slog struct {
	l     *slog.Logger
	level slog.Level
}

// NewSlog returns a sink logging at slog.LevelDebug.
func NewSlog(l *slog.Logger) *Slog {
	return &Slog{l: l, level: slog.LevelDebug}
}

// Trace implements memory.Tracer.
func (s *Slog) Trace(ev memory.TraceEvent) {
	if !s.l.Enabled(context.Background(), s.level) {
		return
	}
	s.l.LogAttrs(context.Background(), s.level, "memory "+ev.Op.String(),
		slog.String("resource", ev.Resource),
		slog.String("addr", hexAddr(ev.Addr)),
		slog.Int("bytes", ev.Bytes),
		slog.Int("align", ev.Alignment),
		slog.Int("allocated", ev.Stats.AllocatedBytes),
		slog.Int("free", ev.Stats.FreeBytes),
	)
}

// Zap writes each event as a debug entry on l.
type Zap struct {
	l *zap.Logger
}

// NewZap returns a sink logging on l.
func NewZap(l *zap.Logger) *Zap {
	return &Zap{l: l}
}

// Trace implements memory.Tracer.
func (z *Zap) Trace(ev memory.TraceEvent) {
	ce := z.l.Check(zap.DebugLevel, "memory "+ev.Op.String())
	if ce == nil {
		return
	}
	ce.Write(
		zap.String("resource", ev.Resource),
		zap.Uintptr("addr", ev.Addr),
		zap.Int("bytes", ev.Bytes),
		zap.Int("align", ev.Alignment),
		zap.Int("allocated", ev.Stats.AllocatedBytes),
		zap.Int("free", ev.Stats.FreeBytes),
	)
}

// Multi fans events out to several tracers.
type Multi []memory.Tracer

// Trace implements memory.Tracer.
func (m Multi) Trace(ev memory.TraceEvent) {
	for _, t := range m {
		t.Trace(ev)
	}
}

func hexAddr(a uintptr) string {
	return fmt.Sprintf("%#x", a)
}

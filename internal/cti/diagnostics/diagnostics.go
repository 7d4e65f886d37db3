// Package diagnostics holds the process-wide verbosity level and the
// slog.Logger built over it. The core algorithm never reads or branches
// on verbosity; this exists purely so the CLI and harness can dial
// tracing up or down (spec.md §9 "Global verbosity").
package diagnostics

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

// Level mirrors the three verbosity tiers of spec.md §6.2: 0 (errors
// only), 1 (standard), 2 (extra detail).
type Level int32

const (
	LevelQuiet    Level = 0
	LevelStandard Level = 1
	LevelVerbose  Level = 2
)

var verbosity atomic.Int32

func init() {
	verbosity.Store(int32(LevelStandard))
}

// SetVerbosity sets the process-wide verbosity level. Called once, at
// startup, by the CLI; never by core packages.
func SetVerbosity(l Level) { verbosity.Store(int32(l)) }

// Verbosity returns the current process-wide verbosity level.
func Verbosity() Level { return Level(verbosity.Load()) }

var logger = slog.New(newLevelHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))

// Logger returns the process-wide logger. The clocker and the harness log
// through it directly; no package takes a logger parameter.
func Logger() *slog.Logger { return logger }

// levelHandler wraps a slog.Handler and additionally filters by the
// diagnostics package's own verbosity level rather than slog's static
// level, so a single process can be dialed up or down at runtime.
type levelHandler struct {
	next slog.Handler
}

func newLevelHandler(next slog.Handler) *levelHandler { return &levelHandler{next: next} }

func (h *levelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	switch Verbosity() {
	case LevelQuiet:
		return level >= slog.LevelError
	case LevelVerbose:
		return true
	default:
		return level >= slog.LevelInfo
	}
}

func (h *levelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.next.Handle(ctx, r)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{next: h.next.WithAttrs(attrs)}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{next: h.next.WithGroup(name)}
}

// Package umlog provides the CLI driver's structured logging, wrapping
// log/slog the way the pack's S/370 emulator wraps it in util/logger:
// the engine itself never imports this package or log/slog at all, so
// embedding the engine in another program never drags in a logging
// dependency. Only the outermost driver decides how a fault gets
// reported.
package umlog

import (
	"fmt"
	"io"
	"log/slog"
)

// Logger is a thin wrapper around *slog.Logger with the two call
// shapes the CLI driver needs: a structured fault record and an
// optional per-instruction trace line.
type Logger struct {
	slog *slog.Logger
}

// New creates a Logger writing text-formatted records to w. When debug
// is true, Trace lines are emitted; otherwise Trace is a no-op, so the
// CLI driver can call it unconditionally without measuring verbosity
// at every call site.
func New(w io.Writer, debug bool) *Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{slog: slog.New(handler)}
}

// Fault reports a terminal engine error with the program counter and
// instruction word that were current when it occurred.
func (l *Logger) Fault(err error, pc, word uint32) {
	l.slog.Error("um: fault",
		slog.String("error", err.Error()),
		slog.Uint64("pc", uint64(pc)),
		slog.String("word", fmt.Sprintf("%#08x", word)),
	)
}

// Trace emits one disassembled instruction line at debug level. The
// engine itself never calls this directly; the driver wires it to
// engine.Engine.Trace so it runs after every fetch when verbose mode
// is on.
func (l *Logger) Trace(pc uint32, line string) {
	l.slog.Debug("um: trace", slog.Uint64("pc", uint64(pc)), slog.String("inst", line))
}

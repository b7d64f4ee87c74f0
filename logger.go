package jumpflood

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for jumpflood and its kernels.
// By default, jumpflood produces no log output. Pass nil to restore the
// default silent behavior.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
//
// Log levels used:
//   - [slog.LevelDebug]: per-pass diagnostics (step sizes, buffer sizes)
//   - [slog.LevelInfo]: run lifecycle (GPU adapter selected, run start/done)
//   - [slog.LevelWarn]: non-fatal issues (GPU unavailable, CPU fallback)
//
// Example:
//
//	jumpflood.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	// Propagate to the registered kernel if it supports logging.
	kernelMu.RLock()
	k := kernel
	kernelMu.RUnlock()
	if la, ok := k.(LoggerAware); ok {
		la.SetLogger(l)
	}
}

// Logger returns the currently active logger. It never returns nil; when no
// logger has been configured the returned logger discards everything.
func Logger() *slog.Logger { return loggerPtr.Load() }

// LoggerAware is an optional interface for kernels that accept a logger.
// SetLogger propagates the configured logger to the registered kernel when
// it implements this interface.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}

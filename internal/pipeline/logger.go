package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. Enabled returns false so disabled
// logging skips message formatting.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger installs the logger used by the pipeline. By default nothing is
// logged; pass nil to restore that.
//
// Log levels used:
//   - [slog.LevelDebug]: per-draw statistics and progress
//   - [slog.LevelWarn]: primitives rejected with an error
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current pipeline logger. Safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

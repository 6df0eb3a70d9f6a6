// Package logutil provides the below-Debug trace logging that index
// construction and Guide decoding steps emit for their internal
// state transitions, plus the process-wide logger envconfig.Debug
// switches it on for.
package logutil

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/jmorganca/outlines/envconfig"
)

// LevelTrace sits below slog.LevelDebug. Index and Guide step-by-step
// tracing is logged at this level so it stays silent unless a caller
// explicitly asks for it.
const LevelTrace slog.Level = -8

// sourceBasename trims a *slog.Source's file path to its basename, so
// trace lines stay readable without the full build-time path.
func sourceBasename(attr slog.Attr) slog.Attr {
	source := attr.Value.Any().(*slog.Source)
	source.File = filepath.Base(source.File)
	return attr
}

// NewLogger builds a text-handler logger at level. Records at
// LevelTrace are labeled "TRACE" instead of the handler's default
// numeric rendering.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				if attr.Value.Any().(slog.Level) == LevelTrace {
					attr.Value = slog.StringValue("TRACE")
				}
			case slog.SourceKey:
				attr = sourceBasename(attr)
			}
			return attr
		},
	}))
}

// Init installs a process-wide default logger, at LevelTrace when
// envconfig.Debug is set and slog.LevelInfo otherwise. Callers that
// want trace output from index/guide construction call this once at
// startup; library code that never calls it still runs correctly
// against slog's own zero-value default.
func Init() {
	level := slog.LevelInfo
	if envconfig.Debug {
		level = LevelTrace
	}
	slog.SetDefault(NewLogger(os.Stderr, level))
}

type skipKey struct{}

// Trace logs msg at LevelTrace against the default logger.
func Trace(msg string, args ...any) {
	TraceContext(context.WithValue(context.Background(), skipKey{}, 1), msg, args...)
}

// TraceContext logs msg at LevelTrace against the default logger,
// carrying ctx through to the handler.
func TraceContext(ctx context.Context, msg string, args ...any) {
	logger := slog.Default()
	if !logger.Enabled(ctx, LevelTrace) {
		return
	}
	skip, _ := ctx.Value(skipKey{}).(int)
	pc, _, _, _ := runtime.Caller(1 + skip)
	record := slog.NewRecord(time.Now(), LevelTrace, msg, pc)
	record.Add(args...)
	logger.Handler().Handle(ctx, record)
}

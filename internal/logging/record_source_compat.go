//go:build !go1.25

package logging

import (
	"log/slog"
	"runtime"
)

// recordSource mirrors slog.Record.Source, which is only available from Go 1.25.
func recordSource(record slog.Record) *slog.Source {
	if record.PC == 0 {
		return nil
	}
	fs := runtime.CallersFrames([]uintptr{record.PC})
	f, _ := fs.Next()
	return &slog.Source{
		Function: f.Function,
		File:     f.File,
		Line:     f.Line,
	}
}

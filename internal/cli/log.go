// Package cli implements the infragraph command-line interface.
//
// The commands import infrastructure descriptions into project files,
// inspect and validate projects, render them to images, and run the
// interactive workbench. The CLI is built using cobra and logs through
// charmbracelet/log.
//
// # Commands
//
//   - import: Convert a Compose file, Kubernetes manifest or Godot project
//   - show: Print the objects and relationships of a project
//   - validate: Check that a project file loads
//   - render: Export a project as PNG, SVG or DOT
//   - open: Start the workbench on a project file
//
// Running infragraph without a command starts the workbench on an empty
// project.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/infragraph/pkg/importers"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Imported 12 objects (4ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// logWarnings reports import warnings at warn level.
func logWarnings(l *log.Logger, res *importers.Result) {
	for _, w := range res.Warnings {
		l.Warn(w.Message, "entry", w.Entry)
	}
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, falling back to
// log.Default() when none is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

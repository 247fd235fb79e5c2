// Package cli implements the glitchpaper command-line interface.
//
// The root command runs the daemon: it validates the settings, renders the
// glitch frames for every image in the directory, and then rotates the
// wallpaper until interrupted. The CLI is built using cobra and logs
// through the charmbracelet/log library.
//
// # Commands
//
// Besides the daemon itself:
//   - install: Write a systemd user unit that runs the daemon
//   - cache: Show, inspect, or clear the frame cache
//   - completion: Generate shell completion scripts
//
// # Configuration
//
// Settings come from built-in defaults, then the TOML config file, then
// flags. See package config for the file format.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs every cache and display event. Loggers are passed through
// context.Context so a run id can be attached once and carried everywhere.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// newLogger writes to w at level, with "15:04:05.00" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one phase of a run.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with keyvals and the elapsed time as "took".
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "took", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// withRun tags the context logger with a fresh run id so the lines of one
// daemon run can be told apart in the journal.
func withRun(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()[:8]
	return withLogger(ctx, loggerFromContext(ctx).With("run", id)), id
}

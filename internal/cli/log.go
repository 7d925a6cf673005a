// Package cli implements the mapcustomizer command-line interface.
//
// The CLI renders customized maps from a project file or flags, edits the
// label and marker record files, manages the artifact cache and runs the
// HTTP render service. It is built on cobra; output uses lipgloss styling
// and interactive pickers use bubbletea.
//
// # Commands
//
//   - render: Draw markers and labels onto the base map
//   - points: Add, list, undo, remove or clear label and marker records
//   - cache: Inspect or clear the artifact cache
//   - serve: Run the HTTP render service
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context, and render and cache events are logged at
// debug level through the observability hooks.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
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

// done logs msg along with the elapsed time, e.g. "Rendered map (412ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() if none
// is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// logHooks reports render and cache events at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnLoadStart(_ context.Context, path string) {
	h.logger.Debug("loading base image", "path", path)
}

func (h *logHooks) OnLoadComplete(_ context.Context, path string, width, height int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("base image failed", "path", path, "err", err)
		return
	}
	h.logger.Debug("base image loaded", "path", path, "size", sizeString(width, height), "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnPassStart(_ context.Context, pass string) {
	h.logger.Debug("pass started", "pass", pass)
}

func (h *logHooks) OnPassComplete(_ context.Context, pass string, d time.Duration, err error) {
	h.logger.Debug("pass finished", "pass", pass, "took", d.Round(time.Millisecond), "err", err)
}

func (h *logHooks) OnSave(_ context.Context, path string, size int, d time.Duration, err error) {
	h.logger.Debug("output written", "path", path, "bytes", size, "took", d.Round(time.Millisecond), "err", err)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "key", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "key", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "key", keyType, "bytes", size)
}

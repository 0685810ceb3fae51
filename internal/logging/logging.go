// Package logging provides structured logging using Go's slog package.
//
// Logs go to stderr so that commands can write their results to stdout.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// RunIDKey is the context key for the ID of a conversion run.
	RunIDKey ContextKey = "run_id"
)

var (
	// defaultLogger is the global logger instance.
	defaultLogger *slog.Logger
)

func init() {
	InitLogger(LevelInfo, FormatAuto)
}

// Level represents a log level.
type Level int

const (
	// LevelDebug is for debug messages.
	LevelDebug Level = iota
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// Format represents a log output format.
type Format int

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON Format = iota
	// FormatText outputs logs in human-readable text format.
	FormatText
	// FormatAuto picks text on a terminal and JSON otherwise.
	FormatAuto
)

// ParseLevel converts a level name such as "debug" or "WARN".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// ParseFormat converts "json", "text" or "auto".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "text":
		return FormatText, nil
	case "auto", "":
		return FormatAuto, nil
	}
	return FormatAuto, fmt.Errorf("unknown log format %q", s)
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InitLogger initializes the global logger with the specified level and format.
func InitLogger(level Level, format Format) {
	defaultLogger = New(os.Stderr, level, format)
	slog.SetDefault(defaultLogger)
}

// New builds a logger writing to w. FormatAuto resolves to text only when w
// is a terminal.
func New(w io.Writer, level Level, format Format) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       level.slogLevel(),
		ReplaceAttr: replaceAttr,
	}

	if format == FormatAuto {
		format = FormatJSON
		if isTerminal(w) {
			format = FormatText
		}
	}

	var handler slog.Handler
	if format == FormatText {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// replaceAttr formats timestamps as RFC3339.
func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && len(groups) == 0 {
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.Format(time.RFC3339))
		}
	}
	return a
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// WithRunID returns a new context with the run ID.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run ID from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// LoggerFromContext returns the global logger with the context's run ID
// attached, if there is one.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger := defaultLogger
	if runID := GetRunID(ctx); runID != "" {
		logger = logger.With("run_id", runID)
	}
	return logger
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

// Info logs an info message.
func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

// DebugContext logs a debug message with context.
func DebugContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).DebugContext(ctx, msg, args...)
}

// InfoContext logs an info message with context.
func InfoContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).InfoContext(ctx, msg, args...)
}

// WarnContext logs a warning message with context.
func WarnContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).WarnContext(ctx, msg, args...)
}

// ErrorContext logs an error message with context.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).ErrorContext(ctx, msg, args...)
}

// FileConverted logs a file written by a conversion run.
func FileConverted(ctx context.Context, path, output string, warnings int) {
	LoggerFromContext(ctx).InfoContext(ctx, "file converted",
		"path", path,
		"output", output,
		"warnings", warnings,
	)
}

// FileFailed logs a file that was abandoned.
func FileFailed(ctx context.Context, path string, err error) {
	LoggerFromContext(ctx).ErrorContext(ctx, "file failed",
		"path", path,
		"error", err.Error(),
	)
}

// BlockSkipped logs a block with an unknown tag on l. Skipped blocks are
// diagnostics, so they only show at debug level.
func BlockSkipped(l *slog.Logger, tag uint32, offset, next int64) {
	l.Debug("skipping block",
		"tag", tag,
		"offset", offset,
		"next", next,
	)
}

// Package logger builds the structured slog loggers used across LevelUp.
// It supports JSON and text output, level parsing, an optional rotating log
// file, context propagation, and domain field helpers.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// ParseLevel parses a string into a slog.Level. Unknown values map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Options configures the logger.
type Options struct {
	// Level is the minimum enabled level.
	Level slog.Level

	// Format is "json" or "text". Anything else is treated as text.
	Format string

	// FilePath enables a rotating log file when non-empty.
	FilePath string

	// FileMaxSizeMB is the size at which the log file rotates. Default: 50.
	FileMaxSizeMB int

	// FileMaxBackups is the number of rotated files to keep. Default: 3.
	FileMaxBackups int

	// AlsoStdout writes to stdout in addition to the log file.
	AlsoStdout bool

	// Output overrides the destination entirely (tests).
	Output io.Writer
}

// DefaultOptions returns sensible defaults for the logger.
func DefaultOptions() Options {
	return Options{
		Level:          slog.LevelInfo,
		Format:         FormatText,
		FileMaxSizeMB:  50,
		FileMaxBackups: 3,
		AlsoStdout:     true,
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New creates a slog.Logger from opts. The returned closer releases the log
// file, if one was opened, and is always non-nil.
func New(opts Options) (*slog.Logger, io.Closer) {
	var (
		out    io.Writer = os.Stdout
		closer io.Closer = nopCloser{}
	)

	switch {
	case opts.Output != nil:
		out = opts.Output
	case opts.FilePath != "":
		maxSize := opts.FileMaxSizeMB
		if maxSize <= 0 {
			maxSize = 50
		}
		backups := opts.FileMaxBackups
		if backups <= 0 {
			backups = 3
		}
		file := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    maxSize,
			MaxBackups: backups,
			Compress:   true,
		}
		closer = file
		out = file
		if opts.AlsoStdout {
			out = io.MultiWriter(os.Stdout, file)
		}
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, FormatJSON) {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	return slog.New(handler), closer
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTEXT
// ══════════════════════════════════════════════════════════════════════════════

type ctxKey struct{}

// WithContext returns a new context with the logger attached.
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the logger from context, or returns slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// ══════════════════════════════════════════════════════════════════════════════
// FIELDS
// ══════════════════════════════════════════════════════════════════════════════

// Err creates an error attribute. A nil error renders as an empty string.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// LevelUp domain helpers.
func DayKey(key string) slog.Attr         { return slog.String("day_key", key) }
func SessionID(id int) slog.Attr          { return slog.Int("session_id", id) }
func XPAmount(xp int) slog.Attr           { return slog.Int("xp_amount", xp) }
func UserLevel(level int) slog.Attr       { return slog.Int("level", level) }
func UserID(id string) slog.Attr          { return slog.String("user_id", id) }
func ClanID(id string) slog.Attr          { return slog.String("clan_id", id) }
func StorageKey(key string) slog.Attr     { return slog.String("storage_key", key) }
func Component(name string) slog.Attr     { return slog.String("component", name) }
func Operation(name string) slog.Attr     { return slog.String("operation", name) }
func Latency(d time.Duration) slog.Attr   { return slog.Duration("latency", d) }
func SchemaVersion(version int) slog.Attr { return slog.Int("schema_version", version) }

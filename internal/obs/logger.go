// Package obs wires structured logging and Prometheus metrics.
package obs

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// NewLogger creates a slog logger with dev-friendly output for local
// environments and JSON everywhere else.
func NewLogger(env string) *slog.Logger {
	return newLogger(os.Stdout, env, slog.LevelInfo)
}

// NewVerboseLogger is NewLogger at debug level.
func NewVerboseLogger(env string) *slog.Logger {
	return newLogger(os.Stdout, env, slog.LevelDebug)
}

// NewCLILogger logs to stderr so command output on stdout stays parseable.
// Only warnings and errors are shown unless verbose is set.
func NewCLILogger(env string, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return newLogger(os.Stderr, env, level)
}

func newLogger(w io.Writer, env string, level slog.Level) *slog.Logger {
	if IsLocal(env) {
		handler := tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339,
			AddSource:  true,
		})
		return slog.New(handler)
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	})
	return slog.New(handler)
}

// IsLocal reports whether env is a developer environment.
func IsLocal(env string) bool {
	return env == "" || env == "dev" || env == "local"
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

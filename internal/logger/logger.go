// Package logger provides leveled logging to stderr.
//
// Stdout is reserved for the MCP protocol stream, so all diagnostics go
// to stderr. Debug output is suppressed unless verbose mode is enabled.
package logger

import (
	"log/slog"
	"os"
)

var (
	level = new(slog.LevelVar) // defaults to Info

	log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
)

// SetVerbose enables or disables debug logging.
func SetVerbose(verbose bool) {
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
}

// Debug logs at debug level. Only emitted in verbose mode.
func Debug(msg string, args ...any) {
	log.Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	log.Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	log.Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	log.Error(msg, args...)
}

package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Logger is the leveled, structured logging interface shared across the
// application. It mirrors slog's method shape so callers can pass attribute
// pairs without conversion.
type Logger interface {
	// Debug logs a debug message.
	Debug(msg string, args ...interface{})

	// Info logs an informational message.
	Info(msg string, args ...interface{})

	// Warn logs a warning message.
	Warn(msg string, args ...interface{})

	// Error logs an error message.
	Error(msg string, args ...interface{})

	// With returns a new logger with additional context fields.
	With(args ...interface{}) Logger
}

// SlogAdapter adapts a *slog.Logger to the Logger interface.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates an adapter around logger. A nil logger falls back
// to slog.Default().
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// DefaultLogger returns an adapter writing JSON to standard error. Standard
// output stays reserved for protocol traffic on stdio transports.
func DefaultLogger() *SlogAdapter {
	return NewSlogAdapter(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
}

// NewLogger returns an adapter writing to standard error at the given
// level. format selects the handler: "text" for human-readable output,
// anything else for JSON.
func NewLogger(level, format string) *SlogAdapter {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return NewSlogAdapter(slog.New(handler))
}

// ParseLevel maps a level name to its slog.Level. Unrecognized names map
// to info rather than failing, so a typo in configuration degrades to the
// default verbosity instead of aborting startup.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger returns the underlying *slog.Logger.
func (a *SlogAdapter) Logger() *slog.Logger {
	return a.logger
}

// Debug logs a debug message.
func (a *SlogAdapter) Debug(msg string, args ...interface{}) {
	a.logger.Debug(msg, args...)
}

// Info logs an informational message.
func (a *SlogAdapter) Info(msg string, args ...interface{}) {
	a.logger.Info(msg, args...)
}

// Warn logs a warning message.
func (a *SlogAdapter) Warn(msg string, args ...interface{}) {
	a.logger.Warn(msg, args...)
}

// Error logs an error message.
func (a *SlogAdapter) Error(msg string, args ...interface{}) {
	a.logger.Error(msg, args...)
}

// With returns a new adapter carrying additional context fields.
func (a *SlogAdapter) With(args ...interface{}) Logger {
	return &SlogAdapter{logger: a.logger.With(args...)}
}

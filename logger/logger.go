// Package logger defines the logging contract used across go-axa and provides
// a default implementation built on log/slog.
//
// Components accept a Logger so applications can plug in their own logging
// framework; the NewSlog constructor covers the common case with a JSON
// handler in production and a human-readable console handler during
// development (ENV=development).
package logger

// Level indicates the logging severity.
type Level int8

const (
	// DebugLevel logs are voluminous and usually disabled in production.
	DebugLevel Level = iota - 1
	// InfoLevel is the default logging priority.
	InfoLevel
	// WarnLevel logs flag potential issues that don't need individual review.
	WarnLevel
	// ErrorLevel logs are high-priority failures that require attention.
	ErrorLevel
	// FatalLevel logs a message and then terminates the process.
	FatalLevel
)

// Logger is the common structured logging interface.
//
// Messages carry alternating key-value pairs, slog style.
type Logger interface {
	// Debug logs a message at DebugLevel with optional key-value pairs.
	Debug(msg string, keysAndValues ...any)
	// Info logs a message at InfoLevel with optional key-value pairs.
	Info(msg string, keysAndValues ...any)
	// Warn logs a message at WarnLevel with optional key-value pairs.
	Warn(msg string, keysAndValues ...any)
	// Error logs a message at ErrorLevel with optional key-value pairs.
	Error(msg string, keysAndValues ...any)
	// Fatal logs a message at FatalLevel and then calls os.Exit(1), even if
	// logging at FatalLevel is disabled.
	Fatal(msg string, keysAndValues ...any)
	// With returns a child logger with the given key-value pairs accumulated.
	// Pairs added to the child don't affect the parent, and vice versa.
	With(keysAndValues ...any) Logger
	// Level returns the minimum enabled level.
	Level() Level
	// SetLevel sets the minimum enabled level.
	SetLevel(level Level)
}

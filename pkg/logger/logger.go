// Package logger provides the logging interface shared by all framepace
// components. Implementations may log to console, files, or any combination
// of backends via MultiLogger.
package logger

import (
	"log"
)

// Logger defines the interface for diagnostic logging across framepace.
// The pacing core only ever reports through this interface; it never
// propagates errors (pacing must not abort rendering).
type Logger interface {
	// Info logs an informational message (e.g., "control server started").
	Info(format string, args ...interface{})

	// Warning logs a warning message (e.g., buffer over-acquisition).
	Warning(format string, args ...interface{})

	// Error logs an error message (e.g., "failed to open trace store").
	Error(format string, args ...interface{})

	// Close releases resources held by the logger.
	// Safe to call multiple times. Returns nil for loggers without resources.
	Close() error
}

// StandardLogger wraps the stdlib *log.Logger for console/file output.
type StandardLogger struct {
	logger *log.Logger
}

// NewStandardLogger creates a logger that wraps the given *log.Logger.
func NewStandardLogger(l *log.Logger) *StandardLogger {
	return &StandardLogger{logger: l}
}

// Info logs an informational message with [INFO] prefix.
func (s *StandardLogger) Info(format string, args ...interface{}) {
	s.logger.Printf("[INFO] "+format, args...)
}

// Warning logs a warning message with [WARNING] prefix.
func (s *StandardLogger) Warning(format string, args ...interface{}) {
	s.logger.Printf("[WARNING] "+format, args...)
}

// Error logs an error message with [ERROR] prefix.
func (s *StandardLogger) Error(format string, args ...interface{}) {
	s.logger.Printf("[ERROR] "+format, args...)
}

// Close is a no-op for StandardLogger (no resources to release).
func (s *StandardLogger) Close() error {
	return nil
}

// Ensure StandardLogger satisfies the Logger interface.
var _ Logger = (*StandardLogger)(nil)

// Nop returns a logger that discards everything. Used where a component
// tolerates a nil logger but the call sites are simpler with a real one.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})    {}
func (nopLogger) Warning(string, ...interface{}) {}
func (nopLogger) Error(string, ...interface{})   {}
func (nopLogger) Close() error                   { return nil }

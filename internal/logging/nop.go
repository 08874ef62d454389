// Package logging provides internal logging utilities for mongoguard.
package logging

import "github.com/medhedtech/mongoguard/types"

// NopLogger is a no-op logger that discards all log messages.
//
// This is used as the default logger when no logger is configured,
// avoiding nil checks throughout the codebase.
type NopLogger struct{}

// Compile-time assertions that NopLogger implements the logger interfaces.
var (
	_ types.Logger                = (*NopLogger)(nil)
	_ types.ConnectionEventLogger = (*NopLogger)(nil)
)

// NewNopLogger creates a new no-op logger.
//
// Returns:
//   - *NopLogger: A logger that discards all messages
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

// Debug discards the message.
func (l *NopLogger) Debug(_ string, _ ...any) {}

// Info discards the message.
func (l *NopLogger) Info(_ string, _ ...any) {}

// Warn discards the message.
func (l *NopLogger) Warn(_ string, _ ...any) {}

// Error discards the message.
func (l *NopLogger) Error(_ string, _ ...any) {}

// Fatal discards the message.
//
// Note: Unlike a real logger, this does NOT call os.Exit(1).
// This is intentional for safety in testing and default configurations.
func (l *NopLogger) Fatal(_ string, _ ...any) {}

// ConnectionSuccess discards the event.
func (l *NopLogger) ConnectionSuccess(_ string, _ ...any) {}

// ConnectionError discards the event.
func (l *NopLogger) ConnectionError(_ string, _ error, _ ...any) {}

// ConnectionClosed discards the event.
func (l *NopLogger) ConnectionClosed(_ string, _ ...any) {}

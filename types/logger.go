package types

// Logger is the structured logging interface consumed by mongoguard.
//
// The signature is compatible with zap.SugaredLogger's *w methods: a message
// followed by alternating key/value pairs. A no-op implementation is used
// when no logger is configured, so callers never need nil checks.
type Logger interface {
	// Debug logs a verbose diagnostic message.
	Debug(msg string, keysAndValues ...any)

	// Info logs an informational message.
	Info(msg string, keysAndValues ...any)

	// Warn logs a warning.
	Warn(msg string, keysAndValues ...any)

	// Error logs an error condition.
	Error(msg string, keysAndValues ...any)

	// Fatal logs a fatal condition. Implementations decide whether Fatal
	// terminates the process; mongoguard itself never relies on it exiting.
	Fatal(msg string, keysAndValues ...any)
}

// ConnectionEventLogger is an optional extension of Logger with dedicated
// helpers for connection lifecycle events.
//
// When the configured Logger also implements this interface, the connection
// manager routes lifecycle events through these methods so that sinks can
// format or fan them out differently from ordinary log lines. Otherwise the
// manager falls back to Info/Error/Warn on the plain Logger.
//
// All URI values passed to these methods are already credential-masked by
// the caller.
type ConnectionEventLogger interface {
	// ConnectionSuccess records an established connection.
	ConnectionSuccess(name string, keysAndValues ...any)

	// ConnectionError records a failed connection attempt or a connection
	// level error event.
	ConnectionError(name string, err error, keysAndValues ...any)

	// ConnectionClosed records a closed connection.
	ConnectionClosed(name string, keysAndValues ...any)
}

package zaplog

import (
	"go.uber.org/zap"

	"github.com/medhedtech/mongoguard/types"
)

// Logger adapts a zap.SugaredLogger to the types.Logger interface.
//
// It also implements types.ConnectionEventLogger, so connection lifecycle
// events come through as structured success/error/closed records rather
// than plain Info/Error lines.
type Logger struct {
	sugar *zap.SugaredLogger
}

// Compile-time assertions that Logger implements both logging interfaces.
var (
	_ types.Logger                = (*Logger)(nil)
	_ types.ConnectionEventLogger = (*Logger)(nil)
)

// New wraps a zap.SugaredLogger.
//
// Parameters:
//   - sugar: The sugared logger to delegate to
//
// Returns:
//   - *Logger: An adapter usable with mongoguard.WithLogger
//
// Example:
//
//	base, _ := zap.NewProduction()
//	mgr := mongoguard.NewManager(cfg,
//	    mongoguard.WithLogger(zaplog.New(base.Sugar())),
//	)
func New(sugar *zap.SugaredLogger) *Logger {
	return &Logger{sugar: sugar}
}

// NewDevelopment creates an adapter over a development-mode zap logger.
//
// Returns:
//   - *Logger: An adapter writing human-friendly console output
//   - error: Any error from zap.NewDevelopment
func NewDevelopment() (*Logger, error) {
	base, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}

	return New(base.Sugar()), nil
}

// NewProduction creates an adapter over a production-mode zap logger.
//
// Returns:
//   - *Logger: An adapter writing JSON output
//   - error: Any error from zap.NewProduction
func NewProduction() (*Logger, error) {
	base, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	return New(base.Sugar()), nil
}

// Debug logs a message at debug level with key-value pairs.
func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, keysAndValues...)
}

// Info logs a message at info level with key-value pairs.
func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.sugar.Infow(msg, keysAndValues...)
}

// Warn logs a message at warn level with key-value pairs.
func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.sugar.Warnw(msg, keysAndValues...)
}

// Error logs a message at error level with key-value pairs.
func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// Fatal logs a message at fatal level and calls os.Exit(1).
func (l *Logger) Fatal(msg string, keysAndValues ...any) {
	l.sugar.Fatalw(msg, keysAndValues...)
}

// ConnectionSuccess logs a successful connection at info level.
func (l *Logger) ConnectionSuccess(name string, keysAndValues ...any) {
	kv := append([]any{"connection", name, "event", "connected"}, keysAndValues...)
	l.sugar.Infow("database connection established", kv...)
}

// ConnectionError logs a failed connection attempt at error level.
func (l *Logger) ConnectionError(name string, err error, keysAndValues ...any) {
	kv := append([]any{"connection", name, "event", "error", "error", err}, keysAndValues...)
	l.sugar.Errorw("database connection failed", kv...)
}

// ConnectionClosed logs a closed connection at info level.
func (l *Logger) ConnectionClosed(name string, keysAndValues ...any) {
	kv := append([]any{"connection", name, "event", "closed"}, keysAndValues...)
	l.sugar.Infow("database connection closed", kv...)
}

// Sync flushes any buffered log entries.
//
// Call before process exit to avoid losing the final records.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

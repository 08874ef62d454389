package mongoguard

import (
	"context"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/medhedtech/mongoguard/internal/logging"
	"github.com/medhedtech/mongoguard/internal/metrics"
	"github.com/medhedtech/mongoguard/policy"
	"github.com/medhedtech/mongoguard/types"
)

// SleepFunc suspends the calling goroutine for d, returning early with the
// context error if ctx is cancelled first.
//
// The default implementation uses a timer. Tests inject a recording fake to
// verify backoff schedules deterministically.
type SleepFunc func(ctx context.Context, d time.Duration) error

// sleepContext is the default SleepFunc.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ConnectConfig holds driver-level connection settings.
//
// Zero values are filled in by DefaultConnectConfig / ConnectConfigFromEnv.
// Production environments tune the timeouts and pool bounds upward; see
// ConnectConfigFromEnv.
type ConnectConfig struct {
	// URI is the connection string. Required. Never logged raw; every log
	// line goes through types.MaskURI first.
	URI string

	// Database is the default database name.
	Database string

	// AppName identifies this client in server logs.
	AppName string

	// ReadPreference defaults to primaryPreferred.
	ReadPreference *readpref.ReadPref

	// ServerSelectionTimeout, SocketTimeout and ConnectTimeout bound the
	// driver's own connection steps. All default to 30s (120s production).
	ServerSelectionTimeout time.Duration
	SocketTimeout          time.Duration
	ConnectTimeout         time.Duration

	// MinPoolSize/MaxPoolSize bound the shared connection pool. Defaults:
	// 5 and 10 (15 in production).
	MinPoolSize uint64
	MaxPoolSize uint64

	// MaxConnIdleTime recycles idle pooled connections. Default 60s.
	MaxConnIdleTime time.Duration

	// HeartbeatInterval is the driver's server monitoring cadence.
	// Default 10s.
	HeartbeatInterval time.Duration

	// DebugCommands enables driver command logging at debug level.
	DebugCommands bool
}

// DefaultConnectConfig returns a ConnectConfig with development defaults.
//
// Parameters:
//   - uri: The connection string
//   - database: The default database name
//
// Returns:
//   - ConnectConfig: Configuration with default settings
func DefaultConnectConfig(uri, database string) ConnectConfig {
	return ConnectConfig{
		URI:                    uri,
		Database:               database,
		ReadPreference:         readpref.PrimaryPreferred(),
		ServerSelectionTimeout: 30 * time.Second,
		SocketTimeout:          30 * time.Second,
		ConnectTimeout:         30 * time.Second,
		MinPoolSize:            5,
		MaxPoolSize:            10,
		MaxConnIdleTime:        60 * time.Second,
		HeartbeatInterval:      10 * time.Second,
	}
}

// normalize fills zero fields with defaults.
func (cc ConnectConfig) normalize() ConnectConfig {
	def := DefaultConnectConfig(cc.URI, cc.Database)

	if cc.ReadPreference == nil {
		cc.ReadPreference = def.ReadPreference
	}
	if cc.ServerSelectionTimeout <= 0 {
		cc.ServerSelectionTimeout = def.ServerSelectionTimeout
	}
	if cc.SocketTimeout <= 0 {
		cc.SocketTimeout = def.SocketTimeout
	}
	if cc.ConnectTimeout <= 0 {
		cc.ConnectTimeout = def.ConnectTimeout
	}
	if cc.MinPoolSize == 0 {
		cc.MinPoolSize = def.MinPoolSize
	}
	if cc.MaxPoolSize == 0 {
		cc.MaxPoolSize = def.MaxPoolSize
	}
	if cc.MaxConnIdleTime <= 0 {
		cc.MaxConnIdleTime = def.MaxConnIdleTime
	}
	if cc.HeartbeatInterval <= 0 {
		cc.HeartbeatInterval = def.HeartbeatInterval
	}

	return cc
}

// ClientConfig holds configuration for the connection manager and operation
// executor.
type ClientConfig struct {
	Logger          types.Logger
	Metrics         types.MetricsCollector
	Observer        ConnectionObserver
	Classifier      *policy.Classifier
	ConnectionRetry policy.Retry
	OperationRetry  policy.Retry
	HealthInterval  time.Duration
	ShutdownTimeout time.Duration
	Sleep           SleepFunc

	// ExitFunc is invoked by the shutdown watchdog when the connection
	// cannot be closed in time. Defaults to os.Exit. Injectable for tests.
	ExitFunc func(code int)

	// connect is the driver connect function. Overridden by tests.
	connect connectFunc
}

// DefaultClientConfig returns a ClientConfig with sensible defaults.
//
// Defaults:
//   - Logger: no-op logger
//   - Metrics: no-op collector
//   - ConnectionRetry: policy.DefaultConnectionRetry()
//   - OperationRetry: policy.DefaultOperationRetry()
//   - HealthInterval: 30s
//   - ShutdownTimeout: 30s
//
// Returns:
//   - *ClientConfig: Configuration with default settings
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Logger:          logging.NewNopLogger(),
		Metrics:         metrics.NewNopMetrics(),
		Observer:        NopObserver{},
		ConnectionRetry: policy.DefaultConnectionRetry(),
		OperationRetry:  policy.DefaultOperationRetry(),
		HealthInterval:  30 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		Sleep:           sleepContext,
		ExitFunc:        os.Exit,
		connect:         driverConnect,
	}
}

// Option configures a ClientConfig.
type Option func(*ClientConfig)

// WithLogger sets the structured logger.
//
// If not set, a no-op logger is used that discards all messages.
// The logger interface is compatible with zap.SugaredLogger; see
// contrib/logging/zap for an adapter.
//
// Parameters:
//   - logger: The logger implementation
//
// Returns:
//   - Option: Configuration option
func WithLogger(logger types.Logger) Option {
	return func(c *ClientConfig) {
		c.Logger = logger
	}
}

// WithMetrics sets the metrics collector.
//
// If not set, a no-op collector is used that discards all metrics.
// Use contrib/metrics/vm.New() for VictoriaMetrics integration.
//
// Parameters:
//   - collector: The metrics collector implementation
//
// Returns:
//   - Option: Configuration option
func WithMetrics(collector types.MetricsCollector) Option {
	return func(c *ClientConfig) {
		c.Metrics = collector
	}
}

// WithObserver sets the connection lifecycle observer.
//
// The observer is registered once by the manager; its callbacks are the
// single place connection events surface, replacing scattered listener
// registrations on the driver.
//
// Parameters:
//   - obs: The observer implementation
//
// Returns:
//   - Option: Configuration option
func WithObserver(obs ConnectionObserver) Option {
	return func(c *ClientConfig) {
		c.Observer = obs
	}
}

// WithClassifier sets the error classifier used by the operation executor.
//
// If not set, a classifier with default settings is created, reporting
// fallback-path classifications through the configured logger.
//
// Parameters:
//   - cl: The classifier
//
// Returns:
//   - Option: Configuration option
func WithClassifier(cl *policy.Classifier) Option {
	return func(c *ClientConfig) {
		c.Classifier = cl
	}
}

// WithConnectionRetry sets the retry policy for the connect loop.
//
// Parameters:
//   - r: The retry policy
//
// Returns:
//   - Option: Configuration option
func WithConnectionRetry(r policy.Retry) Option {
	return func(c *ClientConfig) {
		c.ConnectionRetry = r
	}
}

// WithOperationRetry sets the retry policy for data operations.
//
// Parameters:
//   - r: The retry policy
//
// Returns:
//   - Option: Configuration option
func WithOperationRetry(r policy.Retry) Option {
	return func(c *ClientConfig) {
		c.OperationRetry = r
	}
}

// WithHealthCheckInterval sets the health monitor sampling interval.
//
// Default: 30s
//
// Parameters:
//   - d: The interval between samples
//
// Returns:
//   - Option: Configuration option
func WithHealthCheckInterval(d time.Duration) Option {
	return func(c *ClientConfig) {
		c.HealthInterval = d
	}
}

// WithShutdownTimeout sets the graceful shutdown watchdog deadline.
//
// Default: 30s
//
// Parameters:
//   - d: Maximum time to wait for the connection to close
//
// Returns:
//   - Option: Configuration option
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *ClientConfig) {
		c.ShutdownTimeout = d
	}
}

// WithSleepFunc sets the sleep function used between retries.
//
// Intended for tests that need deterministic backoff verification.
//
// Parameters:
//   - fn: The sleep function
//
// Returns:
//   - Option: Configuration option
func WithSleepFunc(fn SleepFunc) Option {
	return func(c *ClientConfig) {
		c.Sleep = fn
	}
}

// WithExitFunc sets the function invoked by the shutdown watchdog.
//
// Default: os.Exit. Tests replace it to observe the forced-exit path.
//
// Parameters:
//   - fn: The exit function
//
// Returns:
//   - Option: Configuration option
func WithExitFunc(fn func(code int)) Option {
	return func(c *ClientConfig) {
		c.ExitFunc = fn
	}
}

// finalize applies defaults to any field left unset by options.
func (c *ClientConfig) finalize() {
	def := DefaultClientConfig()

	if c.Logger == nil {
		c.Logger = def.Logger
	}
	if c.Metrics == nil {
		c.Metrics = def.Metrics
	}
	if c.Observer == nil {
		c.Observer = def.Observer
	}
	if c.Classifier == nil {
		c.Classifier = policy.NewClassifier(policy.WithClassifierLogger(c.Logger))
	}
	if c.ConnectionRetry == (policy.Retry{}) {
		c.ConnectionRetry = def.ConnectionRetry
	}
	if c.OperationRetry == (policy.Retry{}) {
		c.OperationRetry = def.OperationRetry
	}
	if c.HealthInterval <= 0 {
		c.HealthInterval = def.HealthInterval
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = def.ShutdownTimeout
	}
	if c.Sleep == nil {
		c.Sleep = def.Sleep
	}
	if c.ExitFunc == nil {
		c.ExitFunc = def.ExitFunc
	}
	if c.connect == nil {
		c.connect = def.connect
	}
}

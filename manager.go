package mongoguard

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/medhedtech/mongoguard/types"
)

// Manager owns the lifecycle of the single shared database connection:
// initial connect with retry and backoff, observer-based event logging,
// periodic health monitoring, and graceful shutdown with a watchdog.
//
// At most one live Manager exists per process. Executors and collection
// helpers borrow the connection it owns; they never create their own.
//
// # Thread Safety
//
// Manager is safe for concurrent use. State reads are atomic and may happen
// from the health monitor, executors, and shutdown logic while a connect
// loop is in flight.
//
// # Lifecycle
//
//	mgr := mongoguard.NewManager(cfg, opts...)
//	if err := mgr.Connect(ctx); err != nil {
//	    // The manager never exits the process on its own; the caller
//	    // decides whether to run without a database or abort.
//	}
//	defer mgr.Shutdown(context.Background())
type Manager struct {
	cc     ConnectConfig
	config *ClientConfig

	state  atomic.Int32 // types.ConnState
	closed atomic.Bool

	// degraded is set while server heartbeats are failing.
	degraded atomic.Bool

	mu     sync.Mutex
	client driverClient

	monitor *HealthMonitor
}

// NewManager creates a connection manager.
//
// The returned manager is disconnected; call Connect to establish the
// connection.
//
// Parameters:
//   - cc: Driver-level connection settings (zero fields get defaults)
//   - opts: Optional configuration options
//
// Returns:
//   - *Manager: A new manager in the disconnected state
func NewManager(cc ConnectConfig, opts ...Option) *Manager {
	config := DefaultClientConfig()
	for _, opt := range opts {
		opt(config)
	}
	config.finalize()

	m := &Manager{
		cc:     cc.normalize(),
		config: config,
	}
	m.monitor = newHealthMonitor(m)

	return m
}

// State returns the current connection state.
func (m *Manager) State() types.ConnState {
	return types.ConnState(m.state.Load())
}

func (m *Manager) setState(s types.ConnState) {
	m.state.Store(int32(s))
	m.config.Metrics.SetConnectionState(s)
}

// casState publishes a state transition only when the current state is from.
// Lifecycle races (a Shutdown overtaking a connect loop) are decided by who
// wins the swap.
func (m *Manager) casState(from, to types.ConnState) bool {
	if !m.state.CompareAndSwap(int32(from), int32(to)) {
		return false
	}
	m.config.Metrics.SetConnectionState(to)

	return true
}

// Connect establishes the shared connection, retrying with capped
// exponential backoff per the configured connection policy.
//
// An empty URI fails immediately with *types.ConfigError: no amount of
// retrying will produce one. Transient failures are retried; when retries
// are exhausted the terminal error is wrapped in *types.ConnectionError and
// returned. The manager never exits the process — callers wanting fail-open
// behavior catch and ignore the error.
//
// Only the disconnected state may start a connect loop, so a second Connect
// racing the first (or a live connection) is rejected with
// types.ErrAlreadyConnected. A Shutdown issued while the loop is dialing or
// sleeping wins: the loop observes the closure, tears down any connection it
// just established, and returns types.ErrClientClosed.
//
// On success the state transitions to connected, a success event is logged
// with host, database and port (never credentials), the observer fires
// OnConnected, and the health monitor starts.
//
// Parameters:
//   - ctx: Context for cancellation; aborts the retry loop between attempts
//
// Returns:
//   - error: nil on success; *types.ConfigError, *types.ConnectionError,
//     types.ErrAlreadyConnected, types.ErrClientClosed, or ctx.Err()
func (m *Manager) Connect(ctx context.Context) error {
	if m.closed.Load() {
		return types.ErrClientClosed
	}
	if strings.TrimSpace(m.cc.URI) == "" {
		return &types.ConfigError{Field: "uri", Reason: "connection URI is empty, set MONGODB_URI"}
	}

	if !m.casState(types.StateDisconnected, types.StateConnecting) {
		return types.ErrAlreadyConnected
	}

	pol := m.config.ConnectionRetry
	masked := types.MaskURI(m.cc.URI)
	host, port := hostPort(m.cc.URI)

	var lastErr error
	for attempt := 0; ; attempt++ {
		// A completed Shutdown must not be undone by a late attempt.
		if m.closed.Load() {
			return types.ErrClientClosed
		}

		m.config.Metrics.IncConnectAttempt()

		client, err := m.tryConnect(ctx)
		if err == nil {
			m.mu.Lock()
			m.client = client
			m.mu.Unlock()

			if !m.casState(types.StateConnecting, types.StateConnected) {
				// Shutdown moved the state while the dial was in flight;
				// tear down the connection it may not have seen.
				m.mu.Lock()
				owned := m.client == client
				if owned {
					m.client = nil
				}
				m.mu.Unlock()
				if owned {
					_ = client.Disconnect(context.Background())
				}

				return types.ErrClientClosed
			}

			m.logConnectionSuccess("mongodb",
				"host", host,
				"database", m.cc.Database,
				"port", port,
			)
			m.config.Observer.OnConnected(host, m.cc.Database)
			m.monitor.Start()

			return nil
		}

		lastErr = err
		m.config.Metrics.IncConnectFailure()
		m.logConnectionError("mongodb", err,
			"uri", masked,
			"attempt", attempt,
		)
		m.config.Observer.OnError(err)

		if attempt >= pol.MaxRetries {
			m.casState(types.StateConnecting, types.StateDisconnected)

			return &types.ConnectionError{Attempts: attempt + 1, Cause: lastErr}
		}

		delay := pol.Delay(attempt)
		m.config.Logger.Warn("retrying database connection",
			"delay", delay.String(),
			"attempt", attempt+1,
			"max_retries", pol.MaxRetries,
		)
		if err := m.config.Sleep(ctx, delay); err != nil {
			m.casState(types.StateConnecting, types.StateDisconnected)

			return err
		}
	}
}

// tryConnect performs a single connect attempt followed by a liveness ping.
// A client that connects but fails the ping is torn down before returning.
func (m *Manager) tryConnect(ctx context.Context) (driverClient, error) {
	connectCtx, cancel := context.WithTimeout(ctx, m.cc.ConnectTimeout)
	defer cancel()

	client, err := m.config.connect(connectCtx, m.clientOptions())
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := client.Ping(connectCtx, m.cc.ReadPreference); err != nil {
		if discErr := client.Disconnect(context.Background()); discErr != nil {
			m.config.Logger.Error("disconnect after failed ping",
				"error", discErr.Error(),
			)
		}

		return nil, fmt.Errorf("ping: %w", err)
	}

	return client, nil
}

// Health probes the connection.
//
// The state read is synchronous; when the state is connected an inexpensive
// round-trip ping is issued as well, so a connection whose state claims
// connected but whose server is gone ("zombie") reports unhealthy.
//
// Parameters:
//   - ctx: Context bounding the liveness ping
//
// Returns:
//   - types.HealthStatus: The probe result
func (m *Manager) Health(ctx context.Context) types.HealthStatus {
	host, _ := hostPort(m.cc.URI)
	status := types.HealthStatus{
		State:     m.State(),
		Host:      host,
		Database:  m.cc.Database,
		Timestamp: time.Now(),
	}

	if status.State != types.StateConnected {
		m.config.Metrics.SetHealthy(false)

		return status
	}

	m.mu.Lock()
	client := m.client
	m.mu.Unlock()

	if client == nil {
		m.config.Metrics.SetHealthy(false)

		return status
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, m.cc.ReadPreference); err != nil {
		status.Err = err
		m.config.Metrics.SetHealthy(false)

		return status
	}

	status.Healthy = true
	m.config.Metrics.SetHealthy(true)

	return status
}

// Shutdown gracefully closes the connection.
//
// The health monitor is stopped, the pool is drained via Disconnect, and a
// closure event is logged with {reason: shutdown, graceful: true}. A
// watchdog bounds the close step: if Disconnect has not returned within the
// configured ShutdownTimeout (default 30s), a fatal message is logged and
// the configured exit function is invoked — in-flight operations at that
// point fail with a connection-closed error, which callers must treat as
// non-recoverable.
//
// Shutdown is idempotent; calls after the first return nil immediately.
//
// Parameters:
//   - ctx: Context for the caller's own cancellation bookkeeping
//
// Returns:
//   - error: nil on graceful close, the Disconnect error otherwise
func (m *Manager) Shutdown(ctx context.Context) error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	if m.State() == types.StateDisconnected {
		return nil
	}

	m.setState(types.StateDisconnecting)
	m.monitor.Stop()

	m.mu.Lock()
	client := m.client
	m.client = nil
	m.mu.Unlock()

	if client == nil {
		m.setState(types.StateDisconnected)

		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- client.Disconnect(context.Background())
	}()

	watchdog := time.NewTimer(m.config.ShutdownTimeout)
	defer watchdog.Stop()

	select {
	case err := <-done:
		m.setState(types.StateDisconnected)
		if err != nil {
			m.logConnectionError("mongodb", err, "reason", "shutdown")

			return err
		}
		m.logConnectionClosed("mongodb",
			"reason", "shutdown",
			"graceful", true,
		)
		m.config.Observer.OnDisconnected()

		return nil

	case <-watchdog.C:
		m.config.Logger.Fatal("could not close connections in time, forcing shutdown",
			"timeout", m.config.ShutdownTimeout.String(),
		)
		m.config.ExitFunc(1)

		// Reached only when ExitFunc does not terminate (tests).
		return fmt.Errorf("mongoguard: shutdown watchdog expired after %s", m.config.ShutdownTimeout)
	}
}

// Database returns a handle to the configured default database.
//
// Returns nil while disconnected.
func (m *Manager) Database() *mongo.Database {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return nil
	}

	return m.client.Database(m.cc.Database)
}

// Collection returns a handle to a collection in the default database.
//
// Returns nil while disconnected.
func (m *Manager) Collection(name string, opts ...*options.CollectionOptions) *mongo.Collection {
	db := m.Database()
	if db == nil {
		return nil
	}

	return db.Collection(name, opts...)
}

// handleHeartbeatSuccess restores a degraded connection.
func (m *Manager) handleHeartbeatSuccess() {
	if m.degraded.CompareAndSwap(true, false) {
		m.config.Metrics.IncReconnect()
		m.config.Logger.Info("database heartbeat recovered")
		m.config.Observer.OnReconnected()
	}
}

// handleHeartbeatFailure records the start of a degraded period. Only the
// first failure of a streak is surfaced; the health monitor keeps warning
// while the degradation lasts.
func (m *Manager) handleHeartbeatFailure(err error) {
	if m.degraded.CompareAndSwap(false, true) {
		m.logConnectionError("mongodb", err, "event", "heartbeat_failed")
		m.config.Observer.OnError(err)
	}
}

// logConnectionSuccess routes through ConnectionEventLogger when available.
func (m *Manager) logConnectionSuccess(name string, keysAndValues ...any) {
	if cel, ok := m.config.Logger.(types.ConnectionEventLogger); ok {
		cel.ConnectionSuccess(name, keysAndValues...)

		return
	}
	m.config.Logger.Info("database connection established", keysAndValues...)
}

// logConnectionError routes through ConnectionEventLogger when available.
func (m *Manager) logConnectionError(name string, err error, keysAndValues ...any) {
	if cel, ok := m.config.Logger.(types.ConnectionEventLogger); ok {
		cel.ConnectionError(name, err, keysAndValues...)

		return
	}
	m.config.Logger.Error("database connection error",
		append([]any{"error", err.Error()}, keysAndValues...)...)
}

// logConnectionClosed routes through ConnectionEventLogger when available.
func (m *Manager) logConnectionClosed(name string, keysAndValues ...any) {
	if cel, ok := m.config.Logger.(types.ConnectionEventLogger); ok {
		cel.ConnectionClosed(name, keysAndValues...)

		return
	}
	m.config.Logger.Info("database connection closed", keysAndValues...)
}

// hostPort extracts the host and port from a connection URI for logging.
// Credentials are dropped, never returned.
func hostPort(uri string) (host, port string) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", ""
	}

	return u.Hostname(), u.Port()
}

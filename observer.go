package mongoguard

// ConnectionObserver receives connection lifecycle events.
//
// The manager registers exactly one observer at construction time and routes
// every lifecycle transition through it, so event handling policy lives in
// one place instead of ad hoc listener registrations on the driver.
//
// Callbacks may fire from the connect loop, the driver's heartbeat
// goroutines, the health monitor, and shutdown; implementations must be safe
// for concurrent use and must not block.
type ConnectionObserver interface {
	// OnConnected fires when the initial connection is established.
	//
	// Parameters:
	//   - host: The server host (no credentials)
	//   - database: The default database name
	OnConnected(host, database string)

	// OnError fires on a failed connect attempt and on the first heartbeat
	// failure of a degraded period.
	//
	// Parameters:
	//   - err: The underlying error
	OnError(err error)

	// OnDisconnected fires when the connection is closed.
	OnDisconnected()

	// OnReconnected fires when server heartbeats recover after a degraded
	// period, or when the health monitor observes a recovery.
	OnReconnected()
}

// NopObserver ignores all connection events. Used as the default so the
// manager never needs nil checks.
type NopObserver struct{}

// Compile-time assertion that NopObserver implements ConnectionObserver.
var _ ConnectionObserver = NopObserver{}

// OnConnected ignores the event.
func (NopObserver) OnConnected(_, _ string) {}

// OnError ignores the event.
func (NopObserver) OnError(_ error) {}

// OnDisconnected ignores the event.
func (NopObserver) OnDisconnected() {}

// OnReconnected ignores the event.
func (NopObserver) OnReconnected() {}

package types

// MetricsCollector defines methods for collecting operational metrics.
//
// Implementations must be safe for concurrent use; methods are called from
// the operation executor, the connection manager, and the health monitor
// simultaneously.
//
// Example usage with VictoriaMetrics (via contrib/metrics/vm):
//
//	collector := vm.New(vm.WithPrefix("medh"))
//	mgr := mongoguard.NewManager(cfg, mongoguard.WithMetrics(collector))
//
//	// Expose metrics via HTTP
//	http.HandleFunc("/metrics", collector.Handler)
type MetricsCollector interface {
	// ----------------------
	// Operations
	// ----------------------

	// IncOperationTotal increments the total operations counter for the
	// named operation (e.g. "Course.findOne").
	IncOperationTotal(op string)

	// IncOperationError increments the terminal-failure counter for the
	// named operation. Counted once per executor call, not per attempt.
	IncOperationError(op string)

	// IncOperationRetry increments the retry counter. Counted once per
	// re-attempt, so a call that succeeds on attempt 3 adds 2.
	IncOperationRetry(op string)

	// IncOperationTimeout increments the per-attempt timeout counter.
	IncOperationTimeout(op string)

	// ObserveOperationDuration records the total wall-clock duration of an
	// executor call in seconds, retries included.
	ObserveOperationDuration(op string, seconds float64)

	// ----------------------
	// Connection
	// ----------------------

	// SetConnectionState sets the connection state gauge.
	// Values follow ConnState: 0=disconnected, 1=connecting, 2=connected,
	// 3=disconnecting.
	SetConnectionState(state ConnState)

	// IncConnectAttempt increments the connect attempt counter.
	IncConnectAttempt()

	// IncConnectFailure increments the failed connect attempt counter.
	IncConnectFailure()

	// IncReconnect increments the reconnect counter. Fired when the health
	// monitor observes a recovery after a degraded period.
	IncReconnect()

	// SetHealthy sets the health gauge (1 healthy, 0 not).
	SetHealthy(healthy bool)
}

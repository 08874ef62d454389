// Package mongoguard provides a resilient MongoDB data-access layer:
// connection lifecycle management with retry and backoff, a generic
// per-operation retry/timeout wrapper with error classification, periodic
// health monitoring, and graceful shutdown with a watchdog.
//
// It is the database layer of a learning-platform backend; route handlers
// and domain services consume it through the operation executor and the
// typed collection helpers, never through the driver directly.
//
// # Basic Usage
//
//	cfg, err := mongoguard.ConnectConfigFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	mgr := mongoguard.NewManager(cfg,
//	    mongoguard.WithLogger(logger),
//	)
//	if err := mgr.Connect(ctx); err != nil {
//	    // Startup decides: run without a database or abort. The library
//	    // propagates the error and never exits the process itself.
//	    log.Fatal(err)
//	}
//	defer mgr.Shutdown(context.Background())
//
//	ex := mongoguard.NewExecutor(mgr)
//	courses := mongoguard.NewCollection[Course](ex, "Course", "courses")
//
//	course, err := courses.FindByID(ctx, id)
//
// # Retry Semantics
//
// Every operation issued through an Executor runs under a bounded retry
// loop with capped exponential backoff and a per-attempt timeout. Errors
// are classified before retrying:
//
//   - Transient failures (network resets, timeouts, server selection
//     failures, not-yet-connected states) are retried. Unknown errors
//     default to retryable, favoring availability.
//   - Terminal failures (validation failures, duplicate keys, bad
//     ObjectIDs, document-not-found, write conflicts) surface immediately
//     and untouched.
//
// Retries are invisible to the caller except through logs and metrics: an
// Execute call always ends in either a result or a classified error within
// a bounded number of attempts and bounded wall-clock time.
//
// # Connection Lifecycle
//
// Manager.Connect retries with the connection policy (default: 6 total
// attempts, delays 1s, 2s, 4s, 8s, 16s) and propagates the terminal error
// when exhausted. Connection URIs are credential-masked before every log
// call. A background health monitor samples the state every 30s and warns
// while degraded. Manager.Shutdown drains the pool under a 30s watchdog
// that forces process exit if closing hangs.
//
// # Errors
//
// Sentinel and structured errors live in the types package. Check them
// with the standard errors helpers:
//
//	if errors.Is(err, types.ErrNotConnected) { ... }
//
//	var te *types.TimeoutError
//	if errors.As(err, &te) { ... }
//
// # Observability
//
// Logging and metrics are interfaces (types.Logger, with an optional
// connection-event extension, and types.MetricsCollector); no-op
// implementations are the defaults. Adapters for zap and VictoriaMetrics
// live under contrib/.
package mongoguard

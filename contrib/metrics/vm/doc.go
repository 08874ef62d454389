// Package vm provides a VictoriaMetrics-based implementation of the MetricsCollector interface.
//
// This package uses github.com/VictoriaMetrics/metrics for lightweight,
// high-performance Prometheus-compatible metrics collection.
//
// # Basic Usage
//
// Create a collector with default prefix "mongoguard":
//
//	collector := vm.New()
//	mgr := mongoguard.NewManager(cfg,
//	    mongoguard.WithMetrics(collector),
//	)
//
// # Custom Prefix
//
// Use WithPrefix to customize the metric name prefix:
//
//	collector := vm.New(vm.WithPrefix("medh"))
//
// This produces metrics like:
//   - medh_operation_total{op="Course.findOne"}
//   - medh_connect_attempts_total
//
// # Exposing Metrics
//
// Use the Handler method to expose metrics via HTTP:
//
//	http.HandleFunc("/metrics", collector.Handler)
//	http.ListenAndServe(":8080", nil)
//
// Or use WritePrometheus to write metrics to a custom writer:
//
//	collector.WritePrometheus(w)
//
// # Metrics Provided
//
// Operations:
//   - {prefix}_operation_total{op} - Counter of executor calls
//   - {prefix}_operation_errors_total{op} - Counter of terminal failures
//   - {prefix}_operation_retries_total{op} - Counter of retried attempts
//   - {prefix}_operation_timeouts_total{op} - Counter of per-attempt timeouts
//   - {prefix}_operation_duration_seconds{op} - Histogram of call latencies
//
// Connection:
//   - {prefix}_connect_attempts_total - Counter of connection attempts
//   - {prefix}_connect_failures_total - Counter of failed attempts
//   - {prefix}_reconnects_total - Counter of recoveries after degradation
//   - {prefix}_connection_state - Gauge of the lifecycle state
//     (0=disconnected, 1=connecting, 2=connected, 3=disconnecting)
//   - {prefix}_healthy - Gauge (1=healthy, 0=degraded)
//
// # Performance Notes
//
// Connection metrics are pre-created at initialization time using the
// NewXXX pattern for optimal performance in hot paths, as recommended by
// the VictoriaMetrics documentation. Operation metrics carry an op label
// and use GetOrCreateXXX, since operation names are not known up front.
//
// The metrics are registered with a dedicated Set that is registered
// globally, allowing standard Prometheus scraping.
package vm

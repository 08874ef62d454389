package vm

import (
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"

	"github.com/medhedtech/mongoguard/types"
)

// Option configures a Collector.
type Option func(*Collector)

// WithPrefix sets the metric name prefix.
//
// Default: "mongoguard"
//
// Parameters:
//   - prefix: The prefix to use for all metric names
//
// Returns:
//   - Option: A configuration option
func WithPrefix(prefix string) Option {
	return func(c *Collector) {
		c.prefix = prefix
	}
}

// WithMetricsSet sets the metrics set to use.
//
// If provided, the collector registers metrics with this set instead of
// creating a new one. The caller is responsible for exposing this set
// (e.g., via metrics.WritePrometheus or a custom handler).
//
// Parameters:
//   - set: The metrics set to use
//
// Returns:
//   - Option: A configuration option
func WithMetricsSet(set *metrics.Set) Option {
	return func(c *Collector) {
		c.set = set
	}
}

// Collector implements types.MetricsCollector using VictoriaMetrics.
//
// Connection metrics are pre-created at initialization time. Operation
// metrics carry an op label and are created on first use per operation
// name. Thread-safe for concurrent use.
type Collector struct {
	set    *metrics.Set
	prefix string

	// Connection metrics
	connState       atomic.Int64
	healthy         atomic.Int64
	connectAttempts *metrics.Counter
	connectFailures *metrics.Counter
	reconnects      *metrics.Counter
}

// Compile-time assertion that Collector implements types.MetricsCollector.
var _ types.MetricsCollector = (*Collector)(nil)

// New creates a new VictoriaMetrics-based metrics collector.
//
// The collector creates its own metrics.Set and registers it globally
// unless WithMetricsSet provides one.
//
// Parameters:
//   - opts: Configuration options (e.g., WithPrefix)
//
// Returns:
//   - *Collector: A new metrics collector ready for use
//
// Example:
//
//	collector := vm.New(vm.WithPrefix("medh"))
//	mgr := mongoguard.NewManager(cfg, mongoguard.WithMetrics(collector))
func New(opts ...Option) *Collector {
	c := &Collector{
		prefix: "mongoguard",
	}

	for _, opt := range opts {
		opt(c)
	}

	// If no set is provided, create a new one and register it globally.
	// If a set is provided, we assume the caller manages it.
	if c.set == nil {
		c.set = metrics.NewSet()
		metrics.RegisterSet(c.set)
	}

	c.initMetrics()

	return c
}

// initMetrics pre-creates the connection metrics with the configured prefix.
func (c *Collector) initMetrics() {
	p := c.prefix

	c.connectAttempts = c.set.NewCounter(p + "_connect_attempts_total")
	c.connectFailures = c.set.NewCounter(p + "_connect_failures_total")
	c.reconnects = c.set.NewCounter(p + "_reconnects_total")

	c.set.NewGauge(p+"_connection_state", func() float64 {
		return float64(c.connState.Load())
	})
	c.set.NewGauge(p+"_healthy", func() float64 {
		return float64(c.healthy.Load())
	})
}

// Set returns the underlying metrics set.
func (c *Collector) Set() *metrics.Set {
	return c.set
}

// Handler returns metrics in Prometheus format over HTTP.
//
// Example:
//
//	http.HandleFunc("/metrics", collector.Handler)
func (c *Collector) Handler(w http.ResponseWriter, _ *http.Request) {
	c.set.WritePrometheus(w)
}

// WritePrometheus writes all metrics in Prometheus format to the given writer.
//
// Parameters:
//   - w: The writer to write metrics to
func (c *Collector) WritePrometheus(w io.Writer) {
	c.set.WritePrometheus(w)
}

// ----------------------
// Operations
// ----------------------

// IncOperationTotal increments the total operations counter.
func (c *Collector) IncOperationTotal(op string) {
	c.set.GetOrCreateCounter(fmt.Sprintf(`%s_operation_total{op=%q}`, c.prefix, op)).Inc()
}

// IncOperationError increments the terminal-failure counter.
func (c *Collector) IncOperationError(op string) {
	c.set.GetOrCreateCounter(fmt.Sprintf(`%s_operation_errors_total{op=%q}`, c.prefix, op)).Inc()
}

// IncOperationRetry increments the retry counter.
func (c *Collector) IncOperationRetry(op string) {
	c.set.GetOrCreateCounter(fmt.Sprintf(`%s_operation_retries_total{op=%q}`, c.prefix, op)).Inc()
}

// IncOperationTimeout increments the per-attempt timeout counter.
func (c *Collector) IncOperationTimeout(op string) {
	c.set.GetOrCreateCounter(fmt.Sprintf(`%s_operation_timeouts_total{op=%q}`, c.prefix, op)).Inc()
}

// ObserveOperationDuration records the total duration of an executor call.
func (c *Collector) ObserveOperationDuration(op string, seconds float64) {
	c.set.GetOrCreateHistogram(fmt.Sprintf(`%s_operation_duration_seconds{op=%q}`, c.prefix, op)).Update(seconds)
}

// ----------------------
// Connection
// ----------------------

// SetConnectionState sets the connection state gauge.
func (c *Collector) SetConnectionState(state types.ConnState) {
	c.connState.Store(int64(state))
}

// IncConnectAttempt increments the connect attempt counter.
func (c *Collector) IncConnectAttempt() {
	c.connectAttempts.Inc()
}

// IncConnectFailure increments the failed connect attempt counter.
func (c *Collector) IncConnectFailure() {
	c.connectFailures.Inc()
}

// IncReconnect increments the reconnect counter.
func (c *Collector) IncReconnect() {
	c.reconnects.Inc()
}

// SetHealthy sets the health gauge.
func (c *Collector) SetHealthy(healthy bool) {
	if healthy {
		c.healthy.Store(1)
	} else {
		c.healthy.Store(0)
	}
}

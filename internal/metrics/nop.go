// Package metrics provides internal metrics utilities for mongoguard.
package metrics

import "github.com/medhedtech/mongoguard/types"

// NopMetrics is a no-op metrics collector that discards all metrics.
//
// This is used as the default metrics collector when no collector is
// configured, avoiding nil checks throughout the codebase.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements types.MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNopMetrics creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A collector that discards all metrics
func NewNopMetrics() *NopMetrics {
	return &NopMetrics{}
}

// ----------------------
// Operations
// ----------------------

// IncOperationTotal discards the metric.
func (m *NopMetrics) IncOperationTotal(_ string) {}

// IncOperationError discards the metric.
func (m *NopMetrics) IncOperationError(_ string) {}

// IncOperationRetry discards the metric.
func (m *NopMetrics) IncOperationRetry(_ string) {}

// IncOperationTimeout discards the metric.
func (m *NopMetrics) IncOperationTimeout(_ string) {}

// ObserveOperationDuration discards the metric.
func (m *NopMetrics) ObserveOperationDuration(_ string, _ float64) {}

// ----------------------
// Connection
// ----------------------

// SetConnectionState discards the metric.
func (m *NopMetrics) SetConnectionState(_ types.ConnState) {}

// IncConnectAttempt discards the metric.
func (m *NopMetrics) IncConnectAttempt() {}

// IncConnectFailure discards the metric.
func (m *NopMetrics) IncConnectFailure() {}

// IncReconnect discards the metric.
func (m *NopMetrics) IncReconnect() {}

// SetHealthy discards the metric.
func (m *NopMetrics) SetHealthy(_ bool) {}

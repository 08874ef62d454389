package mongoguard

import "github.com/medhedtech/mongoguard/types"

// Type aliases re-exported from the types package, so callers can name the
// common types without importing it.
type (
	ConnState        = types.ConnState
	HealthStatus     = types.HealthStatus
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
)

// Connection state constants re-exported alongside the ConnState alias.
const (
	StateDisconnected  = types.StateDisconnected
	StateConnecting    = types.StateConnecting
	StateConnected     = types.StateConnected
	StateDisconnecting = types.StateDisconnecting
)

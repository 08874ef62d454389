package mongoguard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medhedtech/mongoguard/types"
)

func TestHealthMonitor_StartStop(t *testing.T) {
	mgr, _ := newTestManager(WithHealthCheckInterval(10 * time.Millisecond))
	hm := newHealthMonitor(mgr)

	require.NoError(t, hm.Start())
	assert.True(t, hm.IsRunning())

	assert.ErrorIs(t, hm.Start(), types.ErrMonitorRunning)

	hm.Stop()
	assert.False(t, hm.IsRunning())

	// Stop is idempotent.
	hm.Stop()
}

func TestHealthMonitor_WarnsWhileDegraded(t *testing.T) {
	logger := &recordLogger{}
	mgr, _ := newTestManager(
		WithLogger(logger),
		WithHealthCheckInterval(5*time.Millisecond),
	)
	hm := newHealthMonitor(mgr)

	// Disconnected state: every sample warns.
	require.NoError(t, hm.Start())
	defer hm.Stop()

	require.Eventually(t, func() bool {
		return logger.count("warn", "database connection is not healthy") >= 2
	}, time.Second, time.Millisecond)
}

func TestHealthMonitor_LogsRecoveryOnce(t *testing.T) {
	logger := &recordLogger{}
	obs := &recordObserver{}
	mgr, _ := newTestManager(
		WithLogger(logger),
		WithObserver(obs),
	)
	hm := newHealthMonitor(mgr)

	// Degraded sample, then two healthy ones. Driven directly so the test
	// does not depend on ticker timing.
	hm.sample()
	require.GreaterOrEqual(t, logger.count("warn", "database connection is not healthy"), 1)

	mgr.setState(types.StateConnected)
	hm.sample()
	hm.sample()

	assert.Equal(t, 1, logger.count("info", "database connection recovered"))

	_, _, reconnected, _ := obs.snapshot()
	assert.Equal(t, 1, reconnected)
}

func TestHealthMonitor_StopsWithManagerShutdown(t *testing.T) {
	mgr, _ := newTestManager(WithHealthCheckInterval(5 * time.Millisecond))
	require.NoError(t, mgr.Connect(context.Background()))
	require.True(t, mgr.monitor.IsRunning())

	require.NoError(t, mgr.Shutdown(context.Background()))
	assert.False(t, mgr.monitor.IsRunning())
}

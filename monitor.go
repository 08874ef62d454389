package mongoguard

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/medhedtech/mongoguard/types"
)

// HealthMonitor periodically samples the connection state and logs
// degradation. It runs independently of, and concurrently with, any
// in-flight retry loop in the manager or an executor.
//
// The monitor is started by Manager.Connect and stopped by
// Manager.Shutdown; it is not restartable after Stop.
type HealthMonitor struct {
	manager *Manager
	stopCh  chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool

	// degraded tracks whether the previous sample was unhealthy, so the
	// recovery transition is logged exactly once.
	degraded atomic.Bool
}

// newHealthMonitor creates a monitor bound to a manager. The sampling
// interval comes from the manager's configuration.
func newHealthMonitor(m *Manager) *HealthMonitor {
	return &HealthMonitor{
		manager: m,
		stopCh:  make(chan struct{}),
	}
}

// Start begins sampling in a background goroutine.
//
// Returns:
//   - error: types.ErrMonitorRunning if already started
func (hm *HealthMonitor) Start() error {
	if !hm.running.CompareAndSwap(false, true) {
		return types.ErrMonitorRunning
	}

	hm.wg.Add(1)
	go hm.loop()

	return nil
}

// Stop signals the sampling goroutine and waits for it to finish.
func (hm *HealthMonitor) Stop() {
	if !hm.running.CompareAndSwap(true, false) {
		return
	}

	close(hm.stopCh)
	hm.wg.Wait()
}

// IsRunning returns whether the monitor is currently running.
func (hm *HealthMonitor) IsRunning() bool {
	return hm.running.Load()
}

func (hm *HealthMonitor) loop() {
	defer hm.wg.Done()

	ticker := time.NewTicker(hm.manager.config.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-hm.stopCh:
			return
		case <-ticker.C:
			hm.sample()
		}
	}
}

// sample takes one reading of the connection state.
func (hm *HealthMonitor) sample() {
	state := hm.manager.State()

	if state != types.StateConnected {
		hm.degraded.Store(true)
		hm.manager.config.Metrics.SetHealthy(false)
		hm.manager.config.Logger.Warn("database connection is not healthy",
			"state", state.String(),
		)

		return
	}

	if hm.degraded.Swap(false) {
		hm.manager.config.Metrics.IncReconnect()
		hm.manager.config.Logger.Info("database connection recovered",
			"state", state.String(),
		)
		hm.manager.config.Observer.OnReconnected()
	}

	hm.manager.config.Metrics.SetHealthy(true)
}

package mongoguard

import (
	"context"
	"net"

	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// driverClient is the slice of *mongo.Client the manager depends on.
// Tests substitute a fake through the config's connect function.
type driverClient interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
	Disconnect(ctx context.Context) error
	Database(name string, opts ...*options.DatabaseOptions) *mongo.Database
}

// connectFunc establishes a driver connection. The default implementation
// dials MongoDB; tests inject failures and fakes here.
type connectFunc func(ctx context.Context, opts *options.ClientOptions) (driverClient, error)

// driverConnect is the production connectFunc.
func driverConnect(ctx context.Context, opts *options.ClientOptions) (driverClient, error) {
	return mongo.Connect(ctx, opts)
}

// ipv4Dialer forces tcp4. Dual-stack hosts with broken IPv6 routes otherwise
// stall server selection until the selection timeout.
type ipv4Dialer struct {
	d net.Dialer
}

// DialContext implements options.ContextDialer.
func (d *ipv4Dialer) DialContext(ctx context.Context, _, address string) (net.Conn, error) {
	return d.d.DialContext(ctx, "tcp4", address)
}

// clientOptions translates a ConnectConfig into driver options and registers
// the manager's heartbeat monitor.
func (m *Manager) clientOptions() *options.ClientOptions {
	cc := m.cc

	opts := options.Client().
		ApplyURI(cc.URI).
		SetServerSelectionTimeout(cc.ServerSelectionTimeout).
		SetSocketTimeout(cc.SocketTimeout).
		SetConnectTimeout(cc.ConnectTimeout).
		SetMinPoolSize(cc.MinPoolSize).
		SetMaxPoolSize(cc.MaxPoolSize).
		SetMaxConnIdleTime(cc.MaxConnIdleTime).
		SetHeartbeatInterval(cc.HeartbeatInterval).
		SetWriteConcern(writeconcern.Majority()).
		SetReadConcern(readconcern.Majority()).
		SetReadPreference(cc.ReadPreference).
		SetRetryWrites(true).
		SetRetryReads(true).
		SetDialer(&ipv4Dialer{}).
		SetServerMonitor(&event.ServerMonitor{
			ServerHeartbeatSucceeded: func(_ *event.ServerHeartbeatSucceededEvent) {
				m.handleHeartbeatSuccess()
			},
			ServerHeartbeatFailed: func(e *event.ServerHeartbeatFailedEvent) {
				m.handleHeartbeatFailure(e.Failure)
			},
		})

	if cc.AppName != "" {
		opts = opts.SetAppName(cc.AppName)
	}

	if cc.DebugCommands {
		logger := m.config.Logger
		opts = opts.SetMonitor(&event.CommandMonitor{
			Started: func(_ context.Context, e *event.CommandStartedEvent) {
				logger.Debug("driver command started",
					"command", e.CommandName,
					"database", e.DatabaseName,
					"request_id", e.RequestID,
				)
			},
			Failed: func(_ context.Context, e *event.CommandFailedEvent) {
				logger.Debug("driver command failed",
					"command", e.CommandName,
					"duration", e.Duration.String(),
					"failure", e.Failure,
				)
			},
		})
	}

	return opts
}

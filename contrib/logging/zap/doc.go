// Package zaplog adapts go.uber.org/zap to the mongoguard logging interfaces.
//
// The adapter implements both types.Logger and types.ConnectionEventLogger,
// so connection lifecycle events carry structured connection/event fields.
//
// # Basic Usage
//
//	logger, err := zaplog.NewProduction()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	mgr := mongoguard.NewManager(cfg,
//	    mongoguard.WithLogger(logger),
//	)
//
// An existing sugared logger can be wrapped directly:
//
//	logger := zaplog.New(base.Sugar())
package zaplog

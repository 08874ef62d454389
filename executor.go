package mongoguard

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medhedtech/mongoguard/types"
)

// Operation is a single asynchronous data operation executed against the
// shared connection. The context carries the per-attempt deadline; a
// well-behaved operation threads it into the driver call.
type Operation[T any] func(ctx context.Context) (T, error)

// Executor wraps individual data operations in a bounded retry loop with a
// per-attempt timeout and error classification. It executes only against
// the connection owned by its Manager; it never creates connections.
//
// Retries within one Execute call are strictly sequential. Different
// concurrent Execute calls proceed fully independently, each with its own
// backoff clock.
type Executor struct {
	manager *Manager
	config  *ClientConfig
}

// NewExecutor creates an operation executor bound to a manager.
//
// The executor inherits the manager's configuration; options may override
// it per executor (typically WithOperationRetry for a hotter or colder
// retry policy on a subset of operations).
//
// Parameters:
//   - m: The connection manager owning the shared connection
//   - opts: Optional configuration overrides
//
// Returns:
//   - *Executor: A new executor
func NewExecutor(m *Manager, opts ...Option) *Executor {
	if len(opts) == 0 {
		return &Executor{manager: m, config: m.config}
	}

	config := *m.config
	for _, opt := range opts {
		opt(&config)
	}
	config.finalize()

	return &Executor{manager: m, config: &config}
}

// Execute runs op under the executor's retry policy.
//
// Contract:
//  1. When the connection state is not "connected" the attempt fails fast
//     with types.ErrNotConnected without invoking op. The condition is
//     retryable — the state may change before the next attempt.
//  2. Each invocation of op races a per-attempt timeout
//     (policy Timeout, default 30s) and loses to *types.TimeoutError. The
//     timeout abandons the wait; a slow driver call may still complete
//     later and its result is discarded.
//  3. On success after a retry, exactly one recovery event is logged
//     ("operation succeeded after retries").
//  4. Terminal errors (see policy.Classifier) are returned immediately.
//     Retryable errors back off with min(BaseDelay·2^(n-1), MaxDelay) and
//     retry until MaxRetries attempts have been made, then the last error
//     is returned.
//
// Total wall-clock time is bounded by the sum of the backoff delays plus
// MaxRetries times the per-attempt timeout.
//
// Parameters:
//   - ctx: Context for cancellation; aborts between attempts and cancels
//     the in-flight attempt
//   - ex: The executor
//   - name: Operation name for log correlation, e.g. "Course.findOne"
//   - op: The operation to execute
//
// Returns:
//   - T: The operation result
//   - error: The classified terminal error, the last retryable error after
//     exhaustion, or ctx.Err()
func Execute[T any](ctx context.Context, ex *Executor, name string, op Operation[T]) (T, error) {
	var zero T

	pol := ex.config.OperationRetry
	// A policy with MaxRetries below 1 still runs the operation once; the
	// executor never reports success for an operation it did not invoke.
	maxAttempts := pol.MaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	opID := shortID()
	start := time.Now()
	ex.config.Metrics.IncOperationTotal(name)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ex.manager.State() != types.StateConnected {
			lastErr = types.ErrNotConnected
		} else {
			result, err := runAttempt(ctx, ex, name, pol.Timeout, op)
			if err == nil {
				if attempt > 1 {
					ex.config.Logger.Info("operation succeeded after retries",
						"op", name,
						"op_id", opID,
						"attempt", attempt,
					)
				}
				ex.config.Metrics.ObserveOperationDuration(name, time.Since(start).Seconds())

				return result, nil
			}
			lastErr = err
		}

		if ex.config.Classifier.NonRetryable(lastErr) {
			ex.config.Logger.Error("operation failed with terminal error",
				"op", name,
				"op_id", opID,
				"attempt", attempt,
				"error", lastErr.Error(),
			)
			ex.config.Metrics.IncOperationError(name)

			return zero, lastErr
		}

		if attempt == maxAttempts {
			ex.config.Logger.Error("operation retries exhausted",
				"op", name,
				"op_id", opID,
				"attempts", attempt,
				"error", lastErr.Error(),
			)
			ex.config.Metrics.IncOperationError(name)

			return zero, lastErr
		}

		delay := pol.Delay(attempt - 1)
		ex.config.Logger.Warn("operation failed, retrying",
			"op", name,
			"op_id", opID,
			"attempt", attempt,
			"delay", delay.String(),
			"error", lastErr.Error(),
		)
		ex.config.Metrics.IncOperationRetry(name)

		if err := ex.config.Sleep(ctx, delay); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}

// runAttempt executes one attempt under the per-attempt timeout.
//
// The result channel is buffered so a late completion after the timeout is
// discarded rather than leaking the goroutine.
func runAttempt[T any](ctx context.Context, ex *Executor, name string, timeout time.Duration, op Operation[T]) (T, error) {
	var zero T

	if timeout <= 0 {
		return op(ctx)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		result T
		err    error
	}
	ch := make(chan outcome, 1)

	go func() {
		result, err := op(attemptCtx)
		ch <- outcome{result: result, err: err}
	}()

	select {
	case out := <-ch:
		return out.result, out.err
	case <-attemptCtx.Done():
		// Caller cancellation is not a timeout.
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		ex.config.Metrics.IncOperationTimeout(name)

		return zero, &types.TimeoutError{Op: name, Timeout: timeout}
	}
}

// shortID returns a compact correlation ID for one executor invocation.
func shortID() string {
	return uuid.NewString()[:8]
}

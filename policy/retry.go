package policy

import "time"

// Retry is an immutable retry policy: a bounded number of attempts with
// capped exponential backoff between them.
//
// Two policies exist in practice: the connection policy used by the
// connection manager's connect loop, and the operation policy used by the
// operation executor. Both are passed by value into retry loops; a policy is
// never mutated after construction.
type Retry struct {
	// MaxRetries is the number of re-attempts after the initial one for the
	// connect loop, and the total number of attempts for operations. See
	// DefaultConnectionRetry and DefaultOperationRetry for the conventions.
	// The operation executor treats values below 1 as a single attempt.
	MaxRetries int

	// BaseDelay is the delay before the first retry. Subsequent delays
	// double until MaxDelay.
	BaseDelay time.Duration

	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration

	// Timeout bounds each individual attempt. Zero means no per-attempt
	// timeout (connection attempts rely on driver-level timeouts instead).
	Timeout time.Duration
}

// DefaultConnectionRetry returns the default connection policy.
//
// MaxRetries counts re-attempts after the initial connect, so a permanently
// failing target produces MaxRetries+1 = 6 attempts with inter-attempt
// delays of 1s, 2s, 4s, 8s, 16s.
//
// Returns:
//   - Retry: {MaxRetries: 5, BaseDelay: 1s, MaxDelay: 30s}
func DefaultConnectionRetry() Retry {
	return Retry{
		MaxRetries: 5,
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// DefaultOperationRetry returns the default operation policy.
//
// MaxRetries is the total number of attempts: a permanently failing
// operation is attempted exactly 3 times with delays of 1s and 2s between
// attempts, each attempt bounded by Timeout.
//
// Returns:
//   - Retry: {MaxRetries: 3, BaseDelay: 1s, MaxDelay: 10s, Timeout: 30s}
func DefaultOperationRetry() Retry {
	return Retry{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   10 * time.Second,
		Timeout:    30 * time.Second,
	}
}

// Delay computes the backoff delay before retry number attempt.
//
// The first retry is attempt 0: delay = min(BaseDelay * 2^attempt, MaxDelay).
// Negative attempts are treated as 0.
//
// Parameters:
//   - attempt: Zero-based retry index
//
// Returns:
//   - time.Duration: The capped exponential delay
func (r Retry) Delay(attempt int) time.Duration {
	delay := r.BaseDelay

	for i := 0; i < attempt && delay < r.MaxDelay; i++ {
		delay *= 2
	}

	if delay > r.MaxDelay {
		delay = r.MaxDelay
	}

	return delay
}

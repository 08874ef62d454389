// Package policy provides retry policies and error classification for
// mongoguard.
//
// # Retry policies
//
// Retry is an immutable value type describing a bounded retry loop with
// capped exponential backoff. Two defaults are provided:
//
//	policy.DefaultConnectionRetry() // 5 retries, 1s base, 30s cap
//	policy.DefaultOperationRetry()  // 3 attempts, 1s base, 10s cap, 30s/attempt
//
// The delay schedule is delay(n) = min(BaseDelay * 2^n, MaxDelay), so the
// connection policy yields 1s, 2s, 4s, 8s, 16s between its six attempts.
//
// # Error classification
//
// Classifier separates terminal errors (validation failures, duplicate keys,
// cast failures, not-found, write conflicts) from transient ones (network
// resets, timeouts, server selection failures). Unknown errors default to
// retryable, favoring availability over fast-fail.
//
// Typed driver errors are the primary classification path. A closed list of
// message patterns is kept as a secondary heuristic for errors the driver
// does not type; the classifier logs whenever that fallback path decides an
// outcome, so misclassification across driver upgrades stays visible.
package policy

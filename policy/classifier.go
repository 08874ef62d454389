package policy

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/medhedtech/mongoguard/internal/logging"
	"github.com/medhedtech/mongoguard/types"
)

// Server error codes that identify terminal failures.
//
// These are stable MongoDB error codes; matching on them is the primary
// classification path and does not depend on message wording.
const (
	codeWriteConflict      = 112
	codeDocumentValidation = 121
)

// terminalPatterns is the closed list of message fragments that mark an
// error terminal when no typed classification applies. Matching is
// case-insensitive. This is a secondary heuristic only; hits are logged so
// silent misclassification stays observable across driver upgrades.
var terminalPatterns = []string{
	"duplicate key error",
	"validation failed",
	"cast to objectid failed",
	"is required",
	"unique constraint",
}

// Classifier decides whether an error is terminal (non-retryable) or
// transient (retryable).
//
// Classification is biased toward availability: unknown error kinds default
// to retryable. The terminal set is a closed, auditable list of typed driver
// errors plus a message-pattern fallback.
type Classifier struct {
	logger types.Logger
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithClassifierLogger sets the logger used to report fallback-path
// classifications.
//
// Parameters:
//   - l: The logger
//
// Returns:
//   - ClassifierOption: Configuration option
func WithClassifierLogger(l types.Logger) ClassifierOption {
	return func(c *Classifier) {
		c.logger = l
	}
}

// NewClassifier creates a new error classifier.
//
// Parameters:
//   - opts: Optional configuration options
//
// Returns:
//   - *Classifier: A new classifier
func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logging.NewNopLogger()
	}

	return c
}

// NonRetryable reports whether err is terminal and must not be retried.
//
// Terminal errors:
//   - context.Canceled (caller gave up; retrying works against them)
//   - types.ErrClientClosed (connection closed during shutdown)
//   - duplicate key violations (mongo.IsDuplicateKeyError)
//   - mongo.ErrNoDocuments (document not found)
//   - invalid ObjectID input (primitive.ErrInvalidHex)
//   - server-side document validation failure and write conflicts
//   - message-pattern fallback hits (logged when used)
//
// Everything else — network resets, timeouts, server selection failures,
// types.ErrNotConnected — is retryable by default.
//
// Parameters:
//   - err: The error to classify
//
// Returns:
//   - bool: true when the error is terminal
func (c *Classifier) NonRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Caller-initiated cancellation is not worth retrying.
	if errors.Is(err, context.Canceled) {
		return true
	}

	if errors.Is(err, types.ErrClientClosed) {
		return true
	}

	// Retryable sentinels and timeouts, checked before the typed terminal
	// set so a wrapped timeout never string-matches into a terminal bucket.
	if errors.Is(err, types.ErrNotConnected) ||
		errors.Is(err, context.DeadlineExceeded) ||
		types.IsTimeout(err) ||
		mongo.IsTimeout(err) ||
		mongo.IsNetworkError(err) {
		return false
	}

	// Primary path: typed driver errors.
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return true
	}
	if errors.Is(err, primitive.ErrInvalidHex) {
		return true
	}

	var srvErr mongo.ServerError
	if errors.As(err, &srvErr) {
		if srvErr.HasErrorCode(codeDocumentValidation) || srvErr.HasErrorCode(codeWriteConflict) {
			return true
		}
	}

	// Secondary path: message patterns. Brittle across driver versions, so
	// every hit is logged.
	msg := strings.ToLower(err.Error())
	for _, pattern := range terminalPatterns {
		if strings.Contains(msg, pattern) {
			c.logger.Warn("error classified terminal via message pattern",
				"pattern", pattern,
				"error", err.Error(),
			)

			return true
		}
	}

	return false
}

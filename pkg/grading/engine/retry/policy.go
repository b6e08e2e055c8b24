// Package retry defines the whole-workflow retry policy.
// Gradeloop retries the entire pipeline from detection, never a single step:
// the host page may have changed between attempts, so a fresh detection pass
// is the safe restart point.
package retry

import (
	"time"

	config "github.com/gradeloop/gradeloop/pkg/grading/core/config"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/exception"
)

// Policy decides whether a failed workflow is retried and how long to wait.
type Policy interface {
	// ShouldRetry determines if a given error warrants another workflow attempt.
	// err: The error to evaluate.
	// Returns: true if the error is retryable, false otherwise.
	ShouldRetry(err error) bool
	// GetBackoffInterval returns the waiting time before the next attempt.
	// attempt: The current attempt number (starting from 1).
	GetBackoffInterval(attempt int) time.Duration
	// GetMaxAttempts returns the maximum number of retry attempts.
	GetMaxAttempts() int
}

// kindRetryPolicy retries only network-classified failures, with a fixed
// backoff interval.
type kindRetryPolicy struct {
	maxAttempts int
	interval    time.Duration
}

// NewPolicy creates the default retry policy from configuration.
func NewPolicy(cfg *config.GradingConfig) Policy {
	return NewFixedPolicy(cfg.MaxRetries, time.Duration(cfg.RetryDelayMs)*time.Millisecond)
}

// NewFixedPolicy creates a retry policy with an explicit attempt bound and
// fixed backoff interval.
func NewFixedPolicy(maxAttempts int, interval time.Duration) Policy {
	return &kindRetryPolicy{
		maxAttempts: maxAttempts,
		interval:    interval,
	}
}

// ShouldRetry reports whether the error is retryable. The determination is
// based on the error kind assigned at the throw site: only network failures
// are self-healing enough to justify another automated attempt.
func (p *kindRetryPolicy) ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	return exception.KindOf(err) == exception.KindNetwork
}

// GetBackoffInterval returns the fixed interval regardless of attempt number.
func (p *kindRetryPolicy) GetBackoffInterval(attempt int) time.Duration {
	return p.interval
}

// GetMaxAttempts returns the maximum number of retry attempts.
func (p *kindRetryPolicy) GetMaxAttempts() int {
	return p.maxAttempts
}

var _ Policy = (*kindRetryPolicy)(nil)

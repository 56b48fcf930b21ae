package summarize

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// MaxRetries is the number of attempts made against the inference endpoint.
const MaxRetries = 3

// maxModelWait caps how long a "model loading" hint is honored.
const maxModelWait = 30 * time.Second

// RetryableError is a transient inference failure: rate limiting, server
// errors, or a model that is still loading.
type RetryableError struct {
	StatusCode int
	Message    string
	// Wait is the endpoint's own estimate of when to retry, if it gave one.
	Wait time.Duration
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("inference unavailable (status %d): %s", e.StatusCode, truncateRunes(e.Message, 200))
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns the delay before retry n (0-indexed): doubling from one
// second, capped at 30s, plus up to 50% jitter.
func Backoff(attempt int) time.Duration {
	base := time.Second << min(attempt, 5)
	base = min(base, 30*time.Second)
	return base + time.Duration(rand.Int64N(int64(base)/2))
}

// retryDelay prefers the endpoint's hint over the computed backoff.
func retryDelay(err error, computed time.Duration) time.Duration {
	var retryErr *RetryableError
	if errors.As(err, &retryErr) && retryErr.Wait > computed {
		return min(retryErr.Wait, maxModelWait)
	}
	return computed
}

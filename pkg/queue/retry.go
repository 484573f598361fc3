package queue

import (
	"context"
	"errors"
	"time"
)

// DefaultRetryInterval is used when a retry policy is enabled without an interval
const DefaultRetryInterval = time.Second

// RetryPolicy governs retries of store calls that fail with ErrStoreUnavailable.
//
// The zero value disables retries: the first error is returned as is.
// With Enabled set, a zero Timeout retries until the context is done and a
// positive Timeout retries until the window elapses.
type RetryPolicy struct {
	Enabled  bool
	Timeout  time.Duration
	Interval time.Duration
}

// NoRetry returns a policy that fails on the first error
func NoRetry() RetryPolicy {
	return RetryPolicy{}
}

// RetryWithin returns a policy retrying every interval until timeout elapses
func RetryWithin(timeout, interval time.Duration) RetryPolicy {
	return RetryPolicy{Enabled: true, Timeout: timeout, Interval: interval}
}

// RetryForever returns a policy retrying every interval until the context is done
func RetryForever(interval time.Duration) RetryPolicy {
	return RetryPolicy{Enabled: true, Interval: interval}
}

func (p RetryPolicy) interval() time.Duration {
	if p.Interval <= 0 {
		return DefaultRetryInterval
	}
	return p.Interval
}

// RetryOutcome describes how a retried call ended
type RetryOutcome int

const (
	// RetrySucceeded means the operation returned without error
	RetrySucceeded RetryOutcome = iota
	// RetryExhausted means connectivity errors persisted past the retry window
	RetryExhausted
	// RetryAborted means the operation failed with an error that is never retried
	RetryAborted
)

func (o RetryOutcome) String() string {
	switch o {
	case RetrySucceeded:
		return "succeeded"
	case RetryExhausted:
		return "exhausted"
	case RetryAborted:
		return "aborted"
	}
	return "unknown"
}

// RetryResult is the result of Retry
type RetryResult struct {
	Outcome  RetryOutcome
	Attempts int
	// LastErr is the error returned by the final attempt, nil on success
	LastErr error
}

// Err returns nil on success. An exhausted result is reported as
// ErrRetryExhausted joined with the last error, so errors.Is still matches
// ErrStoreUnavailable.
func (r RetryResult) Err() error {
	switch r.Outcome {
	case RetrySucceeded:
		return nil
	case RetryExhausted:
		if r.Attempts <= 1 {
			return r.LastErr
		}
		return errors.Join(ErrRetryExhausted, r.LastErr)
	default:
		return r.LastErr
	}
}

// IsUnavailable reports whether err is a store connectivity failure
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// Retry calls op until it succeeds, fails with a non-retryable error, or the
// policy gives up. Only errors matching ErrStoreUnavailable are retried.
func Retry(ctx context.Context, policy RetryPolicy, op func(ctx context.Context) error) RetryResult {
	return retryIf(ctx, policy, IsUnavailable, nil, op)
}

// retryIf is Retry with a custom retryable predicate and an optional hook
// called before each sleep.
func retryIf(ctx context.Context, policy RetryPolicy, retryable func(error) bool, onRetry func(attempt int, err error), op func(ctx context.Context) error) RetryResult {
	var deadline time.Time
	if policy.Enabled && policy.Timeout > 0 {
		deadline = time.Now().Add(policy.Timeout)
	}

	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return RetryResult{Outcome: RetrySucceeded, Attempts: attempt}
		}
		if !retryable(err) {
			return RetryResult{Outcome: RetryAborted, Attempts: attempt, LastErr: err}
		}

		exhausted := RetryResult{Outcome: RetryExhausted, Attempts: attempt, LastErr: err}
		if !policy.Enabled {
			return exhausted
		}

		wait := policy.interval()
		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return exhausted
			}
			wait = min(wait, remaining)
		}

		if onRetry != nil {
			onRetry(attempt, err)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			exhausted.LastErr = errors.Join(err, ctx.Err())
			return exhausted
		case <-timer.C:
		}
	}
}

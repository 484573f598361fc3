package queue

import "errors"

// Common errors
var (
	// ErrStoreNil is returned when a nil store is provided
	ErrStoreNil = errors.New("store cannot be nil")

	// ErrQueueNil is returned when a worker is created without a queue
	ErrQueueNil = errors.New("queue cannot be nil")

	// ErrSenderNil is returned when a worker is created without a sender
	ErrSenderNil = errors.New("sender cannot be nil")

	// ErrJobNil is returned when attempting to enqueue a nil job
	ErrJobNil = errors.New("job cannot be nil")

	// ErrQueueEmpty is returned by Reserve when there is nothing pending.
	// It is an expected condition, not a failure.
	ErrQueueEmpty = errors.New("queue is empty")

	// ErrListEmpty is returned by Store.Move when the source list has no items
	ErrListEmpty = errors.New("list is empty")

	// ErrTokenNotFound is returned when a token is no longer in the processing list
	ErrTokenNotFound = errors.New("token not found in processing list")

	// ErrStoreUnavailable marks connectivity failures of the backing store.
	// Store implementations wrap "unreachable" errors with it; only these are retried.
	ErrStoreUnavailable = errors.New("backing store is unavailable")

	// ErrRetryExhausted is returned when the retry window elapsed without a successful call
	ErrRetryExhausted = errors.New("store retry window exhausted")

	// ErrDiscardCompensation is joined into a discard error when removing the
	// just-appended discard entry failed, leaving a phantom entry behind
	ErrDiscardCompensation = errors.New("failed to roll back discard list append")

	// ErrMalformedPayload is returned when a job cannot be encoded into a token
	// that decodes back to it, or a reserved payload cannot be decoded into a job
	ErrMalformedPayload = errors.New("malformed job payload")

	// ErrUnknownList is returned when an ops call names a list that does not exist
	ErrUnknownList = errors.New("unknown queue list")

	// ErrRejected classifies a permanent delivery failure: the payload itself is
	// unacceptable to the provider. The worker discards the job.
	ErrRejected = errors.New("delivery rejected")

	// ErrTemporary classifies a transient delivery failure (quota, rate limit,
	// provider unreachable). The worker stops instead of spinning against it.
	ErrTemporary = errors.New("temporary delivery failure")
)

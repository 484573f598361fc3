package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/reliablemail/pkg/logger"
	"github.com/dmitrymomot/reliablemail/pkg/metrics"
)

// Queue implements the reliable queue protocol over a Store.
//
// A job is appended to the pending list, atomically moved to processing by
// Reserve, and leaves processing through exactly one of Complete or Discard.
// Queue holds no mutable state of its own and is safe for concurrent use.
type Queue struct {
	store     Store
	namespace string
	retry     RetryPolicy
	logger    *slog.Logger
	metrics   *metrics.Metrics

	pendingKey    string
	processingKey string
	discardKey    string
}

// New creates a new Queue on top of store
func New(store Store, opts ...Option) (*Queue, error) {
	if store == nil {
		return nil, ErrStoreNil
	}

	options := &options{
		namespace: DefaultNamespace,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Queue{
		store:         store,
		namespace:     options.namespace,
		retry:         options.retry,
		logger:        options.logger.With(logger.Component("queue"), logger.Namespace(options.namespace)),
		metrics:       options.metrics,
		pendingKey:    options.namespace + ".queue",
		processingKey: options.namespace + ".processing",
		discardKey:    options.namespace + ".discard",
	}, nil
}

// Namespace returns the key prefix of the queue lists
func (q *Queue) Namespace() string {
	return q.namespace
}

// Key returns the store key of the given list
func (q *Queue) Key(list List) string {
	switch list {
	case ListProcessing:
		return q.processingKey
	case ListDiscarded:
		return q.discardKey
	default:
		return q.pendingKey
	}
}

// Enqueue appends job to the tail of the pending list
func (q *Queue) Enqueue(ctx context.Context, job Job, opts ...CallOption) error {
	if job == nil {
		return ErrJobNil
	}

	token, err := encodeJob(job)
	if err != nil {
		return err
	}

	if err := q.call(ctx, "enqueue", opts, func(ctx context.Context) error {
		return q.store.Append(ctx, q.pendingKey, string(token))
	}); err != nil {
		return fmt.Errorf("failed to enqueue job %s: %w", token.ID(), err)
	}

	q.metrics.JobEnqueued()
	q.logger.DebugContext(ctx, "job enqueued", logger.JobID(token.ID()))

	return nil
}

// Reserve atomically moves the head of the pending list to the tail of the
// processing list and returns it. Returns ErrQueueEmpty if nothing is pending.
//
// If the moved payload cannot be decoded, the reservation is still returned
// (with a nil Job) together with ErrMalformedPayload so the caller can discard it.
func (q *Queue) Reserve(ctx context.Context, opts ...CallOption) (*Reservation, error) {
	var value string
	err := q.call(ctx, "reserve", opts, func(ctx context.Context) error {
		var err error
		value, err = q.store.Move(ctx, q.pendingKey, q.processingKey)
		return err
	})
	if errors.Is(err, ErrListEmpty) {
		return nil, ErrQueueEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reserve job: %w", err)
	}

	token := Token(value)
	job, err := decodeJob(token)
	if err != nil {
		return &Reservation{Token: token}, err
	}

	return &Reservation{Job: job, Token: token}, nil
}

// Poll behaves like Reserve but reports an empty queue as a nil reservation
// with a nil error.
func (q *Queue) Poll(ctx context.Context, opts ...CallOption) (*Reservation, error) {
	res, err := q.Reserve(ctx, opts...)
	if errors.Is(err, ErrQueueEmpty) {
		return nil, nil
	}
	return res, err
}

// Complete removes one occurrence of token from the processing list.
// Returns ErrTokenNotFound if it was not there.
func (q *Queue) Complete(ctx context.Context, token Token, opts ...CallOption) error {
	var removed int64
	if err := q.call(ctx, "complete", opts, func(ctx context.Context) error {
		var err error
		removed, err = q.store.Remove(ctx, q.processingKey, string(token), 1)
		return err
	}); err != nil {
		return fmt.Errorf("failed to complete job %s: %w", token.ID(), err)
	}

	if removed == 0 {
		return fmt.Errorf("failed to complete job %s: %w", token.ID(), ErrTokenNotFound)
	}

	return nil
}

// Discard moves token from the processing list to the discard list in one
// transaction. The append happens first: a duplicate discard entry is
// preferable to a lost job.
//
// If nothing was removed from processing, the append is rolled back on a
// best-effort basis and ErrTokenNotFound is returned. A failed rollback is
// reported as ErrDiscardCompensation joined into the same error.
func (q *Queue) Discard(ctx context.Context, token Token, opts ...CallOption) error {
	var removed int64
	if err := q.call(ctx, "discard", opts, func(ctx context.Context) error {
		var err error
		removed, err = q.store.AppendAndRemove(ctx, q.discardKey, q.processingKey, string(token))
		return err
	}); err != nil {
		return fmt.Errorf("failed to discard job %s: %w", token.ID(), err)
	}

	if removed > 0 {
		return nil
	}

	err := ErrTokenNotFound
	if cerr := q.compensateDiscard(ctx, token, opts); cerr != nil {
		q.logger.WarnContext(ctx, "phantom discard entry left behind",
			logger.JobID(token.ID()),
			logger.Error(cerr))
		err = errors.Join(ErrTokenNotFound, ErrDiscardCompensation, cerr)
	}

	return fmt.Errorf("failed to discard job %s: %w", token.ID(), err)
}

// compensateDiscard removes the entry Discard just appended, scanning from the tail
func (q *Queue) compensateDiscard(ctx context.Context, token Token, opts []CallOption) error {
	var removed int64
	err := q.call(ctx, "discard_rollback", opts, func(ctx context.Context) error {
		var err error
		removed, err = q.store.Remove(ctx, q.discardKey, string(token), -1)
		return err
	})
	if err != nil {
		return err
	}
	if removed == 0 {
		return errors.New("discard entry already gone")
	}
	return nil
}

// Size returns the number of pending jobs
func (q *Queue) Size(ctx context.Context, opts ...CallOption) (int64, error) {
	return q.length(ctx, "size", q.pendingKey, opts)
}

// SizeProcessing returns the number of reserved, unresolved jobs
func (q *Queue) SizeProcessing(ctx context.Context, opts ...CallOption) (int64, error) {
	return q.length(ctx, "size_processing", q.processingKey, opts)
}

// SizeDiscarded returns the number of discarded jobs
func (q *Queue) SizeDiscarded(ctx context.Context, opts ...CallOption) (int64, error) {
	return q.length(ctx, "size_discarded", q.discardKey, opts)
}

// Stats returns the length of all three lists
func (q *Queue) Stats(ctx context.Context, opts ...CallOption) (Stats, error) {
	var (
		s   Stats
		err error
	)
	if s.Pending, err = q.Size(ctx, opts...); err != nil {
		return Stats{}, err
	}
	if s.Processing, err = q.SizeProcessing(ctx, opts...); err != nil {
		return Stats{}, err
	}
	if s.Discarded, err = q.SizeDiscarded(ctx, opts...); err != nil {
		return Stats{}, err
	}
	return s, nil
}

func (q *Queue) length(ctx context.Context, op, key string, opts []CallOption) (int64, error) {
	var n int64
	if err := q.call(ctx, op, opts, func(ctx context.Context) error {
		var err error
		n, err = q.store.Len(ctx, key)
		return err
	}); err != nil {
		return 0, fmt.Errorf("failed to read length of %s: %w", key, err)
	}
	return n, nil
}

// Reset deletes all three lists. Destructive; intended for tests and operators.
func (q *Queue) Reset(ctx context.Context, opts ...CallOption) error {
	if err := q.call(ctx, "reset", opts, func(ctx context.Context) error {
		return q.store.Delete(ctx, q.pendingKey, q.processingKey, q.discardKey)
	}); err != nil {
		return fmt.Errorf("failed to reset queue: %w", err)
	}

	q.logger.InfoContext(ctx, "queue reset")
	return nil
}

// Peek returns up to limit reservations from the head of list without moving them
func (q *Queue) Peek(ctx context.Context, list List, limit int64, opts ...CallOption) ([]Reservation, error) {
	var values []string
	if err := q.call(ctx, "peek", opts, func(ctx context.Context) error {
		var err error
		values, err = q.store.Range(ctx, q.Key(list), limit)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to read %s list: %w", list, err)
	}

	out := make([]Reservation, 0, len(values))
	for _, v := range values {
		token := Token(v)
		job, _ := decodeJob(token)
		out = append(out, Reservation{Job: job, Token: token})
	}
	return out, nil
}

// RequeueDiscarded moves up to limit jobs from the discard list back to
// pending. A limit <= 0 moves everything. Returns the number of moved jobs.
func (q *Queue) RequeueDiscarded(ctx context.Context, limit int64, opts ...CallOption) (int64, error) {
	return q.drain(ctx, "requeue_discarded", q.discardKey, limit, opts)
}

// RecoverProcessing moves up to limit jobs from processing back to pending.
// It is a manual remediation for crashed workers; running it while workers
// are live can cause duplicate deliveries.
func (q *Queue) RecoverProcessing(ctx context.Context, limit int64, opts ...CallOption) (int64, error) {
	return q.drain(ctx, "recover_processing", q.processingKey, limit, opts)
}

func (q *Queue) drain(ctx context.Context, op, src string, limit int64, opts []CallOption) (int64, error) {
	var moved int64
	for limit <= 0 || moved < limit {
		err := q.call(ctx, op, opts, func(ctx context.Context) error {
			_, err := q.store.Move(ctx, src, q.pendingKey)
			return err
		})
		if errors.Is(err, ErrListEmpty) {
			break
		}
		if err != nil {
			return moved, fmt.Errorf("failed to move jobs from %s: %w", src, err)
		}
		moved++
	}

	if moved > 0 {
		q.logger.InfoContext(ctx, "jobs moved back to pending",
			logger.Operation(op),
			slog.Int64("count", moved))
	}
	return moved, nil
}

// call runs op under the effective retry policy
func (q *Queue) call(ctx context.Context, name string, opts []CallOption, op func(context.Context) error) error {
	co := callOptions{retry: q.retry}
	for _, opt := range opts {
		opt(&co)
	}

	res := retryIf(ctx, co.retry, IsUnavailable, func(attempt int, err error) {
		q.metrics.StoreRetried(name)
		q.logger.DebugContext(ctx, "store unavailable, retrying",
			logger.Operation(name),
			logger.Attempt(attempt),
			logger.Error(err))
	}, op)

	if res.Outcome == RetryExhausted {
		q.logger.ErrorContext(ctx, "store unavailable",
			logger.Operation(name),
			logger.Attempt(res.Attempts),
			logger.Error(res.LastErr))
	}

	return res.Err()
}

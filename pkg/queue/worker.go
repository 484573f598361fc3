package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/reliablemail/pkg/logger"
	"github.com/dmitrymomot/reliablemail/pkg/metrics"
)

// WorkerQueue defines the queue operations the worker depends on
type WorkerQueue interface {
	// Poll reserves the next pending job, returning nil when the queue is empty
	Poll(ctx context.Context, opts ...CallOption) (*Reservation, error)

	// Complete resolves a delivered job
	Complete(ctx context.Context, token Token, opts ...CallOption) error

	// Discard resolves a job that must not be delivered
	Discard(ctx context.Context, token Token, opts ...CallOption) error
}

// Outcome describes what one worker iteration did
type Outcome string

const (
	OutcomeIdle      Outcome = "idle"
	OutcomeCompleted Outcome = "completed"
	OutcomeDiscarded Outcome = "discarded"
)

// Worker reserves jobs one at a time, validates them, hands them to a Sender
// and resolves each reservation with Complete or Discard.
//
// Any error other than an empty queue, an invalid job or a rejected delivery
// stops the worker. Restarting it is left to the process supervisor.
type Worker struct {
	queue  WorkerQueue
	sender Sender

	id           string
	idleInterval time.Duration
	once         bool
	validator    Validator
	callOpts     []CallOption
	sendRetry    RetryPolicy
	backend      string
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

// NewWorker creates a worker pulling from q and delivering through sender
func NewWorker(q WorkerQueue, sender Sender, opts ...WorkerOption) (*Worker, error) {
	if q == nil {
		return nil, ErrQueueNil
	}
	if sender == nil {
		return nil, ErrSenderNil
	}

	options := &workerOptions{
		id:           uuid.New().String(),
		idleInterval: 5 * time.Second,
		validator:    AcceptAll,
		backend:      "unknown",
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Worker{
		queue:        q,
		sender:       sender,
		id:           options.id,
		idleInterval: options.idleInterval,
		once:         options.once,
		validator:    options.validator,
		callOpts:     options.callOpts,
		sendRetry:    options.sendRetry,
		backend:      options.backend,
		logger: options.logger.With(
			logger.Component("worker"),
			logger.WorkerID(options.id),
			logger.Backend(options.backend),
		),
		metrics: options.metrics,
	}, nil
}

// ID returns the worker identifier
func (w *Worker) ID() string {
	return w.id
}

// Run processes jobs until a fatal error occurs or ctx is cancelled.
// Cancellation is honoured between iterations and while idle; a reserved job
// is always resolved first. Returns nil on cancellation.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "worker started",
		slog.Duration("idle_interval", w.idleInterval),
		slog.Bool("single_iteration", w.once))

	for {
		if ctx.Err() != nil {
			w.logger.InfoContext(ctx, "worker stopped")
			return nil
		}

		if _, err := w.Process(ctx); err != nil {
			w.logger.ErrorContext(ctx, "worker stopped on error", logger.Error(err))
			return err
		}

		if w.once {
			return nil
		}
	}
}

// Process runs a single iteration: reserve, validate, dispatch, resolve.
// An empty queue waits for the idle interval and reports OutcomeIdle.
func (w *Worker) Process(ctx context.Context) (Outcome, error) {
	res, err := w.queue.Poll(ctx, w.callOpts...)
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		// Cancelled mid-poll: nothing was reserved.
		return OutcomeIdle, nil
	}
	if err != nil && !errors.Is(err, ErrMalformedPayload) {
		w.metrics.WorkerFailed("reserve")
		return "", fmt.Errorf("failed to reserve job: %w", err)
	}

	if res == nil {
		w.idle(ctx)
		return OutcomeIdle, nil
	}

	jobID := res.Token.ID()
	w.logger.DebugContext(ctx, "job reserved", logger.JobID(jobID))

	// The reservation is resolved even if ctx is cancelled meanwhile.
	ctx = context.WithoutCancel(ctx)

	if err != nil {
		return w.discard(ctx, res.Token, "payload cannot be decoded")
	}

	return w.dispatch(ctx, res)
}

func (w *Worker) dispatch(ctx context.Context, res *Reservation) (outcome Outcome, retErr error) {
	jobID := res.Token.ID()

	defer func() {
		if r := recover(); r != nil {
			w.metrics.WorkerFailed("panic")
			w.logger.ErrorContext(ctx, "job handling panicked, reservation left in processing",
				logger.JobID(jobID),
				slog.Any("panic", r))
			outcome, retErr = "", fmt.Errorf("panic while handling job %s: %v", jobID, r)
		}
	}()

	if valid, reason := w.validator.Validate(res.Job); !valid {
		return w.discard(ctx, res.Token, reason)
	}

	start := time.Now()
	err := w.send(ctx, res.Job)
	duration := time.Since(start)

	switch {
	case err == nil:
		w.metrics.ObserveSend(w.backend, "sent", duration)
		return w.complete(ctx, res.Token, duration)

	case errors.Is(err, ErrRejected):
		w.metrics.ObserveSend(w.backend, "rejected", duration)
		return w.discard(ctx, res.Token, err.Error())

	case errors.Is(err, ErrTemporary):
		w.metrics.ObserveSend(w.backend, "temporary", duration)
		w.metrics.WorkerFailed("send_temporary")
		return "", fmt.Errorf("temporary delivery failure for job %s: %w", jobID, err)

	default:
		w.metrics.ObserveSend(w.backend, "failed", duration)
		w.metrics.WorkerFailed("send")
		return "", fmt.Errorf("failed to deliver job %s: %w", jobID, err)
	}
}

// send delivers the job, retrying temporary failures under the send retry policy
func (w *Worker) send(ctx context.Context, job Job) error {
	isTemporary := func(err error) bool { return errors.Is(err, ErrTemporary) }

	res := retryIf(ctx, w.sendRetry, isTemporary, func(attempt int, err error) {
		w.logger.WarnContext(ctx, "temporary delivery failure, retrying",
			logger.Attempt(attempt),
			logger.Error(err))
	}, func(ctx context.Context) error {
		return w.sender.Send(ctx, job)
	})

	return res.LastErr
}

func (w *Worker) complete(ctx context.Context, token Token, duration time.Duration) (Outcome, error) {
	if err := w.queue.Complete(ctx, token, w.callOpts...); err != nil {
		w.metrics.WorkerFailed("complete")
		return "", fmt.Errorf("failed to complete job %s: %w", token.ID(), err)
	}

	w.metrics.JobResolved(string(OutcomeCompleted))
	w.logger.InfoContext(ctx, "job delivered",
		logger.JobID(token.ID()),
		logger.Outcome(string(OutcomeCompleted)),
		logger.Duration(duration))

	return OutcomeCompleted, nil
}

func (w *Worker) discard(ctx context.Context, token Token, reason string) (Outcome, error) {
	if err := w.queue.Discard(ctx, token, w.callOpts...); err != nil {
		w.metrics.WorkerFailed("discard")
		return "", fmt.Errorf("failed to discard job %s: %w", token.ID(), err)
	}

	w.metrics.JobResolved(string(OutcomeDiscarded))
	w.logger.WarnContext(ctx, "job discarded",
		logger.JobID(token.ID()),
		logger.Outcome(string(OutcomeDiscarded)),
		logger.Reason(reason))

	return OutcomeDiscarded, nil
}

func (w *Worker) idle(ctx context.Context) {
	if w.idleInterval <= 0 {
		return
	}

	timer := time.NewTimer(w.idleInterval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

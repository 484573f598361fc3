package queue

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/reliablemail/pkg/metrics"
)

// WorkerOption is a functional option for configuring a worker
type WorkerOption func(*workerOptions)

type workerOptions struct {
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

// WithIdleInterval sets how long the worker waits after finding the queue empty.
// Zero means poll again immediately.
func WithIdleInterval(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d >= 0 {
			o.idleInterval = d
		}
	}
}

// WithSingleIteration makes Run return after processing at most one job
func WithSingleIteration() WorkerOption {
	return func(o *workerOptions) {
		o.once = true
	}
}

// WithValidator sets the predicate applied to every reserved job
func WithValidator(v Validator) WorkerOption {
	return func(o *workerOptions) {
		if v != nil {
			o.validator = v
		}
	}
}

// WithCallOptions sets the options passed to every queue call made by the worker
func WithCallOptions(opts ...CallOption) WorkerOption {
	return func(o *workerOptions) {
		o.callOpts = append(o.callOpts, opts...)
	}
}

// WithSendRetry retries sends failing with ErrTemporary within the same
// reservation. By default a temporary failure stops the worker.
func WithSendRetry(p RetryPolicy) WorkerOption {
	return func(o *workerOptions) {
		o.sendRetry = p
	}
}

// WithWorkerID sets the identifier used in logs
func WithWorkerID(id string) WorkerOption {
	return func(o *workerOptions) {
		if id != "" {
			o.id = id
		}
	}
}

// WithBackendName sets the delivery backend name used in logs and metrics
func WithBackendName(name string) WorkerOption {
	return func(o *workerOptions) {
		if name != "" {
			o.backend = name
		}
	}
}

// WithWorkerLogger sets the logger for the worker
func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(o *workerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithWorkerMetrics sets the metrics recorder for the worker
func WithWorkerMetrics(m *metrics.Metrics) WorkerOption {
	return func(o *workerOptions) {
		o.metrics = m
	}
}

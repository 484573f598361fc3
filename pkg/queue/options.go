package queue

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/reliablemail/pkg/metrics"
)

// Option is a functional option for configuring a Queue
type Option func(*options)

type options struct {
	namespace string
	retry     RetryPolicy
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// WithNamespace sets the key prefix of the three queue lists
func WithNamespace(ns string) Option {
	return func(o *options) {
		if ns != "" {
			o.namespace = ns
		}
	}
}

// WithRetryPolicy sets the default retry policy applied to every store call
func WithRetryPolicy(p RetryPolicy) Option {
	return func(o *options) {
		o.retry = p
	}
}

// WithLogger sets the logger for the queue
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder for the queue
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// CallOption overrides queue defaults for a single call
type CallOption func(*callOptions)

type callOptions struct {
	retry RetryPolicy
}

// WithRetry retries connectivity failures every interval until timeout elapses.
// A zero timeout retries until the context is done.
func WithRetry(timeout, interval time.Duration) CallOption {
	return func(o *callOptions) {
		o.retry = RetryWithin(timeout, interval)
	}
}

// WithRetryForever retries connectivity failures until the context is done
func WithRetryForever(interval time.Duration) CallOption {
	return func(o *callOptions) {
		o.retry = RetryForever(interval)
	}
}

// WithoutRetry fails on the first connectivity error
func WithoutRetry() CallOption {
	return func(o *callOptions) {
		o.retry = NoRetry()
	}
}

// WithCallRetryPolicy applies an explicit retry policy to the call
func WithCallRetryPolicy(p RetryPolicy) CallOption {
	return func(o *callOptions) {
		o.retry = p
	}
}

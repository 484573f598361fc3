package queue

import "context"

// Sender delivers a job to a recipient.
//
// Implementations classify failures by wrapping them with ErrRejected
// (permanent: the payload is unacceptable) or ErrTemporary (capacity or
// connectivity). Any other error is treated as unexpected.
type Sender interface {
	Send(ctx context.Context, job Job) error
}

// SenderFunc adapts a function to the Sender interface
type SenderFunc func(ctx context.Context, job Job) error

// Send calls f(ctx, job)
func (f SenderFunc) Send(ctx context.Context, job Job) error {
	return f(ctx, job)
}

// Validator checks the shape of a job before it is dispatched.
// An invalid job is discarded without reaching the Sender.
type Validator interface {
	Validate(job Job) (valid bool, reason string)
}

// ValidatorFunc adapts a function to the Validator interface
type ValidatorFunc func(job Job) (bool, string)

// Validate calls f(job)
func (f ValidatorFunc) Validate(job Job) (bool, string) {
	return f(job)
}

// AcceptAll is a Validator that accepts every job
var AcceptAll Validator = ValidatorFunc(func(Job) (bool, string) { return true, "" })

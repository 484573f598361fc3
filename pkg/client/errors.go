package client

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidURL = errors.New("invalid ingress URL")

	// ErrRejected means the ingress refused the submission itself.
	// Retrying the same submission will not help.
	ErrRejected = errors.New("submission rejected")

	// ErrUnavailable means the submission did not reach the queue: the ingress
	// could not be contacted or its store was unavailable.
	ErrUnavailable = errors.New("ingress unavailable")

	// ErrUnexpectedResponse covers any other status.
	ErrUnexpectedResponse = errors.New("unexpected ingress response")
)

// ResponseError carries the details of a non-2xx ingress response.
type ResponseError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string][]string

	class error
}

func (e *ResponseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v: status %d", e.class, e.StatusCode)
	if e.Code != "" {
		fmt.Fprintf(&b, " (%s)", e.Code)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Unwrap returns the error class: ErrRejected, ErrUnavailable or ErrUnexpectedResponse.
func (e *ResponseError) Unwrap() error {
	return e.class
}

package client

import (
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithTimeout bounds every request attempt.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		if ua != "" {
			cl.userAgent = ua
		}
	}
}

// WithRetry retries submissions that fail with ErrUnavailable up to attempts
// more times. A nil strategy uses DefaultBackoff.
func WithRetry(attempts int, strategy BackoffStrategy) Option {
	return func(cl *Client) {
		if attempts < 0 {
			attempts = 0
		}
		if strategy == nil {
			strategy = DefaultBackoff()
		}
		cl.maxRetries = attempts
		cl.backoff = strategy
	}
}

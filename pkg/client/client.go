package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/reliablemail/pkg/frontend"
)

// Submission is one email handed to the ingress.
// Empty optional fields are left to the ingress defaults.
type Submission struct {
	Subject   string
	Body      string
	ToEmail   string
	ToName    string
	FromEmail string
	FromName  string
}

func (s Submission) form() url.Values {
	v := url.Values{
		"subject": {s.Subject},
		"body":    {s.Body},
		"to":      {s.ToEmail},
	}
	optional := map[string]string{
		"to_name":   s.ToName,
		"from":      s.FromEmail,
		"from_name": s.FromName,
	}
	for k, val := range optional {
		if val != "" {
			v.Set(k, val)
		}
	}
	return v
}

// Client submits emails to the HTTP ingress. It is safe for concurrent use.
type Client struct {
	endpoint   string
	http       *http.Client
	timeout    time.Duration
	userAgent  string
	maxRetries int
	backoff    BackoffStrategy
}

// New creates a client for the ingress at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: URL is required", ErrInvalidURL)
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidURL)
	}
	if u.Path == "" {
		u.Path = "/"
	}

	c := &Client{
		endpoint: u.String(),
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		timeout:   10 * time.Second,
		userAgent: "reliablemail-client/1.0",
		backoff:   DefaultBackoff(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Submit posts one email. It returns nil once the ingress has queued it,
// an error matching ErrRejected when the submission is invalid, and one
// matching ErrUnavailable when it could not be queued right now.
func (c *Client) Submit(ctx context.Context, s Submission) error {
	body := s.form().Encode()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(c.backoff.NextInterval(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return errors.Join(lastErr, ctx.Err())
			case <-timer.C:
			}
		}

		lastErr = c.post(ctx, body)
		if lastErr == nil || !errors.Is(lastErr, ErrUnavailable) {
			return lastErr
		}
	}
	return lastErr
}

func (c *Client) post(ctx context.Context, body string) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.endpoint, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil
	}

	return responseError(resp)
}

func responseError(resp *http.Response) error {
	re := &ResponseError{StatusCode: resp.StatusCode}

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable,
		resp.StatusCode == http.StatusBadGateway,
		resp.StatusCode == http.StatusGatewayTimeout,
		resp.StatusCode == http.StatusTooManyRequests:
		re.class = ErrUnavailable
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		re.class = ErrRejected
	default:
		re.class = ErrUnexpectedResponse
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var envelope frontend.JSONResponse
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != nil {
		re.Code = envelope.Error.Code
		re.Message = envelope.Error.Message
		re.Details = envelope.Error.Details
	} else if len(raw) > 0 {
		msg := strings.ReplaceAll(string(raw), "\n", " ")
		if len(msg) > 200 {
			msg = msg[:200] + "..."
		}
		re.Message = msg
	}
	return re
}

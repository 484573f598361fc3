package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"

	"github.com/dmitrymomot/reliablemail/pkg/queue"
)

// Postmark API error codes with a known delivery meaning.
const (
	postmarkInvalidRequest    = 300
	postmarkNotAllowedToSend  = 405
	postmarkInactiveRecipient = 406
	postmarkRateLimitExceeded = 429
)

// PostmarkClient is the subset of the Postmark API used by PostmarkSender.
type PostmarkClient interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

// PostmarkSender delivers messages through Postmark's transactional API.
type PostmarkSender struct {
	client PostmarkClient
	html   bool
}

// PostmarkOption configures a PostmarkSender.
type PostmarkOption func(*PostmarkSender)

// WithPostmarkClient replaces the API client, e.g. with a mock in tests.
func WithPostmarkClient(client PostmarkClient) PostmarkOption {
	return func(s *PostmarkSender) {
		s.client = client
	}
}

// NewPostmarkSender creates a Postmark-backed sender.
// The server token is required unless a client is supplied.
func NewPostmarkSender(cfg Config, opts ...PostmarkOption) (*PostmarkSender, error) {
	s := &PostmarkSender{html: cfg.HTMLBody}
	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		if cfg.PostmarkServerToken == "" {
			return nil, fmt.Errorf("%w: POSTMARK_SERVER_TOKEN is required", ErrInvalidConfig)
		}
		s.client = postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken)
	}
	return s, nil
}

// Send delivers one message.
func (s *PostmarkSender) Send(ctx context.Context, job queue.Job) error {
	m := MessageFromJob(job)

	email := postmark.Email{
		From:    m.From(),
		To:      m.To(),
		Subject: m.Subject,
	}
	if s.html {
		email.HTMLBody = m.Body
	} else {
		email.TextBody = m.Body
	}

	resp, err := s.client.SendEmail(ctx, email)
	return classifyPostmark(resp, err)
}

// classifyPostmark maps an API response onto the queue delivery classes.
// The response error code wins over a transport error when both are present.
func classifyPostmark(resp postmark.EmailResponse, err error) error {
	if resp.ErrorCode > 0 {
		apiErr := fmt.Errorf("postmark error %d: %s", resp.ErrorCode, resp.Message)
		switch resp.ErrorCode {
		case postmarkInvalidRequest, postmarkInactiveRecipient:
			return errors.Join(queue.ErrRejected, apiErr)
		case postmarkNotAllowedToSend, postmarkRateLimitExceeded:
			return errors.Join(queue.ErrTemporary, apiErr)
		default:
			return errors.Join(ErrFailedToSendEmail, apiErr)
		}
	}
	if err != nil {
		return errors.Join(queue.ErrTemporary, err)
	}
	return nil
}

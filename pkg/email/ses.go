package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"

	"github.com/dmitrymomot/reliablemail/pkg/queue"
)

// SESClient is the subset of the SESv2 API used by SESSender.
type SESClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender delivers messages through Amazon SES.
type SESSender struct {
	client    SESClient
	configSet string
	html      bool
}

// SESOption configures a SESSender.
type SESOption func(*sesOptions)

type sesOptions struct {
	client        SESClient
	configOptions []func(*config.LoadOptions) error
}

// WithSESClient sets a pre-configured client. Useful for testing with mocks.
func WithSESClient(client SESClient) SESOption {
	return func(o *sesOptions) {
		o.client = client
	}
}

// WithSESConfigOption adds a custom AWS config option.
func WithSESConfigOption(option func(*config.LoadOptions) error) SESOption {
	return func(o *sesOptions) {
		o.configOptions = append(o.configOptions, option)
	}
}

// NewSESSender creates an SES-backed sender. Static credentials are used when
// both key fields are set; otherwise the default AWS credential chain applies.
func NewSESSender(ctx context.Context, cfg Config, opts ...SESOption) (*SESSender, error) {
	options := &sesOptions{}
	for _, opt := range opts {
		opt(options)
	}

	client := options.client
	if client == nil {
		if cfg.AWSRegion == "" {
			return nil, fmt.Errorf("%w: AWS_REGION is required", ErrInvalidConfig)
		}

		awsOptions := []func(*config.LoadOptions) error{
			config.WithRegion(cfg.AWSRegion),
		}
		if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
			awsOptions = append(awsOptions,
				config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					cfg.AWSAccessKeyID,
					cfg.AWSSecretAccessKey,
					"",
				)),
			)
		}
		awsOptions = append(awsOptions, options.configOptions...)

		awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}

		client = sesv2.NewFromConfig(awsConfig, func(o *sesv2.Options) {
			if cfg.SESEndpoint != "" {
				o.BaseEndpoint = aws.String(cfg.SESEndpoint)
			}
		})
	}

	return &SESSender{
		client:    client,
		configSet: cfg.SESConfigSet,
		html:      cfg.HTMLBody,
	}, nil
}

// Send delivers one message.
func (s *SESSender) Send(ctx context.Context, job queue.Job) error {
	m := MessageFromJob(job)

	content := &types.Content{Data: aws.String(m.Body), Charset: aws.String("UTF-8")}
	body := &types.Body{Text: content}
	if s.html {
		body = &types.Body{Html: content}
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.From()),
		Destination:      &types.Destination{ToAddresses: []string{m.To()}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(m.Subject), Charset: aws.String("UTF-8")},
				Body:    body,
			},
		},
	}
	if s.configSet != "" {
		input.ConfigurationSetName = aws.String(s.configSet)
	}

	_, err := s.client.SendEmail(ctx, input)
	return classifySESError(err)
}

// classifySESError maps SES errors onto the queue delivery classes.
func classifySESError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "MessageRejected", "BadRequestException", "MailFromDomainNotVerifiedException":
			return errors.Join(queue.ErrRejected, err)
		case "TooManyRequestsException", "LimitExceededException", "SendingPausedException":
			return errors.Join(queue.ErrTemporary, err)
		default:
			return fmt.Errorf("%w (code: %s): %w", ErrFailedToSendEmail, apiErr.ErrorCode(), err)
		}
	}

	// Anything without an API error code never reached SES.
	return errors.Join(queue.ErrTemporary, err)
}

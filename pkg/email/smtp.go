package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/reliablemail/pkg/logger"
	"github.com/dmitrymomot/reliablemail/pkg/queue"
)

// SMTP reply codes that indicate a relay misconfiguration rather than a bad message.
const (
	smtpAuthRequired = 530
	smtpAuthFailed   = 535
)

// SMTPSender relays messages through an SMTP server, optionally signing them with DKIM.
type SMTPSender struct {
	addr      string
	host      string
	helo      string
	timeout   time.Duration
	startTLS  bool
	tlsConfig *tls.Config
	auth      smtp.Auth
	signer    *DKIMSigner
	html      bool
	log       *slog.Logger
	now       func() time.Time
}

// SMTPOption configures an SMTPSender.
type SMTPOption func(*SMTPSender)

// WithSMTPLogger sets the logger used for non-fatal relay events.
func WithSMTPLogger(log *slog.Logger) SMTPOption {
	return func(s *SMTPSender) {
		if log != nil {
			s.log = log
		}
	}
}

// WithSMTPTLSConfig overrides the STARTTLS configuration.
func WithSMTPTLSConfig(cfg *tls.Config) SMTPOption {
	return func(s *SMTPSender) {
		s.tlsConfig = cfg
	}
}

// NewSMTPSender creates an SMTP relay sender.
func NewSMTPSender(cfg Config, opts ...SMTPOption) (*SMTPSender, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("%w: SMTP_HOST is required", ErrInvalidConfig)
	}
	if cfg.SMTPPort <= 0 || cfg.SMTPPort > 65535 {
		return nil, fmt.Errorf("%w: SMTP_PORT must be between 1 and 65535", ErrInvalidConfig)
	}

	signer, err := NewDKIMSigner(cfg)
	if err != nil {
		return nil, err
	}

	s := &SMTPSender{
		addr:     net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		host:     cfg.SMTPHost,
		helo:     cfg.SMTPHelo,
		timeout:  cfg.SMTPTimeout,
		startTLS: cfg.SMTPStartTLS,
		tlsConfig: &tls.Config{
			ServerName: cfg.SMTPHost,
			MinVersion: tls.VersionTLS12,
		},
		signer: signer,
		html:   cfg.HTMLBody,
		log:    slog.Default(),
		now:    time.Now,
	}
	if s.helo == "" {
		s.helo = "localhost"
	}
	if s.timeout <= 0 {
		s.timeout = 30 * time.Second
	}
	if cfg.SMTPUsername != "" {
		s.auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}

	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Backend(BackendSMTP))
	return s, nil
}

// Send builds, signs and relays one message.
func (s *SMTPSender) Send(ctx context.Context, job queue.Job) error {
	m := MessageFromJob(job)

	raw, err := s.buildMessage(m)
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	raw, err = s.signer.Sign(raw, m.FromEmail)
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}

	return classifySMTPError(s.deliver(ctx, m.FromEmail, m.ToEmail, raw))
}

func (s *SMTPSender) buildMessage(m Message) ([]byte, error) {
	contentType := "text/plain; charset=UTF-8"
	if s.html {
		contentType = "text/html; charset=UTF-8"
	}

	var buf bytes.Buffer
	header := func(k, v string) {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(v)
		buf.WriteString("\r\n")
	}
	header("From", m.From())
	header("To", m.To())
	header("Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	header("Date", s.now().Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), addressDomain(m.FromEmail)))
	header("MIME-Version", "1.0")
	header("Content-Type", contentType)
	header("Content-Transfer-Encoding", "quoted-printable")
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	if _, err := qp.Write([]byte(m.Body)); err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *SMTPSender) deliver(ctx context.Context, from, to string, data []byte) error {
	dialer := &net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(s.timeout)); err != nil {
		return fmt.Errorf("set deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return fmt.Errorf("new client: %w", err)
	}
	defer client.Close()

	if err := client.Hello(s.helo); err != nil {
		return fmt.Errorf("helo: %w", err)
	}

	if s.startTLS {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			return fmt.Errorf("%w: relay does not offer STARTTLS, set SMTP_STARTTLS=false for plaintext relays", ErrInvalidConfig)
		}
		if err := client.StartTLS(s.tlsConfig); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if s.auth != nil {
		if ok, _ := client.Extension("AUTH"); !ok {
			return fmt.Errorf("%w: relay does not offer AUTH but SMTP_USER is set", ErrInvalidConfig)
		}
		if err := client.Auth(s.auth); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data start: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("data write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("data close: %w", err)
	}

	// The message is accepted once DATA completes.
	if err := client.Quit(); err != nil {
		s.log.DebugContext(ctx, "smtp quit failed", logger.Error(err))
	}
	return nil
}

// classifySMTPError maps relay errors onto the queue delivery classes.
// 5xx replies reject the message, 4xx replies and connection problems are temporary.
// Relay capability mismatches are configuration failures and never retried.
func classifySMTPError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInvalidConfig) {
		return errors.Join(ErrFailedToSendEmail, err)
	}

	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		switch {
		case protoErr.Code == smtpAuthRequired || protoErr.Code == smtpAuthFailed:
			return errors.Join(ErrFailedToSendEmail, err)
		case protoErr.Code >= 500:
			return errors.Join(queue.ErrRejected, err)
		case protoErr.Code >= 400:
			return errors.Join(queue.ErrTemporary, err)
		}
		return errors.Join(ErrFailedToSendEmail, err)
	}

	return errors.Join(queue.ErrTemporary, err)
}

package email

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/reliablemail/pkg/logger"
	"github.com/dmitrymomot/reliablemail/pkg/queue"
)

// LogSender writes every message to a logger instead of delivering it.
type LogSender struct {
	log *slog.Logger
}

// NewLogSender returns a sender that logs at info level. A nil logger uses slog.Default.
func NewLogSender(log *slog.Logger) *LogSender {
	if log == nil {
		log = slog.Default()
	}
	return &LogSender{log: log.With(logger.Backend(BackendLogger))}
}

// Send logs the message and always succeeds.
func (s *LogSender) Send(ctx context.Context, job queue.Job) error {
	m := MessageFromJob(job)
	s.log.InfoContext(ctx, "sending email",
		slog.String("subject", m.Subject),
		slog.String("to", m.To()),
		slog.String("from", m.From()),
		slog.Int("body_size", len(m.Body)),
	)
	return nil
}

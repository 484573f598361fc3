package email

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/reliablemail/pkg/queue"
)

// FileSender saves messages to a directory instead of sending them.
// Each message produces a body file and a JSON metadata file sharing one base name.
type FileSender struct {
	dir  string
	html bool
	now  func() time.Time
}

// NewFileSender creates a sender writing into dir. The directory is created on first send.
func NewFileSender(dir string, html bool) (*FileSender, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("%w: EMAIL_DEV_DIR is required", ErrInvalidConfig)
	}
	return &FileSender{dir: dir, html: html, now: time.Now}, nil
}

// Dir returns the output directory.
func (s *FileSender) Dir() string {
	return s.dir
}

type fileMetadata struct {
	Timestamp string `json:"timestamp"`
	Subject   string `json:"subject"`
	To        string `json:"to"`
	From      string `json:"from"`
	BodyFile  string `json:"body_file"`
}

// Send writes the message body and its metadata.
func (s *FileSender) Send(_ context.Context, job queue.Job) error {
	m := MessageFromJob(job)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %v", ErrFailedToSendEmail, err)
	}

	now := s.now()
	base := fmt.Sprintf("%s_%s_%s",
		now.Format("2006_01_02_150405"),
		sanitizeFilename(m.Subject),
		uuid.NewString()[:8],
	)

	ext := ".txt"
	if s.html {
		ext = ".html"
	}
	bodyFile := base + ext
	if err := os.WriteFile(filepath.Join(s.dir, bodyFile), []byte(m.Body), 0o644); err != nil {
		return fmt.Errorf("%w: failed to write body file: %v", ErrFailedToSendEmail, err)
	}

	meta, err := json.MarshalIndent(fileMetadata{
		Timestamp: now.Format(time.RFC3339),
		Subject:   m.Subject,
		To:        m.To(),
		From:      m.From(),
		BodyFile:  bodyFile,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to marshal metadata: %v", ErrFailedToSendEmail, err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, base+".json"), meta, 0o644); err != nil {
		return fmt.Errorf("%w: failed to write metadata file: %v", ErrFailedToSendEmail, err)
	}
	return nil
}

var sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// sanitizeFilename keeps alphanumerics, dash, underscore and dot, truncated to 100 bytes.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = sanitizeRegex.ReplaceAllString(s, "")

	const maxLength = 100
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}

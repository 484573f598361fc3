package frontend

import "time"

// Config holds ingress settings.
type Config struct {
	// DefaultFromEmail and DefaultFromName fill in submissions without a sender.
	DefaultFromEmail string        `env:"EMAIL_FROM" envDefault:"no-reply@example.org"`
	DefaultFromName  string        `env:"EMAIL_FROM_NAME"`
	MaxBodyBytes     int64         `env:"HTTP_MAX_BODY_BYTES" envDefault:"1048576"`
	ReadyTimeout     time.Duration `env:"HTTP_READY_TIMEOUT" envDefault:"2s"`

	// RateLimit is the number of submissions per minute accepted from one
	// client address. Zero disables the limit.
	RateLimit int `env:"HTTP_RATE_LIMIT" envDefault:"0"`
	RateBurst int `env:"HTTP_RATE_BURST" envDefault:"10"`
}

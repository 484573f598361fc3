package email

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/reliablemail/pkg/queue"
)

// Built-in backend names.
const (
	BackendLogger   = "logger"
	BackendFile     = "file"
	BackendPostmark = "postmark"
	BackendSES      = "ses"
	BackendSMTP     = "smtp"
)

// Factory builds a sender from configuration.
type Factory func(ctx context.Context, cfg Config, log *slog.Logger) (queue.Sender, error)

// Registry maps backend names to sender factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry with every built-in backend.
// "aws" is accepted as an alias of "ses".
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(BackendLogger, func(_ context.Context, _ Config, log *slog.Logger) (queue.Sender, error) {
		return NewLogSender(log), nil
	})
	r.MustRegister(BackendFile, func(_ context.Context, cfg Config, _ *slog.Logger) (queue.Sender, error) {
		return NewFileSender(cfg.DevDir, cfg.HTMLBody)
	})
	r.MustRegister(BackendPostmark, func(_ context.Context, cfg Config, _ *slog.Logger) (queue.Sender, error) {
		return NewPostmarkSender(cfg)
	})
	ses := func(ctx context.Context, cfg Config, _ *slog.Logger) (queue.Sender, error) {
		return NewSESSender(ctx, cfg)
	}
	r.MustRegister(BackendSES, ses)
	r.MustRegister("aws", ses)
	r.MustRegister(BackendSMTP, func(_ context.Context, cfg Config, log *slog.Logger) (queue.Sender, error) {
		return NewSMTPSender(cfg, WithSMTPLogger(log))
	})
	return r
}

// Register adds a backend. Names are unique.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" || factory == nil {
		return ErrInvalidBackend
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("%w: %s", ErrBackendRegistered, name)
	}
	r.factories[name] = factory
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Names returns the registered backend names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Build creates the sender registered under name.
func (r *Registry) Build(ctx context.Context, name string, cfg Config, log *slog.Logger) (queue.Sender, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	if log == nil {
		log = slog.Default()
	}

	sender, err := factory(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("build %s backend: %w", name, err)
	}
	return sender, nil
}

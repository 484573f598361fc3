package logger

import (
	"context"
	"log/slog"
)

// ContextExtractor returns an attribute derived from ctx, or false when ctx
// carries nothing to log.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// contextHandler adds the attributes of its extractors to every record
// handled with a context.
type contextHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
}

// newContextHandler wraps next. Nil extractors are dropped; wrapping another
// contextHandler merges the extractor lists instead of nesting.
func newContextHandler(next slog.Handler, extractors ...ContextExtractor) *contextHandler {
	var merged []ContextExtractor
	if inner, ok := next.(*contextHandler); ok {
		next = inner.next
		merged = append(merged, inner.extractors...)
	}
	for _, ex := range extractors {
		if ex != nil {
			merged = append(merged, ex)
		}
	}
	return &contextHandler{next: next, extractors: merged}
}

// WithExtractors returns a logger that also logs the attributes of extractors.
func WithExtractors(log *slog.Logger, extractors ...ContextExtractor) *slog.Logger {
	if log == nil {
		log = Discard()
	}
	return slog.New(newContextHandler(log.Handler(), extractors...))
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	if ctx != nil {
		for _, ex := range h.extractors {
			if attr, ok := ex(ctx); ok {
				rec.AddAttrs(attr)
			}
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name), extractors: h.extractors}
}

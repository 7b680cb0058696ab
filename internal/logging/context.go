package logging

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	sessionIDKey ctxKey = iota
	positionKey
)

// position is the (slide, stage) pair a log record refers to.
type position struct {
	slide int
	stage int
}

// WithSession returns a context with the presentation session ID set.
func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// WithPosition returns a context with the current slide and stage set.
func WithPosition(ctx context.Context, slide, stage int) context.Context {
	return context.WithValue(ctx, positionKey, position{slide: slide, stage: stage})
}

// SessionID extracts the session ID from the context, or "" if absent.
func SessionID(ctx context.Context) string {
	v, _ := ctx.Value(sessionIDKey).(string)
	return v
}

// Position extracts the slide and stage from the context. ok is false when
// no position was set.
func Position(ctx context.Context) (slide, stage int, ok bool) {
	p, ok := ctx.Value(positionKey).(position)
	return p.slide, p.stage, ok
}

// LogWith returns a logger enriched with correlation attributes from the context.
// Only values present in the context are added.
func LogWith(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if id := SessionID(ctx); id != "" {
		logger = logger.With(slog.String("session_id", id))
	}
	if slide, stage, ok := Position(ctx); ok {
		logger = logger.With(slog.Int("slide", slide), slog.Int("stage", stage))
	}
	return logger
}

// CorrelationHandler wraps an slog.Handler, automatically injecting
// correlation attributes from the context into every log record.
// Use with slog.New(NewCorrelationHandler(inner)) so callers can use
// logger.InfoContext(ctx, ...) and the attributes appear automatically.
type CorrelationHandler struct {
	inner slog.Handler
}

// NewCorrelationHandler wraps the given handler with automatic correlation injection.
func NewCorrelationHandler(inner slog.Handler) *CorrelationHandler {
	return &CorrelationHandler{inner: inner}
}

func (h *CorrelationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *CorrelationHandler) Handle(ctx context.Context, r slog.Record) error {
	if v := SessionID(ctx); v != "" {
		r.AddAttrs(slog.String("session_id", v))
	}
	if slide, stage, ok := Position(ctx); ok {
		r.AddAttrs(slog.Int("slide", slide), slog.Int("stage", stage))
	}
	return h.inner.Handle(ctx, r)
}

func (h *CorrelationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *CorrelationHandler) WithGroup(name string) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithGroup(name)}
}

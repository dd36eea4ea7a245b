package logger

import (
	"context"
	"log/slog"
)

// ctxKey keys the slog attributes carried inside a context.Context.
type ctxKey struct{}

// ContextHandler augments records with attributes stored in the
// context.Context passed to methods like slog.ErrorContext, so per-request
// values (operation name, mailbox) follow the call without threading a
// logger through every signature.
type ContextHandler struct {
	slog.Handler
}

// NewContextHandler wraps handler with context-attribute support.
func NewContextHandler(handler slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: handler}
}

// Handle appends the context-carried attributes to the record before
// delegating to the wrapped handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(ctxKey{}).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}

	return h.Handler.Handle(ctx, r)
}

// WithAttrs returns a context carrying the given slog attributes in addition
// to any the parent already holds.
func WithAttrs(parent context.Context, attrs ...slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}

	if existing, ok := parent.Value(ctxKey{}).([]slog.Attr); ok {
		existing = append(existing, attrs...)
		return context.WithValue(parent, ctxKey{}, existing)
	}

	return context.WithValue(parent, ctxKey{}, attrs)
}

// ReplaceAttr renders error attribute values as their string form.
func ReplaceAttr(_ []string, attr slog.Attr) slog.Attr {
	if attr.Value.Kind() == slog.KindAny {
		if err, ok := attr.Value.Any().(error); ok {
			attr.Value = slog.StringValue(err.Error())
		}
	}

	return attr
}

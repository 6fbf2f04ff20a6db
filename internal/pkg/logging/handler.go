package logging

import (
	"context"
	"log/slog"

	"github.com/Kargones/emprev/internal/pkg/logctx"

	"go.opentelemetry.io/otel/trace"
)

// Ключи атрибутов, которые добавляет ContextHandler.
const (
	// ContextKey — группа с полями контекста логирования. Отдельная группа
	// исключает совпадение ключей контекста с атрибутами самой записи.
	ContextKey   = "context"
	SpanIDKey    = "span_id"
	OTelTraceKey = "otel_trace_id"
)

// ContextHandler оборачивает slog.Handler и дополняет каждую запись
// полями контекста логирования (logctx) и идентификаторами активного span-а.
//
// Поля контекста не сохраняются в handler-е: они читаются из ctx
// в момент записи, поэтому один логгер безопасно разделяется между
// параллельными цепочками вызовов.
type ContextHandler struct {
	next slog.Handler
}

// NewContextHandler создаёт ContextHandler поверх next.
func NewContextHandler(next slog.Handler) *ContextHandler {
	return &ContextHandler{next: next}
}

// Enabled делегирует проверку уровня обёрнутому handler-у.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle добавляет атрибуты из ctx и передаёт запись дальше.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if attrs := logctx.Attrs(ctx); len(attrs) > 0 {
			r.AddAttrs(slog.Attr{Key: ContextKey, Value: slog.GroupValue(attrs...)})
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			r.AddAttrs(
				slog.String(OTelTraceKey, sc.TraceID().String()),
				slog.String(SpanIDKey, sc.SpanID().String()),
			)
		}
	}
	return h.next.Handle(ctx, r)
}

// WithAttrs возвращает ContextHandler с атрибутами на обёрнутом handler-е.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{next: h.next.WithAttrs(attrs)}
}

// WithGroup возвращает ContextHandler с группой на обёрнутом handler-е.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{next: h.next.WithGroup(name)}
}

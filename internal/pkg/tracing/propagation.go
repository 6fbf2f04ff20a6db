package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// propagator читает W3C traceparent/tracestate входящих запросов.
var propagator = propagation.TraceContext{}

// RequestContext связывает context входящего запроса с request ID и трейсом.
// traceparent вызывающего сервиса имеет приоритет: span-ы запроса продолжают
// его трейс. Без traceparent трейсом становится requestID (ContextWithRemoteTrace).
func RequestContext(ctx context.Context, header http.Header, requestID string) context.Context {
	ctx = WithRequestID(ctx, requestID)
	if header != nil {
		extracted := propagator.Extract(ctx, propagation.HeaderCarrier(header))
		if trace.SpanContextFromContext(extracted).IsValid() {
			return extracted
		}
	}
	return ContextWithRemoteTrace(ctx, requestID)
}

// ContextWithRemoteTrace делает request ID trace ID-ом удалённого родителя,
// чтобы span-ы запроса и записи логов имели один идентификатор.
// requestID не из 32 hex символов оставляет ctx без изменений.
func ContextWithRemoteTrace(ctx context.Context, requestID string) context.Context {
	traceID, err := trace.TraceIDFromHex(requestID)
	if err != nil {
		return ctx
	}
	return trace.ContextWithRemoteSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	}))
}

// Package tracing связывает записи логов одной цепочки вызовов:
// request ID (корреляционный ключ) и OpenTelemetry span-ы.
//
// Формат request ID: 32 hex символа (16 байт), совместимый с W3C Trace Context,
// поэтому он же используется как OTel trace ID входящего запроса.
//
//	id := tracing.GenerateRequestID()
//	ctx = tracing.WithRequestID(ctx, id)
//	facade.BusinessOperation(ctx, "createEmployee", "создан сотрудник %s", empID)
package tracing

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Kargones/emprev/internal/pkg/logctx"
)

// RequestIDKey — ключ request ID в контексте логирования.
const RequestIDKey = "request_id"

// fallbackCounter обеспечивает уникальность fallback ID при отказе crypto/rand.
var fallbackCounter atomic.Uint64

// requestIDKey — приватный ключ context.
type requestIDKey struct{}

// GenerateRequestID генерирует 32-символьный hex ID через crypto/rand.
// При ошибке crypto/rand возвращает ID из timestamp и счётчика.
func GenerateRequestID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fallbackRequestID()
	}
	return hex.EncodeToString(b)
}

// fallbackRequestID: %016x для uint64 даёт ровно 16 символов, итого 32.
func fallbackRequestID() string {
	counter := fallbackCounter.Add(1)
	timestamp := uint64(time.Now().UnixNano())
	return fmt.Sprintf("%016x%016x", timestamp, counter)
}

// WithRequestID возвращает context с request ID.
// ID также попадает в контекст логирования и во все записи цепочки.
func WithRequestID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, requestIDKey{}, id)
	return logctx.Set(ctx, RequestIDKey, id)
}

// RequestIDFromContext извлекает request ID. Пустая строка — ID не установлен.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

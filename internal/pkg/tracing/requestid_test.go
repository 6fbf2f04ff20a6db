package tracing

import (
	"context"
	"encoding/hex"
	"sync"
	"testing"

	"github.com/Kargones/emprev/internal/pkg/logctx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRequestID_Format(t *testing.T) {
	id := GenerateRequestID()

	require.Len(t, id, 32)
	_, err := hex.DecodeString(id)
	assert.NoError(t, err, "request ID должен быть hex string")
}

// TestGenerateRequestID_UniqueInConcurrentCalls проверяет уникальность при параллельной генерации.
func TestGenerateRequestID_UniqueInConcurrentCalls(t *testing.T) {
	const n = 200
	ids := make(chan string, n)

	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- GenerateRequestID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{}, n)
	for id := range ids {
		_, dup := seen[id]
		assert.False(t, dup, "дубликат request ID: %s", id)
		seen[id] = struct{}{}
	}
}

func TestFallbackRequestID_FormatAndUnique(t *testing.T) {
	a := fallbackRequestID()
	b := fallbackRequestID()

	assert.Len(t, a, 32)
	assert.Len(t, b, 32)
	assert.NotEqual(t, a, b)
}

func TestWithRequestID_Roundtrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")

	assert.Equal(t, "abc", RequestIDFromContext(ctx))
}

// TestWithRequestID_AddsToLogContext проверяет что request ID попадает в контекст логирования.
func TestWithRequestID_AddsToLogContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")

	v, ok := logctx.Get(ctx, RequestIDKey)
	require.True(t, ok)
	assert.Equal(t, "abc", v)
}

func TestWithRequestID_Overwrites(t *testing.T) {
	ctx := WithRequestID(context.Background(), "first")
	ctx = WithRequestID(ctx, "second")

	assert.Equal(t, "second", RequestIDFromContext(ctx))
}

func TestRequestIDFromContext_Empty(t *testing.T) {
	var nilCtx context.Context

	assert.Empty(t, RequestIDFromContext(context.Background()))
	assert.Empty(t, RequestIDFromContext(nilCtx))
}

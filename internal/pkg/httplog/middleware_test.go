package httplog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Kargones/emprev/internal/oplog"
	"github.com/Kargones/emprev/internal/pkg/logctx"
	"github.com/Kargones/emprev/internal/pkg/testutil"
	"github.com/Kargones/emprev/internal/pkg/tracing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace/noop"
)

func newFacade() (*oplog.Facade, *testutil.LogRecorder) {
	logger, rec := testutil.NewLogRecorder()
	return oplog.New(logger, nil, oplog.DefaultPolicy()), rec
}

func apiCalls(t *testing.T, rec *testutil.LogRecorder) []testutil.Record {
	t.Helper()
	var out []testutil.Record
	for _, r := range rec.Records(t) {
		if r.Str(oplog.KeyCategory) == string(oplog.CategoryAPICall) {
			out = append(out, r)
		}
	}
	return out
}

func TestMiddleware_LogsAPICall(t *testing.T) {
	tests := []struct {
		name   string
		method string
		status int
		level  string
	}{
		{"ok", http.MethodGet, http.StatusOK, "INFO"},
		{"created", http.MethodPost, http.StatusCreated, "INFO"},
		{"not found", http.MethodGet, http.StatusNotFound, "WARN"},
		{"server error", http.MethodDelete, http.StatusBadGateway, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, rec := newFacade()
			h := Middleware(f)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))

			req := httptest.NewRequest(tt.method, "/api/employees/42", nil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			calls := apiCalls(t, rec)
			require.Len(t, calls, 1)
			assert.Equal(t, tt.level, calls[0].Str("level"))
			assert.Equal(t, tt.method, calls[0].Str(oplog.KeyMethod))
			assert.Equal(t, "/api/employees/42", calls[0].Str(oplog.KeyPath))
			assert.Equal(t, float64(tt.status), calls[0][oplog.KeyStatus])
		})
	}
}

func TestMiddleware_ImplicitOK(t *testing.T) {
	f, rec := newFacade()
	h := Middleware(f)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	calls := apiCalls(t, rec)
	require.Len(t, calls, 1)
	assert.Equal(t, float64(http.StatusOK), calls[0][oplog.KeyStatus])
}

func TestMiddleware_RequestIDPropagation(t *testing.T) {
	f, rec := newFacade()
	const incoming = "abcdef1234567890abcdef1234567890"

	var inHandler string
	h := Middleware(f)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		inHandler = tracing.RequestIDFromContext(r.Context())
		v, ok := logctx.Get(r.Context(), tracing.RequestIDKey)
		assert.True(t, ok)
		assert.Equal(t, incoming, v)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/revenue", nil)
	req.Header.Set(HeaderRequestID, incoming)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, incoming, inHandler)
	assert.Equal(t, incoming, w.Header().Get(HeaderRequestID))
	calls := apiCalls(t, rec)
	require.Len(t, calls, 1)
	assert.Equal(t, incoming, calls[0].Context()[tracing.RequestIDKey])
}

func TestMiddleware_GeneratesRequestID(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"absent", ""},
		{"too long", strings.Repeat("a", 65)},
		{"invalid characters", "id with spaces\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newFacade()
			h := Middleware(f)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(HeaderRequestID, tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			id := w.Header().Get(HeaderRequestID)
			assert.Len(t, id, 32)
			assert.NotEqual(t, tt.header, id)
		})
	}
}

func TestMiddleware_SpanNameUsesRoute(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	defer func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(noop.NewTracerProvider())
	}()

	f, _ := newFacade()
	h := Middleware(f)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	for _, path := range []string{"/api/employees/42", "/api/employees/43"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	for _, s := range spans {
		assert.Equal(t, "GET /api/employees/:id", s.Name)
		assert.Contains(t, s.Attributes, semconv.HTTPRoute("/api/employees/:id"))
	}
	assert.Contains(t, spans[0].Attributes, semconv.URLPath("/api/employees/42"))
}

func TestMiddleware_ContinuesCallerTrace(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	defer func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(noop.NewTracerProvider())
	}()

	const callerTrace = "4bf92f3577b34da6a3ce929d0e0e4736"
	f, rec := newFacade()
	h := Middleware(f)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/api/revenue", nil)
	req.Header.Set("traceparent", "00-"+callerTrace+"-00f067aa0ba902b7-01")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, callerTrace, spans[0].SpanContext.TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", spans[0].Parent.SpanID().String())
	assert.Len(t, w.Header().Get(HeaderRequestID), 32, "request ID выдаётся независимо от traceparent")

	calls := apiCalls(t, rec)
	require.Len(t, calls, 1)
	assert.Equal(t, callerTrace, calls[0].Str("otel_trace_id"))
}

func TestMiddleware_PanicRecovered(t *testing.T) {
	f, rec := newFacade()
	h := Middleware(f)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil map write")
	}))

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/revenue/7", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var errorRecord, apiRecord testutil.Record
	for _, r := range rec.Records(t) {
		switch r.Str(oplog.KeyCategory) {
		case string(oplog.CategoryError):
			errorRecord = r
		case string(oplog.CategoryAPICall):
			apiRecord = r
		}
	}
	require.NotNil(t, errorRecord)
	assert.Contains(t, errorRecord.Str(oplog.KeyError), "nil map write")
	require.NotNil(t, apiRecord)
	assert.Equal(t, "ERROR", apiRecord.Str("level"))
	assert.Equal(t, float64(http.StatusInternalServerError), apiRecord[oplog.KeyStatus])
}

func TestMiddleware_AbortHandlerPropagates(t *testing.T) {
	f, _ := newFacade()
	h := Middleware(f)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestMiddleware_AccessDenied_SecurityRecord(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		f, rec := newFacade()
		h := Middleware(f)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/revenue", nil))

		var security []testutil.Record
		for _, r := range rec.Records(t) {
			if r.Str(oplog.KeyCategory) == string(oplog.CategorySecurity) {
				security = append(security, r)
			}
		}
		require.Len(t, security, 1, "status %d", status)
		assert.Equal(t, "access_denied", security[0].Str(oplog.KeyEvent))
		assert.Equal(t, true, security[0][oplog.KeyAudit])
	}
}

func TestStatusWriter_FirstHeaderWins(t *testing.T) {
	w := &statusWriter{ResponseWriter: httptest.NewRecorder()}

	w.WriteHeader(http.StatusAccepted)
	w.WriteHeader(http.StatusTeapot)

	assert.Equal(t, http.StatusAccepted, w.Status())
	assert.NotNil(t, w.Unwrap())
}

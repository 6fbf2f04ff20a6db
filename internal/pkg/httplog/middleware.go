// Package httplog — net/http middleware, пишущий запись API вызова на каждый запрос.
//
// Middleware связывает запрос с цепочкой логирования: берёт или генерирует
// X-Request-ID, кладёт его в context и продолжает трейс вызывающего
// (traceparent) либо делает request ID trace ID-ом запроса, открывает
// server span. По завершении пишет APICall запись фасада.
// Отказ в доступе (401, 403) дополнительно пишется как событие безопасности,
// паника обработчика превращается в 500 и ERROR запись.
package httplog

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/Kargones/emprev/internal/oplog"
	"github.com/Kargones/emprev/internal/pkg/metrics"
	"github.com/Kargones/emprev/internal/pkg/tracing"

	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// HeaderRequestID — заголовок корреляционного ID запроса.
const HeaderRequestID = "X-Request-ID"

// validRequestID ограничивает принимаемые от клиента ID.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// Middleware возвращает middleware, логирующий запросы через f.
func Middleware(f *oplog.Facade) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := requestID(r)
			w.Header().Set(HeaderRequestID, id)

			ctx := tracing.RequestContext(r.Context(), r.Header, id)
			// Имя span строится по нормализованному маршруту: /employees/42 и
			// /employees/43 дают один "GET /employees/:id".
			route := metrics.NormalizeRoute(r.URL.Path)
			ctx, span := tracing.Tracer().Start(ctx, r.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.HTTPRoute(route),
					semconv.URLPath(r.URL.Path),
				),
			)
			defer span.End()

			sw := &statusWriter{ResponseWriter: w}
			serve(ctx, f, next, sw, r.WithContext(ctx))

			status := sw.Status()
			elapsed := time.Since(start)
			span.SetAttributes(semconv.HTTPResponseStatusCode(status))
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}

			if status == http.StatusUnauthorized || status == http.StatusForbidden {
				f.Security(ctx, "access_denied", fmt.Sprintf("%s %s: %d", r.Method, r.URL.Path, status))
			}
			f.APICall(ctx, r.URL.Path, r.Method, status, elapsed)
		})
	}
}

// serve вызывает next; паника превращается в 500, если ответ ещё не начат.
// http.ErrAbortHandler пробрасывается дальше: это штатный обрыв ответа.
func serve(ctx context.Context, f *oplog.Facade, next http.Handler, sw *statusWriter, r *http.Request) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel сравнивается как значение panic
			panic(rec)
		}
		f.Error(ctx, r.Method+" "+r.URL.Path, fmt.Errorf("panic: %v", rec), "обработчик запроса завершился паникой")
		if !sw.wroteHeader {
			http.Error(sw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		} else {
			sw.status = http.StatusInternalServerError
		}
	}()
	next.ServeHTTP(sw, r)
}

// requestID возвращает ID из заголовка запроса или новый.
func requestID(r *http.Request) string {
	if id := r.Header.Get(HeaderRequestID); validRequestID.MatchString(id) {
		return id
	}
	return tracing.GenerateRequestID()
}

// statusWriter запоминает код ответа.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Status возвращает записанный код; 200, если обработчик ничего не записал.
func (w *statusWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// Unwrap открывает исходный writer для http.ResponseController.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

package oplog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/Kargones/emprev/internal/pkg/apperrors"
	"github.com/Kargones/emprev/internal/pkg/logctx"
	"github.com/Kargones/emprev/internal/pkg/metrics"
	"github.com/Kargones/emprev/internal/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrNilUnit возвращается обёрткой, созданной над nil Deferred.
	ErrNilUnit = errors.New("oplog: nil deferred unit")

	// ErrUnitPanic оборачивает панику Deferred.
	ErrUnitPanic = errors.New("oplog: panic in deferred unit")
)

// Deferred — отложенное вычисление: выполняется при вызове, может блокироваться,
// завершается значением или ошибкой, отменяется через ctx.
type Deferred[T any] func(ctx context.Context) (T, error)

// Hooks — обработчики жизненного цикла одного вызова Deferred.
// Любой обработчик может быть nil. Паника обработчика перехватывается.
type Hooks[T any] struct {
	// OnStart вызывается до запуска; возвращённый context передаётся в unit и остальные обработчики.
	OnStart func(ctx context.Context) context.Context

	// OnSuccess вызывается после успешного завершения, до возврата значения.
	OnSuccess func(ctx context.Context, value T, elapsed time.Duration)

	// OnFailure вызывается после ошибки (кроме отмены), до возврата ошибки.
	OnFailure func(ctx context.Context, err error, elapsed time.Duration)

	// OnCancel вызывается если unit завершился из-за отмены ctx (context.Canceled).
	OnCancel func(ctx context.Context, elapsed time.Duration)
}

// Instrument возвращает Deferred, эквивалентный unit, с вызовом hooks.
// Значение и ошибка unit возвращаются без изменений, ровно один раз;
// дополнительных ожиданий обёртка не добавляет.
// Паника unit передаётся в OnFailure как ErrUnitPanic и затем пробрасывается дальше.
func Instrument[T any](unit Deferred[T], hooks Hooks[T]) Deferred[T] {
	return func(ctx context.Context) (T, error) {
		if unit == nil {
			var zero T
			return zero, ErrNilUnit
		}
		if ctx == nil {
			ctx = context.Background()
		}

		start := time.Now()
		if hooks.OnStart != nil {
			ctx = startSafely(ctx, hooks.OnStart)
		}

		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if hooks.OnFailure != nil {
				err := panicError(r)
				callSafely(func() { hooks.OnFailure(ctx, err, time.Since(start)) })
			}
			panic(r)
		}()

		value, err := unit(ctx)
		elapsed := time.Since(start)

		switch {
		case err == nil:
			if hooks.OnSuccess != nil {
				callSafely(func() { hooks.OnSuccess(ctx, value, elapsed) })
			}
		case isCancellation(ctx, err):
			if hooks.OnCancel != nil {
				callSafely(func() { hooks.OnCancel(ctx, elapsed) })
			}
		default:
			if hooks.OnFailure != nil {
				callSafely(func() { hooks.OnFailure(ctx, err, elapsed) })
			}
		}
		return value, err
	}
}

// isCancellation: отменой считается только context.Canceled при отменённом ctx.
// Истёкший deadline — это ошибка операции и записывается как ошибка.
func isCancellation(ctx context.Context, err error) bool {
	return errors.Is(err, context.Canceled) && errors.Is(ctx.Err(), context.Canceled)
}

// panicError превращает значение паники в ошибку OPERATION.FAILED,
// совместимую с errors.Is(err, ErrUnitPanic).
func panicError(r any) error {
	var cause error
	if err, ok := r.(error); ok {
		cause = fmt.Errorf("%w: %w", ErrUnitPanic, err)
	} else {
		cause = fmt.Errorf("%w: %v", ErrUnitPanic, r)
	}
	return apperrors.NewAppError(apperrors.ErrOperationFailed, "deferred unit panicked", cause)
}

func startSafely(ctx context.Context, onStart func(context.Context) context.Context) (out context.Context) {
	out = ctx
	defer func() {
		if recover() != nil {
			out = ctx
		}
	}()
	if next := onStart(ctx); next != nil {
		out = next
	}
	return out
}

func callSafely(fn func()) {
	defer func() {
		_ = recover()
	}()
	fn()
}

// OperationTime оборачивает unit замером времени операции operation:
//   - старт: span "operation" и DEBUG запись
//   - успех: запись Performance, значение возвращается без изменений
//   - ошибка: ERROR запись, исходная ошибка возвращается без изменений
//   - паника: как ошибка, затем паника пробрасывается вызывающему
//   - отмена: записи о завершении нет, span закрывается с атрибутом cancelled
func OperationTime[T any](f *Facade, operation string, unit Deferred[T]) Deferred[T] {
	if f == nil {
		f = New(nil, nil, DefaultPolicy())
	}
	return Instrument(unit, Hooks[T]{
		OnStart: func(ctx context.Context) context.Context {
			ctx, _ = tracing.Tracer().Start(ctx, operation)
			f.emit(ctx, slog.LevelDebug, CategoryPerformance, "операция начата", KeyOperation, operation)
			return ctx
		},
		OnSuccess: func(ctx context.Context, _ T, elapsed time.Duration) {
			f.Performance(ctx, operation, elapsed, "")
			span := trace.SpanFromContext(ctx)
			span.SetStatus(codes.Ok, "")
			span.End()
		},
		OnFailure: func(ctx context.Context, err error, elapsed time.Duration) {
			f.observe(func(c metrics.Collector) { c.RecordOperation(operation, elapsed, false) })
			f.operationError(ctx, operation, err, "", KeyDurationMs, elapsed.Milliseconds())
			msg, _ := describeError(err)
			span := trace.SpanFromContext(ctx)
			span.RecordError(err)
			span.SetStatus(codes.Error, msg)
			span.End()
		},
		OnCancel: func(ctx context.Context, _ time.Duration) {
			span := trace.SpanFromContext(ctx)
			span.SetAttributes(attribute.Bool("cancelled", true))
			span.End()
		},
	})
}

// OperationTimeWithContext — OperationTime, где unit и записи операции получают
// поля fields в контексте логирования. Context вызывающего после завершения не меняется.
func OperationTimeWithContext[T any](f *Facade, operation string, unit Deferred[T], fields map[string]string) Deferred[T] {
	fields = maps.Clone(fields)
	timed := OperationTime(f, operation, unit)
	return func(ctx context.Context) (T, error) {
		return timed(logctx.SetAll(ctx, fields))
	}
}

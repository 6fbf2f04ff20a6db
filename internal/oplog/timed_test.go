package oplog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Kargones/emprev/internal/pkg/apperrors"
	"github.com/Kargones/emprev/internal/pkg/logctx"
	"github.com/Kargones/emprev/internal/pkg/testutil"
	"github.com/Kargones/emprev/internal/pkg/tracing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

// sleepUnit возвращает value после паузы d или ошибку ctx при отмене.
func sleepUnit[T any](d time.Duration, value T) Deferred[T] {
	return func(ctx context.Context) (T, error) {
		select {
		case <-time.After(d):
			return value, nil
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

func byLevel(records []testutil.Record, level string) []testutil.Record {
	var out []testutil.Record
	for _, r := range records {
		if r.Str("level") == level {
			out = append(out, r)
		}
	}
	return out
}

func TestOperationTime_Success(t *testing.T) {
	f, rec, spy := newTestFacade(t)

	start := time.Now()
	got, err := OperationTime(f, "loadEmployees", sleepUnit(100*time.Millisecond, "test-result"))(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "test-result", got)
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)

	records := rec.Records(t)
	require.Len(t, records, 2)
	assert.Equal(t, "DEBUG", records[0].Str("level"))
	assert.Equal(t, "INFO", records[1].Str("level"))
	assert.Equal(t, string(CategoryPerformance), records[1].Str(KeyCategory))
	assert.Equal(t, "loadEmployees", records[1].Str(KeyOperation))
	assert.GreaterOrEqual(t, records[1][KeyDurationMs], float64(100))
	assert.Equal(t, []string{"loadEmployees/true"}, spy.operations)
}

func TestOperationTime_Failure_ReturnsSameError(t *testing.T) {
	f, rec, spy := newTestFacade(t)
	cause := errors.New("db unavailable")

	unit := Deferred[int](func(context.Context) (int, error) {
		time.Sleep(10 * time.Millisecond)
		return 0, cause
	})
	_, err := OperationTime(f, "saveRevenue", unit)(context.Background())

	require.Error(t, err)
	assert.Same(t, cause, err)
	assert.ErrorIs(t, err, cause)

	errRecords := byLevel(rec.Records(t), "ERROR")
	require.Len(t, errRecords, 1)
	r := errRecords[0]
	assert.Equal(t, string(CategoryError), r.Str(KeyCategory))
	assert.Equal(t, "saveRevenue", r.Str(KeyOperation))
	assert.Equal(t, "db unavailable", r.Str(KeyError))
	assert.Contains(t, r, KeyDurationMs)
	assert.Equal(t, []string{"saveRevenue/false"}, spy.operations)
}

func TestOperationTime_Cancelled_NoCompletionRecord(t *testing.T) {
	f, rec, spy := newTestFacade(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := OperationTime(f, "report", sleepUnit(5*time.Second, 1))(ctx)

	require.ErrorIs(t, err, context.Canceled)
	records := rec.Records(t)
	require.Len(t, records, 1, "только DEBUG запись о старте")
	assert.Equal(t, "DEBUG", records[0].Str("level"))
	assert.Empty(t, spy.operations)
}

func TestOperationTime_DeadlineExceeded_IsFailure(t *testing.T) {
	f, rec, _ := newTestFacade(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := OperationTime(f, "report", sleepUnit(5*time.Second, 1))(ctx)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, byLevel(rec.Records(t), "ERROR"), 1)
}

func TestOperationTime_SlowOperation_Warn(t *testing.T) {
	logger, rec := testutil.NewLogRecorder()
	f := New(logger, nil, Policy{SlowThreshold: 30 * time.Millisecond, ClientErrorStatus: 400, ServerErrorStatus: 500})

	_, err := OperationTime(f, "aggregate", sleepUnit(40*time.Millisecond, struct{}{}))(context.Background())

	require.NoError(t, err)
	warn := byLevel(rec.Records(t), "WARN")
	require.Len(t, warn, 1)
	assert.Equal(t, true, warn[0][KeySlow])
}

func TestOperationTime_NilFacade(t *testing.T) {
	got, err := OperationTime(nil, "op", sleepUnit(time.Millisecond, 7))(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestOperationTime_NilUnit(t *testing.T) {
	f, _, _ := newTestFacade(t)

	_, err := OperationTime[string](f, "op", nil)(context.Background())

	assert.ErrorIs(t, err, ErrNilUnit)
}

func TestOperationTime_Reusable(t *testing.T) {
	f, rec, _ := newTestFacade(t)
	var calls atomic.Int32
	unit := Deferred[int32](func(context.Context) (int32, error) {
		return calls.Add(1), nil
	})

	timed := OperationTime(f, "count", unit)
	first, err := timed(context.Background())
	require.NoError(t, err)
	second, err := timed(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), first)
	assert.Equal(t, int32(2), second)
	assert.Len(t, byLevel(rec.Records(t), "INFO"), 2)
}

func TestOperationTime_RecordsSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	defer func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(noop.NewTracerProvider())
	}()

	f, rec, _ := newTestFacade(t)
	_, err := OperationTime(f, "updateRevenue", sleepUnit(time.Millisecond, 1))(context.Background())
	require.NoError(t, err)
	_, err = OperationTime(f, "deleteEmployee", Deferred[int](func(context.Context) (int, error) {
		return 0, errors.New("constraint violation")
	}))(context.Background())
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "updateRevenue", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Equal(t, "deleteEmployee", spans[1].Name)
	assert.Equal(t, codes.Error, spans[1].Status.Code)
	assert.Equal(t, tracing.InstrumentationName, spans[1].InstrumentationScope.Name)

	for _, r := range rec.Records(t) {
		assert.Len(t, r.Str("otel_trace_id"), 32, "записи внутри операции содержат trace id")
	}
}

func TestOperationTime_PanicEndsSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	defer func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(noop.NewTracerProvider())
	}()

	f, rec, spy := newTestFacade(t)
	op := OperationTime(f, "importRevenue", Deferred[int](func(context.Context) (int, error) {
		panic("x")
	}))

	assert.PanicsWithValue(t, "x", func() { _, _ = op(context.Background()) })

	spans := exporter.GetSpans()
	require.Len(t, spans, 1, "span завершён несмотря на панику")
	assert.Equal(t, "importRevenue", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)

	errs := byLevel(rec.Records(t), "ERROR")
	require.Len(t, errs, 1)
	assert.Equal(t, "importRevenue", errs[0].Str(KeyOperation))
	assert.Contains(t, errs[0].Str(KeyError), "x")
	assert.Equal(t, apperrors.ErrOperationFailed, errs[0].Str(KeyErrorKind))
	assert.Contains(t, spy.operations, "importRevenue/false")
}

func TestInstrument_PanicReachesOnFailure(t *testing.T) {
	cause := errors.New("nil map write")
	var got error
	unit := Instrument(Deferred[string](func(context.Context) (string, error) {
		panic(cause)
	}), Hooks[string]{
		OnFailure: func(_ context.Context, err error, _ time.Duration) { got = err },
	})

	assert.PanicsWithValue(t, cause, func() { _, _ = unit(context.Background()) })
	assert.ErrorIs(t, got, ErrUnitPanic)
	assert.ErrorIs(t, got, cause)
}

func TestOperationTimeWithContext(t *testing.T) {
	f, rec, _ := newTestFacade(t)
	fields := map[string]string{"userId": "123", "operation": "test"}

	var seen logctx.Fields
	unit := Deferred[string](func(ctx context.Context) (string, error) {
		time.Sleep(50 * time.Millisecond)
		seen = logctx.Snapshot(ctx)
		return "test-result", nil
	})

	ctx := context.Background()
	got, err := OperationTimeWithContext(f, "withContext", unit, fields)(ctx)

	require.NoError(t, err)
	assert.Equal(t, "test-result", got)
	assert.Equal(t, logctx.Fields{"userId": "123", "operation": "test"}, seen)
	assert.Empty(t, logctx.Snapshot(ctx), "context вызывающего не меняется")

	for _, r := range rec.Records(t) {
		assert.Equal(t, "123", r.Context()["userId"])
		assert.Equal(t, "test", r.Context()["operation"])
	}

	rec.Reset()
	f.BusinessOperation(ctx, "after", "после операции")
	assert.Nil(t, rec.Only(t).Context())
}

func TestOperationTimeWithContext_FieldsCopied(t *testing.T) {
	f, _, _ := newTestFacade(t)
	fields := map[string]string{"userId": "1"}

	var seen string
	timed := OperationTimeWithContext(f, "op", Deferred[int](func(ctx context.Context) (int, error) {
		seen, _ = logctx.Get(ctx, "userId")
		return 0, nil
	}), fields)
	fields["userId"] = "2"

	_, err := timed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1", seen)
}

func TestOperationTimeWithContext_KeepsOuterFields(t *testing.T) {
	f, _, _ := newTestFacade(t)
	ctx := logctx.Set(context.Background(), "requestId", "r-1")

	var seen logctx.Fields
	_, err := OperationTimeWithContext(f, "op", Deferred[int](func(ctx context.Context) (int, error) {
		seen = logctx.Snapshot(ctx)
		return 0, nil
	}), map[string]string{"userId": "7"})(ctx)

	require.NoError(t, err)
	assert.Equal(t, logctx.Fields{"requestId": "r-1", "userId": "7"}, seen)
	assert.Equal(t, logctx.Fields{"requestId": "r-1"}, logctx.Snapshot(ctx))
}

func TestInstrument_HookPanics_DoNotAffectResult(t *testing.T) {
	unit := Deferred[string](func(context.Context) (string, error) { return "v", nil })
	hooks := Hooks[string]{
		OnStart:   func(context.Context) context.Context { panic("start") },
		OnSuccess: func(context.Context, string, time.Duration) { panic("success") },
	}

	var got string
	var err error
	assert.NotPanics(t, func() {
		got, err = Instrument(unit, hooks)(context.Background())
	})
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestInstrument_NilContext(t *testing.T) {
	var gotCtx context.Context
	unit := Deferred[int](func(ctx context.Context) (int, error) {
		gotCtx = ctx
		return 1, nil
	})

	//nolint:staticcheck // nil ctx заменяется на Background
	_, err := Instrument(unit, Hooks[int]{})(nil)

	require.NoError(t, err)
	assert.NotNil(t, gotCtx)
}

func TestInstrument_CancelHook(t *testing.T) {
	var cancelled, failed bool
	hooks := Hooks[int]{
		OnCancel:  func(context.Context, time.Duration) { cancelled = true },
		OnFailure: func(context.Context, error, time.Duration) { failed = true },
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Instrument(sleepUnit(time.Second, 1), hooks)(ctx)

	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, cancelled)
	assert.False(t, failed)
}

// Ошибка context.Canceled от зависимости при живом ctx — это сбой, а не отмена.
func TestInstrument_CanceledErrorWithLiveContext_IsFailure(t *testing.T) {
	var cancelled, failed bool
	hooks := Hooks[int]{
		OnCancel:  func(context.Context, time.Duration) { cancelled = true },
		OnFailure: func(context.Context, error, time.Duration) { failed = true },
	}
	unit := Deferred[int](func(context.Context) (int, error) { return 0, context.Canceled })

	_, err := Instrument(unit, hooks)(context.Background())

	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, cancelled)
	assert.True(t, failed)
}

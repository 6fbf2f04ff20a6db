package oplog

import (
	"context"
	"log/slog"
	"time"

	"github.com/Kargones/emprev/internal/pkg/metrics"
)

// BusinessOperation пишет INFO запись о бизнес-действии. Сообщение — template,
// отформатированный по правилам fmt; несовпадение аргументов не приводит к ошибке.
func (f *Facade) BusinessOperation(ctx context.Context, operation, template string, args ...any) {
	if f == nil {
		return
	}
	f.emit(ctx, slog.LevelInfo, CategoryBusiness, render(template, args),
		KeyOperation, operation,
	)
}

// Performance пишет запись о длительности операции: WARN при d >= Policy.SlowThreshold, иначе INFO.
func (f *Facade) Performance(ctx context.Context, operation string, d time.Duration, details string) {
	if f == nil {
		return
	}
	f.observe(func(c metrics.Collector) { c.RecordOperation(operation, d, true) })

	level := f.policy.PerformanceLevel(d)
	msg := "операция выполнена"
	args := []any{KeyOperation, operation, KeyDurationMs, d.Milliseconds()}
	if level > slog.LevelInfo {
		msg = "медленная операция"
		args = append(args, KeySlow, true)
	}
	if details != "" {
		args = append(args, KeyDetails, details)
	}
	f.emit(ctx, level, CategoryPerformance, msg, args...)
}

// Error пишет ERROR запись об ошибке операции. err может быть nil.
func (f *Facade) Error(ctx context.Context, operation string, err error, details string) {
	f.operationError(ctx, operation, err, details)
}

func (f *Facade) operationError(ctx context.Context, operation string, err error, details string, extra ...any) {
	if f == nil {
		return
	}
	msg, kind := describeError(err)
	args := []any{KeyOperation, operation, KeyError, msg}
	if kind != "" {
		args = append(args, KeyErrorKind, kind)
	}
	if details != "" {
		args = append(args, KeyDetails, details)
	}
	f.emit(ctx, slog.LevelError, CategoryError, "ошибка операции", append(args, extra...)...)
}

// DataAccess пишет INFO запись о чтении или изменении записи resource с идентификатором id.
func (f *Facade) DataAccess(ctx context.Context, action, resource, id string) {
	if f == nil {
		return
	}
	f.emit(ctx, slog.LevelInfo, CategoryDataAccess, "доступ к данным",
		KeyAction, action,
		KeyResource, resource,
		KeyResourceID, id,
	)
}

// Security пишет WARN запись для аудита.
func (f *Facade) Security(ctx context.Context, event, details string) {
	if f == nil {
		return
	}
	f.emit(ctx, slog.LevelWarn, CategorySecurity, "событие безопасности",
		KeyEvent, event,
		KeyDetails, details,
		KeyAudit, true,
	)
}

// APICall пишет запись об исходе API вызова. Уровень определяет Policy.APICallLevel.
func (f *Facade) APICall(ctx context.Context, path, method string, status int, d time.Duration) {
	if f == nil {
		return
	}
	f.observe(func(c metrics.Collector) { c.RecordAPICall(method, path, status, d) })

	args := []any{
		KeyMethod, method,
		KeyPath, path,
		KeyStatus, status,
		KeyDurationMs, d.Milliseconds(),
	}
	if f.policy.IsSlow(d) {
		args = append(args, KeySlow, true)
	}
	f.emit(ctx, f.policy.APICallLevel(status, d), CategoryAPICall, "API вызов", args...)
}

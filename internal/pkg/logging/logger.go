// Package logging предоставляет интерфейс и реализации для структурированного логирования.
package logging

import (
	"context"
	"log/slog"
)

// Logger определяет интерфейс для структурированного логирования.
// Реализации: SlogAdapter (slog из stdlib) и NopLogger.
//
// Методы принимают сообщение и опциональные key-value пары:
//
//	logger.Info("сотрудник создан", "employee_id", id, "duration_ms", 150)
//
// Записи, созданные через Log(ctx, ...), дополняются полями контекста
// логирования (пакет logctx) и идентификаторами OTel span-а из ctx.
type Logger interface {
	// Debug записывает сообщение уровня DEBUG.
	Debug(msg string, args ...any)

	// Info записывает сообщение уровня INFO.
	Info(msg string, args ...any)

	// Warn записывает сообщение уровня WARN.
	Warn(msg string, args ...any)

	// Error записывает сообщение уровня ERROR.
	Error(msg string, args ...any)

	// Log записывает сообщение заданного уровня в рамках цепочки вызовов ctx.
	Log(ctx context.Context, level slog.Level, msg string, args ...any)

	// Enabled сообщает, будет ли записано сообщение уровня level.
	Enabled(ctx context.Context, level slog.Level) bool

	// With возвращает новый Logger с добавленными атрибутами.
	//
	//	logger.With("component", "sqllog").Info("соединение открыто")
	With(args ...any) Logger
}

package logging

import (
	"context"
	"log/slog"
)

// NopLogger — реализация Logger, которая ничего не делает.
type NopLogger struct{}

// NewNopLogger создаёт Logger, который игнорирует все сообщения.
func NewNopLogger() Logger {
	return &NopLogger{}
}

func (n *NopLogger) Debug(_ string, _ ...any) {}

func (n *NopLogger) Info(_ string, _ ...any) {}

func (n *NopLogger) Warn(_ string, _ ...any) {}

func (n *NopLogger) Error(_ string, _ ...any) {}

func (n *NopLogger) Log(_ context.Context, _ slog.Level, _ string, _ ...any) {}

// Enabled всегда false: вызывающий код может пропустить подготовку атрибутов.
func (n *NopLogger) Enabled(_ context.Context, _ slog.Level) bool { return false }

// With возвращает тот же NopLogger, атрибуты всё равно игнорируются.
func (n *NopLogger) With(_ ...any) Logger {
	return n
}

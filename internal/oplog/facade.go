// Package oplog — фасад логирования бэкенда сотрудников и выручки.
//
// Facade пишет структурированные записи по категориям (бизнес-операции,
// производительность, ошибки, доступ к данным, безопасность, API вызовы),
// дополняет их контекстом цепочки вызовов (пакет logctx) и оборачивает
// отложенные вычисления замером времени (OperationTime).
//
// Логирование никогда не прерывает вызывающий код: методы фасада не
// возвращают ошибок и не паникуют. Ошибки обёрнутых операций
// возвращаются вызывающему без изменений.
//
//	f := oplog.New(logger, collector, oplog.DefaultPolicy())
//	ctx = f.SetContext(ctx, "userId", "123")
//	f.BusinessOperation(ctx, "createEmployee", "создан сотрудник %s", id)
//
//	load := oplog.OperationTime(f, "loadRevenue", repo.LoadRevenue)
//	revenue, err := load(ctx)
package oplog

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Kargones/emprev/internal/pkg/logctx"
	"github.com/Kargones/emprev/internal/pkg/logging"
	"github.com/Kargones/emprev/internal/pkg/metrics"
)

// Facade пишет категоризированные записи. Безопасен для параллельного использования:
// собственного изменяемого состояния нет, контекст приходит через ctx.
type Facade struct {
	logger  logging.Logger
	metrics metrics.Collector
	policy  Policy
}

// New создаёт Facade. nil logger заменяется на NopLogger, nil collector — на NopCollector.
func New(logger logging.Logger, collector metrics.Collector, policy Policy) *Facade {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if collector == nil {
		collector = metrics.NewNopCollector()
	}
	return &Facade{
		logger:  logger,
		metrics: collector,
		policy:  policy,
	}
}

// Policy возвращает пороги фасада.
func (f *Facade) Policy() Policy {
	return f.policy
}

// SetContext добавляет пару в контекст логирования цепочки ctx.
func (f *Facade) SetContext(ctx context.Context, key, value string) context.Context {
	return logctx.Set(ctx, key, value)
}

// ClearContext возвращает ctx без полей контекста логирования.
func (f *Facade) ClearContext(ctx context.Context) context.Context {
	return logctx.Clear(ctx)
}

// emit пишет запись категории category. Паника логгера или атрибутов
// перехватывается и заменяется минимальной записью.
func (f *Facade) emit(ctx context.Context, level slog.Level, category Category, msg string, args ...any) {
	if f == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer func() {
		if r := recover(); r != nil {
			f.emitFallback(ctx, level, category, r)
		}
	}()

	f.observe(func(c metrics.Collector) { c.RecordEvent(string(category), level.String()) })
	if !f.logger.Enabled(ctx, level) {
		return
	}
	f.logger.Log(ctx, level, msg, append([]any{KeyCategory, string(category)}, args...)...)
}

func (f *Facade) emitFallback(ctx context.Context, level slog.Level, category Category, cause any) {
	defer func() {
		if r := recover(); r != nil {
			_, _ = fmt.Fprintf(os.Stderr, "oplog: запись %s отброшена: %v\n", category, r) //nolint:errcheck // last resort
		}
	}()
	f.logger.Log(ctx, level, "запись не сформирована",
		KeyCategory, string(category),
		"log_error", fmt.Sprintf("%v", cause),
	)
}

// observe передаёт метрику коллектору. Паника коллектора не выходит за пределы фасада.
func (f *Facade) observe(record func(c metrics.Collector)) {
	defer func() {
		_ = recover()
	}()
	record(f.metrics)
}

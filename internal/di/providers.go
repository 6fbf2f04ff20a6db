package di

import (
	"context"
	"log/slog"

	"github.com/Kargones/emprev/internal/config"
	"github.com/Kargones/emprev/internal/constants"
	"github.com/Kargones/emprev/internal/oplog"
	"github.com/Kargones/emprev/internal/pkg/logging"
	"github.com/Kargones/emprev/internal/pkg/metrics"
	"github.com/Kargones/emprev/internal/pkg/sqllog"
	"github.com/Kargones/emprev/internal/pkg/tracing"
)

// ProvideInstanceID генерирует идентификатор экземпляра через tracing.GenerateRequestID().
func ProvideInstanceID() InstanceID {
	return InstanceID(tracing.GenerateRequestID())
}

// ProvideLogger создаёт Logger на основе секции Logging.
// При nil Config используются значения logging.DefaultConfig().
// Все записи получают атрибуты service и instance_id.
func ProvideLogger(cfg *config.Config, id InstanceID) logging.Logger {
	logCfg := logging.DefaultConfig()
	if cfg != nil {
		logCfg = cfg.Logging.ToLogging()
	}
	return logging.NewLogger(logCfg).With(
		"service", constants.ServiceName,
		"instance_id", string(id),
	)
}

// ProvideMetricsCollector создаёт Collector на основе секции Metrics.
// При ошибке создания возвращает NopCollector и логирует ошибку.
func ProvideMetricsCollector(cfg *config.Config, logger logging.Logger) metrics.Collector {
	if cfg == nil {
		return metrics.NewNopCollector()
	}

	collector, err := metrics.NewCollector(cfg.Metrics.ToMetrics(), logger)
	if err != nil {
		logger.Error("ошибка создания MetricsCollector, используется NopCollector",
			slog.String("error", err.Error()),
		)
		return metrics.NewNopCollector()
	}
	return collector
}

// ProvideTracerProvider создаёт и регистрирует OTel TracerProvider.
// При выключенном трейсинге или ошибке возвращает nop shutdown.
func ProvideTracerProvider(cfg *config.Config, logger logging.Logger) func(context.Context) error {
	if cfg == nil {
		return tracing.NewNopTracerProvider()
	}

	shutdown, err := tracing.NewTracerProvider(cfg.Tracing.ToTracing(), logger)
	if err != nil {
		logger.Error("ошибка инициализации tracing, используется nop provider",
			slog.String("error", err.Error()),
		)
		return tracing.NewNopTracerProvider()
	}
	return shutdown
}

// ProvideFacade создаёт фасад логирования с порогами из секции Thresholds.
func ProvideFacade(cfg *config.Config, logger logging.Logger, collector metrics.Collector) *oplog.Facade {
	policy := oplog.DefaultPolicy()
	if cfg != nil {
		policy = cfg.Thresholds.Policy()
	}
	return oplog.New(logger, collector, policy)
}

// ProvideDatabase подключается к SQL Server, если секция Database включена.
// Выключенная база — не ошибка: возвращается nil.
func ProvideDatabase(cfg *config.Config, facade *oplog.Facade) (*sqllog.DB, error) {
	if cfg == nil || !cfg.Database.Enabled {
		return nil, nil
	}

	opts := cfg.Database.Options()
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = sqllog.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return sqllog.Open(ctx, opts, facade)
}

package di

import (
	"context"
	"errors"

	"github.com/Kargones/emprev/internal/config"
	"github.com/Kargones/emprev/internal/oplog"
	"github.com/Kargones/emprev/internal/pkg/logging"
	"github.com/Kargones/emprev/internal/pkg/metrics"
	"github.com/Kargones/emprev/internal/pkg/sqllog"
)

// InstanceID — идентификатор запущенного экземпляра сервиса.
type InstanceID string

// App содержит инициализированные зависимости сервиса.
// Создаётся через Wire DI в InitializeApp().
//
// При добавлении новых зависимостей:
// 1. Добавить поле в App struct
// 2. Создать провайдер в providers.go
// 3. Добавить провайдер в ProviderSet в wire.go
// 4. Перегенерировать wire_gen.go: go generate ./internal/di/...
type App struct {
	// Config — конфигурация, переданная в InitializeApp().
	Config *config.Config

	// Logger — структурированный логгер с атрибутами экземпляра.
	Logger logging.Logger

	// InstanceID коррелирует записи одного запуска.
	InstanceID InstanceID

	// MetricsCollector — Prometheus коллектор или NopCollector при выключенных метриках.
	MetricsCollector metrics.Collector

	// TracerShutdown завершает OTel TracerProvider и отправляет буферизированные span-ы.
	TracerShutdown func(context.Context) error

	// Facade — фасад логирования бэкенда.
	Facade *oplog.Facade

	// Database — соединение с SQL Server; nil, если база выключена.
	Database *sqllog.DB
}

// Close отправляет метрики, завершает трейсинг и закрывает базу.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.MetricsCollector != nil {
		errs = append(errs, a.MetricsCollector.Push(ctx))
	}
	if a.TracerShutdown != nil {
		errs = append(errs, a.TracerShutdown(ctx))
	}
	if a.Database != nil {
		errs = append(errs, a.Database.Close())
	}
	return errors.Join(errs...)
}

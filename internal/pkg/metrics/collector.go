// Package metrics собирает Prometheus метрики по записям фасада логирования:
// длительность операций, исходы API вызовов и количество записей по категориям.
//
// Метрики отдаются через Handler() (/metrics) и, при настроенном
// Pushgateway, отправляются через Push().
package metrics

import (
	"context"
	"time"
)

// Collector определяет интерфейс для сбора метрик.
// Реализации: PrometheusCollector и NopCollector.
type Collector interface {
	// RecordEvent увеличивает счётчик записей категории category уровня level.
	RecordEvent(category, level string)

	// RecordOperation записывает завершение операции.
	RecordOperation(operation string, duration time.Duration, success bool)

	// RecordAPICall записывает исход API вызова. path нормализуется (см. NormalizeRoute).
	RecordAPICall(method, path string, status int, duration time.Duration)

	// Push отправляет метрики в Pushgateway.
	// Всегда возвращает nil: ошибки логируются внутри реализации.
	Push(ctx context.Context) error
}

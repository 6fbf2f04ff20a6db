package config

import (
	"time"

	"github.com/Kargones/emprev/internal/pkg/metrics"
)

// MetricsConfig содержит настройки Prometheus метрик.
type MetricsConfig struct {
	// Enabled — включены ли метрики (по умолчанию false).
	Enabled bool `yaml:"enabled" env:"EMPREV_METRICS_ENABLED" env-default:"false"`

	// Namespace — префикс имён метрик.
	Namespace string `yaml:"namespace" env:"EMPREV_METRICS_NAMESPACE" env-default:"emprev"`

	// PushgatewayURL — URL Prometheus Pushgateway. Пусто — только /metrics.
	// Пример: "http://pushgateway:9091"
	PushgatewayURL string `yaml:"pushgatewayUrl" env:"EMPREV_METRICS_PUSHGATEWAY_URL"`

	// JobName — имя job для группировки метрик в Pushgateway.
	JobName string `yaml:"jobName" env:"EMPREV_METRICS_JOB_NAME" env-default:"emprev"`

	// Timeout — таймаут HTTP запросов к Pushgateway.
	Timeout time.Duration `yaml:"timeout" env:"EMPREV_METRICS_TIMEOUT" env-default:"10s"`

	// InstanceLabel — переопределение instance label. Пусто — hostname.
	InstanceLabel string `yaml:"instanceLabel" env:"EMPREV_METRICS_INSTANCE"`
}

// ToMetrics конвертирует секцию в metrics.Config.
func (c MetricsConfig) ToMetrics() metrics.Config {
	return metrics.Config{
		Enabled:        c.Enabled,
		Namespace:      c.Namespace,
		PushgatewayURL: c.PushgatewayURL,
		JobName:        c.JobName,
		Timeout:        c.Timeout,
		InstanceLabel:  c.InstanceLabel,
	}
}

// Validate проверяет секцию правилами metrics.Config.
func (c MetricsConfig) Validate() error {
	mc := c.ToMetrics()
	return mc.Validate()
}

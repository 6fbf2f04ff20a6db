package metrics

import (
	"net/url"
	"time"
)

// Config содержит настройки Prometheus метрик.
type Config struct {
	// Enabled — включены ли метрики (по умолчанию false).
	Enabled bool

	// Namespace — префикс имён метрик.
	Namespace string

	// PushgatewayURL — URL Prometheus Pushgateway. Пусто — push не выполняется,
	// метрики доступны только через Handler().
	PushgatewayURL string

	// JobName — имя job в Pushgateway.
	JobName string

	// Timeout — таймаут HTTP запросов к Pushgateway.
	Timeout time.Duration

	// InstanceLabel — instance label. Пусто — hostname.
	InstanceLabel string
}

// Validate проверяет конфигурацию. Выключенные метрики всегда валидны.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Namespace == "" {
		return ErrNamespaceRequired
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.PushgatewayURL == "" {
		return nil
	}
	u, err := url.Parse(c.PushgatewayURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrPushgatewayURLInvalid
	}
	if c.JobName == "" {
		return ErrJobNameRequired
	}
	return nil
}

// DefaultConfig возвращает конфигурацию по умолчанию (метрики выключены).
func DefaultConfig() Config {
	return Config{
		Namespace: "emprev",
		JobName:   "emprev",
		Timeout:   10 * time.Second,
	}
}

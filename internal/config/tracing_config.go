package config

import (
	"time"

	"github.com/Kargones/emprev/internal/constants"
	"github.com/Kargones/emprev/internal/pkg/tracing"
)

// TracingConfig содержит настройки OpenTelemetry трейсинга.
type TracingConfig struct {
	// Enabled включает отправку трейсов в OTLP бэкенд.
	Enabled bool `yaml:"enabled" env:"EMPREV_TRACING_ENABLED" env-default:"false"`

	// Endpoint — URL OTLP HTTP endpoint (например, http://jaeger:4318).
	Endpoint string `yaml:"endpoint" env:"EMPREV_TRACING_ENDPOINT"`

	// ServiceName — имя сервиса для resource attributes.
	ServiceName string `yaml:"serviceName" env:"EMPREV_TRACING_SERVICE_NAME" env-default:"emprev"`

	// Environment — окружение (production, staging, development).
	Environment string `yaml:"environment" env:"EMPREV_TRACING_ENVIRONMENT" env-default:"production"`

	// Insecure — HTTP вместо HTTPS для OTLP endpoint.
	Insecure bool `yaml:"insecure" env:"EMPREV_TRACING_INSECURE" env-default:"true"`

	// Timeout — таймаут экспорта трейсов.
	Timeout time.Duration `yaml:"timeout" env:"EMPREV_TRACING_TIMEOUT" env-default:"5s"`

	// SamplingRate — доля сэмплируемых трейсов (0.0 — ни один, 1.0 — все).
	SamplingRate float64 `yaml:"samplingRate" env:"EMPREV_TRACING_SAMPLING_RATE" env-default:"1.0"`
}

// ToTracing конвертирует секцию в tracing.Config с версией сборки.
func (c TracingConfig) ToTracing() tracing.Config {
	return tracing.Config{
		Enabled:      c.Enabled,
		Endpoint:     c.Endpoint,
		ServiceName:  c.ServiceName,
		Version:      constants.Version,
		Environment:  c.Environment,
		Insecure:     c.Insecure,
		Timeout:      c.Timeout,
		SamplingRate: c.SamplingRate,
	}
}

// Validate проверяет секцию правилами tracing.Config.
func (c TracingConfig) Validate() error {
	tc := c.ToTracing()
	return tc.Validate()
}

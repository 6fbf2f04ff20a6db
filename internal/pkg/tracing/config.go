package tracing

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/Kargones/emprev/internal/constants"
)

// Ошибки валидации Config.
var (
	ErrEndpointRequired    = errors.New("tracing: endpoint обязателен при включённом трейсинге")
	ErrEndpointInvalid     = errors.New("tracing: endpoint должен быть URL с host, например http://jaeger:4318")
	ErrServiceNameRequired = errors.New("tracing: service name обязателен")
	ErrTimeoutInvalid      = errors.New("tracing: timeout экспорта должен быть положительным")
	ErrSamplingRateInvalid = errors.New("tracing: sampling rate вне диапазона [0, 1]")
)

// Config описывает экспорт span-ов запросов и операций бэкенда.
type Config struct {
	Enabled bool

	// Endpoint — OTLP HTTP collector, например "http://jaeger:4318".
	// Путь и query игнорируются, используется только host:port.
	Endpoint string

	// ServiceName, Version и Environment попадают в resource каждого span.
	ServiceName string
	Version     string
	Environment string

	Insecure bool

	// Timeout ограничивает один экспорт пачки span-ов.
	Timeout time.Duration

	// SamplingRate — доля сохраняемых трейсов запросов.
	SamplingRate float64
}

// Validate возвращает все найденные проблемы одной ошибкой.
// Выключенный трейсинг валиден при любых значениях полей.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	var errs []error
	switch {
	case c.Endpoint == "":
		errs = append(errs, ErrEndpointRequired)
	case endpointHost(c.Endpoint) == "":
		errs = append(errs, ErrEndpointInvalid)
	}
	if c.ServiceName == "" {
		errs = append(errs, ErrServiceNameRequired)
	}
	if c.Timeout <= 0 {
		errs = append(errs, ErrTimeoutInvalid)
	}
	if c.SamplingRate < 0 || c.SamplingRate > 1 {
		errs = append(errs, fmt.Errorf("%w: %g", ErrSamplingRateInvalid, c.SamplingRate))
	}
	return errors.Join(errs...)
}

// endpointHost извлекает host:port из Endpoint; "" если URL без host.
func endpointHost(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	return u.Host
}

// DefaultConfig возвращает выключенный трейсинг с полной выборкой.
func DefaultConfig() Config {
	return Config{
		ServiceName:  constants.ServiceName,
		Version:      constants.Version,
		Environment:  "production",
		Timeout:      5 * time.Second,
		SamplingRate: 1,
	}
}

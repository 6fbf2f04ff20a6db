// Package config загружает конфигурацию сервиса emprev.
//
// Источники в порядке приоритета:
//  1. переменные окружения EMPREV_*
//  2. YAML файл (путь в EMPREV_CONFIG или аргументе Load)
//  3. значения env-default
//
// Каждая секция конвертируется в конфигурацию своего пакета
// (logging.Config, metrics.Config, tracing.Config, oplog.Policy, sqllog.Options).
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Kargones/emprev/internal/constants"
	"github.com/Kargones/emprev/internal/pkg/apperrors"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация сервиса.
type Config struct {
	// Logging — настройки логирования.
	Logging LoggingConfig `yaml:"logging"`

	// Thresholds — пороги повышения уровня записей.
	Thresholds ThresholdsConfig `yaml:"thresholds"`

	// Metrics — Prometheus метрики.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing — OpenTelemetry трейсинг.
	Tracing TracingConfig `yaml:"tracing"`

	// Database — подключение к SQL Server.
	Database DatabaseConfig `yaml:"database"`

	// HTTP — HTTP сервер.
	HTTP HTTPConfig `yaml:"http"`
}

// HTTPConfig содержит настройки HTTP сервера.
type HTTPConfig struct {
	// Addr — адрес прослушивания.
	Addr string `yaml:"addr" env:"EMPREV_HTTP_ADDR" env-default:":8080"`

	// ReadTimeout — таймаут чтения запроса.
	ReadTimeout time.Duration `yaml:"readTimeout" env:"EMPREV_HTTP_READ_TIMEOUT" env-default:"10s"`

	// WriteTimeout — таймаут записи ответа.
	WriteTimeout time.Duration `yaml:"writeTimeout" env:"EMPREV_HTTP_WRITE_TIMEOUT" env-default:"30s"`

	// ShutdownTimeout — время на graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" env:"EMPREV_HTTP_SHUTDOWN_TIMEOUT" env-default:"15s"`
}

// Load читает конфигурацию из файла path и переменных окружения.
// Пустой path заменяется значением EMPREV_CONFIG; если и он пуст,
// конфигурация читается только из окружения.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(constants.EnvConfigPath)
	}

	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrConfigLoad,
				fmt.Sprintf("не удалось прочитать %s", path), err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrConfigLoad,
			"не удалось прочитать переменные окружения", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrConfigValidate, "некорректная конфигурация", err)
	}
	return &cfg, nil
}

// Validate проверяет все секции и возвращает объединённую ошибку.
func (c *Config) Validate() error {
	return errors.Join(
		c.Logging.Validate(),
		c.Thresholds.Validate(),
		c.Metrics.Validate(),
		c.Tracing.Validate(),
		c.Database.Validate(),
	)
}

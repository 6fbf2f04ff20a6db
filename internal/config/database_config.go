package config

import (
	"errors"
	"time"

	"github.com/Kargones/emprev/internal/pkg/sqllog"
)

// ErrDatabaseIncomplete — база включена, но не задан сервер или имя базы.
var ErrDatabaseIncomplete = errors.New("database: server и database обязательны при enabled=true")

// DatabaseConfig содержит параметры подключения к SQL Server.
type DatabaseConfig struct {
	// Enabled — подключаться к базе при старте.
	Enabled bool `yaml:"enabled" env:"EMPREV_DB_ENABLED" env-default:"false"`

	// Server — адрес сервера.
	Server string `yaml:"server" env:"EMPREV_DB_SERVER"`

	// Port — порт сервера.
	Port int `yaml:"port" env:"EMPREV_DB_PORT" env-default:"1433"`

	// User — имя пользователя.
	User string `yaml:"user" env:"EMPREV_DB_USER"`

	// Password — пароль. Обычно задаётся только через окружение.
	Password string `yaml:"password" env:"EMPREV_DB_PASSWORD"`

	// Database — имя базы данных.
	Database string `yaml:"database" env:"EMPREV_DB_NAME"`

	// Timeout — таймаут подключения.
	Timeout time.Duration `yaml:"timeout" env:"EMPREV_DB_TIMEOUT" env-default:"30s"`

	// Encrypt — TLS шифрование соединения.
	Encrypt bool `yaml:"encrypt" env:"EMPREV_DB_ENCRYPT" env-default:"true"`
}

// Options конвертирует секцию в sqllog.Options.
func (c DatabaseConfig) Options() sqllog.Options {
	return sqllog.Options{
		Server:   c.Server,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		Database: c.Database,
		Timeout:  c.Timeout,
		Encrypt:  c.Encrypt,
	}
}

// Validate проверяет обязательные поля включённой базы.
func (c DatabaseConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Server == "" || c.Database == "" {
		return ErrDatabaseIncomplete
	}
	return nil
}

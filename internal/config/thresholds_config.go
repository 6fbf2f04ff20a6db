package config

import (
	"time"

	"github.com/Kargones/emprev/internal/oplog"
)

// ThresholdsConfig задаёт пороги фасада логирования.
type ThresholdsConfig struct {
	// SlowThreshold — длительность, начиная с которой операция медленная.
	SlowThreshold time.Duration `yaml:"slowThreshold" env:"EMPREV_SLOW_THRESHOLD" env-default:"1s"`

	// ClientErrorStatus — HTTP статус, начиная с которого API вызов пишется как WARN.
	ClientErrorStatus int `yaml:"clientErrorStatus" env:"EMPREV_CLIENT_ERROR_STATUS" env-default:"400"`

	// ServerErrorStatus — HTTP статус, начиная с которого API вызов пишется как ERROR.
	ServerErrorStatus int `yaml:"serverErrorStatus" env:"EMPREV_SERVER_ERROR_STATUS" env-default:"500"`
}

// Policy конвертирует секцию в oplog.Policy. Нулевые поля заменяются значениями по умолчанию.
func (c ThresholdsConfig) Policy() oplog.Policy {
	p := oplog.DefaultPolicy()
	if c.SlowThreshold > 0 {
		p.SlowThreshold = c.SlowThreshold
	}
	if c.ClientErrorStatus > 0 {
		p.ClientErrorStatus = c.ClientErrorStatus
	}
	if c.ServerErrorStatus > 0 {
		p.ServerErrorStatus = c.ServerErrorStatus
	}
	return p
}

// Validate проверяет итоговую Policy.
func (c ThresholdsConfig) Validate() error {
	return c.Policy().Validate()
}

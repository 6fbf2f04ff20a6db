// Package constants содержит константы сервиса emprev.
package constants

// Version — версия сборки, задаётся через -ldflags "-X".
var Version = "dev"

// ServiceName — имя сервиса в логах, метриках и трейсах.
const ServiceName = "emprev"

// Переменные окружения запуска.
const (
	// EnvConfigPath — путь к YAML файлу конфигурации.
	EnvConfigPath = "EMPREV_CONFIG"
)

// Пути служебных HTTP обработчиков.
const (
	PathHealth  = "/healthz"
	PathMetrics = "/metrics"
)

//go:build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/Kargones/emprev/internal/config"
)

//go:generate wire

// ProviderSet объединяет все провайдеры сервиса.
//
// При добавлении новых провайдеров:
// 1. Создать функцию провайдера в providers.go
// 2. Добавить её в ProviderSet
// 3. Перегенерировать: go generate ./internal/di/...
var ProviderSet = wire.NewSet(
	ProvideInstanceID,
	ProvideLogger,
	ProvideMetricsCollector,
	ProvideTracerProvider,
	ProvideFacade,
	ProvideDatabase,
	wire.Struct(new(App), "*"),
)

// InitializeApp создаёт App через Wire DI.
// Принимает Config, загруженный через config.Load().
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app, err := di.InitializeApp(cfg)
func InitializeApp(cfg *config.Config) (*App, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
